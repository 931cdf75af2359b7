package model

import "math/big"

// V2PoolSnapshot is the reserve state of a constant-product pair at quote time.
// Snapshots are request-scoped and never cached: reserves move every block.
type V2PoolSnapshot struct {
	PairAddress string
	ReserveIn   *big.Int
	ReserveOut  *big.Int
}

// V3PoolSnapshot is the slot0/liquidity state of a concentrated-liquidity pool
// at quote time.
type V3PoolSnapshot struct {
	PoolAddress  string
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         int32
	Token0       string
	Token1       string
	Fee          uint32
}
