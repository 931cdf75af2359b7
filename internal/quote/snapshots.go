package quote

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aequiswap/internal/dex"
	"aequiswap/internal/model"
)

// v2Snapshots reads reserves for a batch of pairs, oriented to the trade
// direction. Pairs whose token ordering does not match tokenIn are dropped.
// Fetch failures drop the affected pool only.
func (e *Engine) v2Snapshots(ctx context.Context, caller dex.Caller, lens *dex.Lens, pools []common.Address, tokenIn common.Address) map[common.Address]model.V2PoolSnapshot {
	snapshots := make(map[common.Address]model.V2PoolSnapshot, len(pools))

	if lens != nil {
		data, err := lens.V2PoolData(ctx, pools)
		if err != nil {
			e.logger.Warn("v2 pool data batch failed", zap.Error(err))
			return snapshots
		}
		for _, entry := range data {
			if !entry.Exists {
				continue
			}
			snap, ok := orientV2(entry.Pool, entry.Token0, entry.Token1, entry.Reserve0, entry.Reserve1, tokenIn)
			if !ok {
				continue
			}
			snapshots[entry.Pool] = snap
		}
		return snapshots
	}

	pairABI, err := dex.V2PairABI()
	if err != nil {
		e.logger.Warn("v2 pair abi", zap.Error(err))
		return snapshots
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for _, pool := range pools {
		pool := pool
		group.Go(func() error {
			reserves, err := dex.Call(groupCtx, caller, pool, pairABI, "getReserves")
			if err != nil {
				e.logger.Warn("getReserves failed", zap.String("pool", pool.Hex()), zap.Error(err))
				return nil
			}
			token0Values, err := dex.Call(groupCtx, caller, pool, pairABI, "token0")
			if err != nil {
				e.logger.Warn("token0 failed", zap.String("pool", pool.Hex()), zap.Error(err))
				return nil
			}
			token1Values, err := dex.Call(groupCtx, caller, pool, pairABI, "token1")
			if err != nil {
				e.logger.Warn("token1 failed", zap.String("pool", pool.Hex()), zap.Error(err))
				return nil
			}

			reserve0, ok0 := reserves[0].(*big.Int)
			reserve1, ok1 := reserves[1].(*big.Int)
			token0, ok2 := token0Values[0].(common.Address)
			token1, ok3 := token1Values[0].(common.Address)
			if !ok0 || !ok1 || !ok2 || !ok3 {
				return nil
			}

			snap, ok := orientV2(pool, token0, token1, reserve0, reserve1, tokenIn)
			if !ok {
				return nil
			}
			mu.Lock()
			snapshots[pool] = snap
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return snapshots
}

func orientV2(pool, token0, token1 common.Address, reserve0, reserve1 *big.Int, tokenIn common.Address) (model.V2PoolSnapshot, bool) {
	switch tokenIn {
	case token0:
		return model.V2PoolSnapshot{
			PairAddress: pool.Hex(),
			ReserveIn:   reserve0,
			ReserveOut:  reserve1,
		}, true
	case token1:
		return model.V2PoolSnapshot{
			PairAddress: pool.Hex(),
			ReserveIn:   reserve1,
			ReserveOut:  reserve0,
		}, true
	default:
		return model.V2PoolSnapshot{}, false
	}
}

// v3Snapshots reads slot0, liquidity, token ordering, and fee for a batch of
// pools.
func (e *Engine) v3Snapshots(ctx context.Context, caller dex.Caller, lens *dex.Lens, pools []common.Address) map[common.Address]model.V3PoolSnapshot {
	snapshots := make(map[common.Address]model.V3PoolSnapshot, len(pools))

	if lens != nil {
		data, err := lens.V3PoolData(ctx, pools)
		if err != nil {
			e.logger.Warn("v3 pool data batch failed", zap.Error(err))
			return snapshots
		}
		for _, entry := range data {
			if !entry.Exists || entry.SqrtPriceX96 == nil {
				continue
			}
			tick, err := dex.Int24FromBig(entry.Tick)
			if err != nil {
				e.logger.Warn("bad tick", zap.String("pool", entry.Pool.Hex()), zap.Error(err))
				continue
			}
			snapshots[entry.Pool] = model.V3PoolSnapshot{
				PoolAddress:  entry.Pool.Hex(),
				SqrtPriceX96: entry.SqrtPriceX96,
				Liquidity:    entry.Liquidity,
				Tick:         tick,
				Token0:       entry.Token0.Hex(),
				Token1:       entry.Token1.Hex(),
				Fee:          uint32(entry.Fee.Uint64()),
			}
		}
		return snapshots
	}

	poolABI, err := dex.V3PoolABI()
	if err != nil {
		e.logger.Warn("v3 pool abi", zap.Error(err))
		return snapshots
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	for _, pool := range pools {
		pool := pool
		group.Go(func() error {
			snap, ok := e.v3SnapshotDirect(groupCtx, caller, poolABI, pool)
			if !ok {
				return nil
			}
			mu.Lock()
			snapshots[pool] = snap
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return snapshots
}

func (e *Engine) v3SnapshotDirect(ctx context.Context, caller dex.Caller, poolABI abi.ABI, pool common.Address) (model.V3PoolSnapshot, bool) {
	slot0, err := dex.Call(ctx, caller, pool, poolABI, "slot0")
	if err != nil {
		e.logger.Warn("slot0 failed", zap.String("pool", pool.Hex()), zap.Error(err))
		return model.V3PoolSnapshot{}, false
	}
	liquidityValues, err := dex.Call(ctx, caller, pool, poolABI, "liquidity")
	if err != nil {
		e.logger.Warn("liquidity failed", zap.String("pool", pool.Hex()), zap.Error(err))
		return model.V3PoolSnapshot{}, false
	}
	token0Values, err := dex.Call(ctx, caller, pool, poolABI, "token0")
	if err != nil {
		return model.V3PoolSnapshot{}, false
	}
	token1Values, err := dex.Call(ctx, caller, pool, poolABI, "token1")
	if err != nil {
		return model.V3PoolSnapshot{}, false
	}
	feeValues, err := dex.Call(ctx, caller, pool, poolABI, "fee")
	if err != nil {
		return model.V3PoolSnapshot{}, false
	}

	sqrtPrice, ok0 := slot0[0].(*big.Int)
	tickValue, ok1 := slot0[1].(*big.Int)
	liquidity, ok2 := liquidityValues[0].(*big.Int)
	token0, ok3 := token0Values[0].(common.Address)
	token1, ok4 := token1Values[0].(common.Address)
	fee, ok5 := feeValues[0].(*big.Int)
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return model.V3PoolSnapshot{}, false
	}
	tick, err := dex.Int24FromBig(tickValue)
	if err != nil {
		e.logger.Warn("bad tick", zap.String("pool", pool.Hex()), zap.Error(err))
		return model.V3PoolSnapshot{}, false
	}

	return model.V3PoolSnapshot{
		PoolAddress:  pool.Hex(),
		SqrtPriceX96: sqrtPrice,
		Liquidity:    liquidity,
		Tick:         tick,
		Token0:       token0.Hex(),
		Token1:       token1.Hex(),
		Fee:          uint32(fee.Uint64()),
	}, true
}
