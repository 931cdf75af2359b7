// Package quote prices a trade on discovered pools, composes multi-hop
// candidates, and ranks them under a strict total order.
package quote

import (
	"math/big"

	"aequiswap/internal/fixedpoint"
	"aequiswap/internal/model"
)

const (
	v2FeeNumerator   = 997
	v2FeeDenominator = 1000

	// V3 fee tiers are expressed in hundredths of a bip (parts per million).
	v3FeeDenominator = 1_000_000
)

// SourceQuote is one priced hop together with the metrics ranking needs.
type SourceQuote struct {
	Source         model.PriceSource
	Version        model.HopVersion
	MidPriceQ18    *big.Int
	PriceImpactBps int64
	LiquidityScore *big.Int
}

// V2AmountOut applies the constant-product formula with the 0.3% fee:
// amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997). All division
// truncates. Non-positive inputs yield zero.
func V2AmountOut(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	if amountIn == nil || reserveIn == nil || reserveOut == nil {
		return new(big.Int)
	}
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return new(big.Int)
	}
	inWithFee := new(big.Int).Mul(amountIn, big.NewInt(v2FeeNumerator))
	numerator := new(big.Int).Mul(inWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, big.NewInt(v2FeeDenominator))
	denominator.Add(denominator, inWithFee)
	return numerator.Quo(numerator, denominator)
}

// QuoteV2 prices one hop on a V2 pair snapshot whose reserves are already
// oriented to the trade direction. The pool is skipped, not an error, when
// either reserve sits below the dust threshold or the output is zero.
func QuoteV2(snap model.V2PoolSnapshot, dexID string, amountIn *big.Int, inDecimals, outDecimals uint8, minReserve *big.Int) (SourceQuote, bool) {
	if snap.ReserveIn == nil || snap.ReserveOut == nil {
		return SourceQuote{}, false
	}
	if minReserve != nil && (snap.ReserveIn.Cmp(minReserve) < 0 || snap.ReserveOut.Cmp(minReserve) < 0) {
		return SourceQuote{}, false
	}

	amountOut := V2AmountOut(amountIn, snap.ReserveIn, snap.ReserveOut)
	if amountOut.Sign() <= 0 {
		return SourceQuote{}, false
	}

	mid := fixedpoint.MidPriceFromReserves(snap.ReserveIn, snap.ReserveOut, inDecimals, outDecimals)
	score := fixedpoint.MinBig(
		fixedpoint.ScaleToQ18(snap.ReserveIn, inDecimals),
		fixedpoint.ScaleToQ18(snap.ReserveOut, outDecimals),
	)

	return SourceQuote{
		Source: model.PriceSource{
			DexID:       dexID,
			PoolAddress: snap.PairAddress,
			AmountIn:    new(big.Int).Set(amountIn),
			AmountOut:   amountOut,
		},
		Version:        model.HopV2,
		MidPriceQ18:    mid,
		PriceImpactBps: fixedpoint.PriceImpactBps(mid, amountIn, amountOut, inDecimals, outDecimals),
		LiquidityScore: score,
	}, true
}

// v3Skip reports whether a V3 pool is unusable for pricing: no observed
// price, or liquidity at or below the configured minimum.
func v3Skip(snap model.V3PoolSnapshot, minLiquidity *big.Int) bool {
	if snap.SqrtPriceX96 == nil || snap.SqrtPriceX96.Sign() == 0 {
		return true
	}
	if snap.Liquidity == nil {
		return true
	}
	if minLiquidity != nil && snap.Liquidity.Cmp(minLiquidity) <= 0 {
		return true
	}
	return false
}

// QuoteV3Exact builds the hop quote around an output amount obtained from a
// real quoter simulation.
func QuoteV3Exact(snap model.V3PoolSnapshot, dexID string, amountIn, amountOut *big.Int, inDecimals, outDecimals uint8, zeroForOne bool, minLiquidity *big.Int) (SourceQuote, bool) {
	if v3Skip(snap, minLiquidity) || amountOut == nil || amountOut.Sign() <= 0 {
		return SourceQuote{}, false
	}

	mid := fixedpoint.MidPriceFromSqrtPriceX96(snap.SqrtPriceX96, inDecimals, outDecimals, zeroForOne)
	return SourceQuote{
		Source: model.PriceSource{
			DexID:       dexID,
			PoolAddress: snap.PoolAddress,
			FeeTier:     snap.Fee,
			AmountIn:    new(big.Int).Set(amountIn),
			AmountOut:   new(big.Int).Set(amountOut),
		},
		Version:        model.HopV3,
		MidPriceQ18:    mid,
		PriceImpactBps: fixedpoint.PriceImpactBps(mid, amountIn, amountOut, inDecimals, outDecimals),
		LiquidityScore: new(big.Int).Set(snap.Liquidity),
	}, true
}

// QuoteV3Approx prices a hop from the pool's mid price minus the fee tier when
// no quoter simulation is available. The source is marked approximate and its
// impact is reported as zero because no real simulation occurred.
func QuoteV3Approx(snap model.V3PoolSnapshot, dexID string, amountIn *big.Int, inDecimals, outDecimals uint8, zeroForOne bool, minLiquidity *big.Int) (SourceQuote, bool) {
	if v3Skip(snap, minLiquidity) {
		return SourceQuote{}, false
	}

	mid := fixedpoint.MidPriceFromSqrtPriceX96(snap.SqrtPriceX96, inDecimals, outDecimals, zeroForOne)
	amountOut := fixedpoint.ApplyPriceQ18(mid, amountIn, inDecimals, outDecimals)
	amountOut.Mul(amountOut, big.NewInt(v3FeeDenominator-int64(snap.Fee)))
	amountOut.Quo(amountOut, big.NewInt(v3FeeDenominator))
	if amountOut.Sign() <= 0 {
		return SourceQuote{}, false
	}

	return SourceQuote{
		Source: model.PriceSource{
			DexID:       dexID,
			PoolAddress: snap.PoolAddress,
			FeeTier:     snap.Fee,
			Approximate: true,
			AmountIn:    new(big.Int).Set(amountIn),
			AmountOut:   amountOut,
		},
		Version:        model.HopV3,
		MidPriceQ18:    mid,
		PriceImpactBps: 0,
		LiquidityScore: new(big.Int).Set(snap.Liquidity),
	}, true
}
