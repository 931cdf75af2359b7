package quote

import (
	"math/big"

	"aequiswap/internal/fixedpoint"
	"aequiswap/internal/model"
)

// ComposeTwoHop merges two single-hop quotes into one 2-hop candidate. Leg B
// must already be quoted with leg A's output as its input. A candidate is only
// produced when both legs yield strictly positive output.
//
// Aggregation: the mid price chains multiplicatively, the execution price is
// recomputed end to end, impact is recomputed against the chained mid, and the
// bottleneck hop dominates the liquidity score.
func ComposeTwoHop(legA, legB *model.PriceQuote, gasPriceWei *big.Int) (*model.PriceQuote, bool) {
	if legA == nil || legB == nil {
		return nil, false
	}
	if legA.AmountOut.Sign() <= 0 || legB.AmountOut.Sign() <= 0 {
		return nil, false
	}

	tokenIn := legA.TokenIn()
	tokenOut := legB.TokenOut()

	path := make([]model.TokenMetadata, 0, len(legA.Path)+len(legB.Path)-1)
	path = append(path, legA.Path...)
	path = append(path, legB.Path[1:]...)

	sources := make([]model.PriceSource, 0, len(legA.Sources)+len(legB.Sources))
	sources = append(sources, legA.Sources...)
	sources = append(sources, legB.Sources...)

	versions := make([]model.HopVersion, 0, len(legA.HopVersions)+len(legB.HopVersions))
	versions = append(versions, legA.HopVersions...)
	versions = append(versions, legB.HopVersions...)

	mid := fixedpoint.MultiplyQ18(legA.MidPriceQ18, legB.MidPriceQ18)
	execution := fixedpoint.ExecutionPriceQ18(legA.AmountIn, legB.AmountOut, tokenIn.Decimals, tokenOut.Decimals)
	units := EstimateGasUnits(versions)

	var score *big.Int
	switch {
	case legA.LiquidityScore == nil:
		score = orZero(legB.LiquidityScore)
	case legB.LiquidityScore == nil:
		score = orZero(legA.LiquidityScore)
	default:
		score = fixedpoint.MinBig(legA.LiquidityScore, legB.LiquidityScore)
	}

	return &model.PriceQuote{
		Chain:               legA.Chain,
		AmountIn:            new(big.Int).Set(legA.AmountIn),
		AmountOut:           new(big.Int).Set(legB.AmountOut),
		PriceQ18:            execution,
		ExecutionPriceQ18:   new(big.Int).Set(execution),
		MidPriceQ18:         mid,
		PriceImpactBps:      fixedpoint.PriceImpactBps(mid, legA.AmountIn, legB.AmountOut, tokenIn.Decimals, tokenOut.Decimals),
		Path:                path,
		Sources:             sources,
		LiquidityScore:      score,
		HopVersions:         versions,
		EstimatedGasUnits:   units,
		EstimatedGasCostWei: GasCost(units, gasPriceWei),
		GasPriceWei:         copyBig(gasPriceWei),
	}, true
}

func copyBig(value *big.Int) *big.Int {
	if value == nil {
		return nil
	}
	return new(big.Int).Set(value)
}
