package quote

import (
	"math/big"
	"sort"

	"aequiswap/internal/model"
)

// Compare ranks two quotes. Negative means a ranks ahead of b. The order is a
// hard contract:
//  1. higher amountOut
//  2. higher amountOut minus estimatedGasCostWei
//  3. higher liquidityScore
//  4. lower priceImpactBps
func Compare(a, b *model.PriceQuote) int {
	if c := b.AmountOut.Cmp(a.AmountOut); c != 0 {
		return c
	}
	if c := netOfGas(b).Cmp(netOfGas(a)); c != 0 {
		return c
	}
	if c := orZero(b.LiquidityScore).Cmp(orZero(a.LiquidityScore)); c != 0 {
		return c
	}
	switch {
	case a.PriceImpactBps < b.PriceImpactBps:
		return -1
	case a.PriceImpactBps > b.PriceImpactBps:
		return 1
	default:
		return 0
	}
}

func netOfGas(q *model.PriceQuote) *big.Int {
	net := new(big.Int).Set(q.AmountOut)
	if q.EstimatedGasCostWei != nil {
		net.Sub(net, q.EstimatedGasCostWei)
	}
	return net
}

func orZero(value *big.Int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	return value
}

// SelectBest sorts the candidates, returns the winner, and attaches the
// remaining ranked candidates as its offers. Offers never nest.
func SelectBest(candidates []*model.PriceQuote) (*model.PriceQuote, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return Compare(candidates[i], candidates[j]) < 0
	})

	best := candidates[0]
	rest := candidates[1:]
	for _, offer := range rest {
		offer.Offers = nil
	}
	best.Offers = rest
	return best, true
}
