package quote

import (
	"math/big"
	"testing"

	"aequiswap/internal/model"
)

func mustBig(t *testing.T, value string) *big.Int {
	t.Helper()
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		t.Fatalf("bad integer literal %q", value)
	}
	return parsed
}

// 0.001 WETH into a 50 WETH / 150,000 USDC pair. The output must match the
// integer constant-product formula with the 0.3% fee, bit for bit.
func TestQuoteV2Scenario(t *testing.T) {
	amountIn := mustBig(t, "1000000000000000")
	reserveWETH := mustBig(t, "50000000000000000000")
	reserveUSDC := mustBig(t, "150000000000")

	snap := model.V2PoolSnapshot{
		PairAddress: "0x1111111111111111111111111111111111111111",
		ReserveIn:   reserveWETH,
		ReserveOut:  reserveUSDC,
	}

	hop, ok := QuoteV2(snap, "uniswap-v2", amountIn, 18, 6, big.NewInt(1_000_000_000_000))
	if !ok {
		t.Fatalf("pool unexpectedly skipped")
	}

	inWithFee := new(big.Int).Mul(amountIn, big.NewInt(997))
	want := new(big.Int).Mul(inWithFee, reserveUSDC)
	want.Quo(want, new(big.Int).Add(new(big.Int).Mul(reserveWETH, big.NewInt(1000)), inWithFee))

	if hop.Source.AmountOut.Cmp(want) != 0 {
		t.Fatalf("amountOut = %s, want %s", hop.Source.AmountOut, want)
	}
	if hop.Source.Approximate {
		t.Fatalf("v2 source must not be approximate")
	}
	if hop.Version != model.HopV2 {
		t.Fatalf("version = %s", hop.Version)
	}
}

func TestQuoteV2DustReserveSkipped(t *testing.T) {
	snap := model.V2PoolSnapshot{
		PairAddress: "0x1111111111111111111111111111111111111111",
		ReserveIn:   big.NewInt(999),
		ReserveOut:  mustBig(t, "150000000000"),
	}
	if _, ok := QuoteV2(snap, "uniswap-v2", big.NewInt(100), 18, 6, big.NewInt(1000)); ok {
		t.Fatalf("reserve below dust threshold must skip the pool")
	}
}

func TestQuoteV2LiquidityScoreIsBottleneckReserve(t *testing.T) {
	snap := model.V2PoolSnapshot{
		PairAddress: "0x1111111111111111111111111111111111111111",
		ReserveIn:   mustBig(t, "50000000000000000000"), // 50 at 18 decimals
		ReserveOut:  mustBig(t, "150000000000"),         // 150,000 at 6 decimals
	}
	hop, ok := QuoteV2(snap, "uniswap-v2", mustBig(t, "1000000000000000"), 18, 6, nil)
	if !ok {
		t.Fatalf("pool skipped")
	}
	if hop.LiquidityScore.Cmp(mustBig(t, "50000000000000000000")) != 0 {
		t.Fatalf("score must be the smaller Q18 reserve, got %s", hop.LiquidityScore)
	}
}

func TestQuoteV3ApproxAppliesFeeAndMarksSource(t *testing.T) {
	// sqrtPriceX96 = 2^96 encodes a raw token0/token1 price of exactly 1.
	sqrt := new(big.Int).Lsh(big.NewInt(1), 96)
	snap := model.V3PoolSnapshot{
		PoolAddress:  "0x2222222222222222222222222222222222222222",
		SqrtPriceX96: sqrt,
		Liquidity:    big.NewInt(1_000_000),
		Fee:          3000,
	}

	amountIn := big.NewInt(1_000_000)
	hop, ok := QuoteV3Approx(snap, "uniswap-v3", amountIn, 18, 18, true, nil)
	if !ok {
		t.Fatalf("pool skipped")
	}
	if !hop.Source.Approximate {
		t.Fatalf("fallback output must be marked approximate")
	}
	if hop.PriceImpactBps != 0 {
		t.Fatalf("approximate source must report zero impact, got %d", hop.PriceImpactBps)
	}
	// 0.3% fee off a 1:1 price.
	if want := big.NewInt(997_000); hop.Source.AmountOut.Cmp(want) != 0 {
		t.Fatalf("amountOut = %s, want %s", hop.Source.AmountOut, want)
	}
}

func TestQuoteV3MinLiquiditySkipped(t *testing.T) {
	snap := model.V3PoolSnapshot{
		PoolAddress:  "0x2222222222222222222222222222222222222222",
		SqrtPriceX96: new(big.Int).Lsh(big.NewInt(1), 96),
		Liquidity:    big.NewInt(500),
		Fee:          3000,
	}
	if _, ok := QuoteV3Approx(snap, "uniswap-v3", big.NewInt(1000), 18, 18, true, big.NewInt(500)); ok {
		t.Fatalf("liquidity at the configured minimum must skip the pool")
	}
}

func TestEstimateGasUnits(t *testing.T) {
	cases := []struct {
		versions []model.HopVersion
		want     int64
	}{
		{[]model.HopVersion{model.HopV2}, 120_000},
		{[]model.HopVersion{model.HopV3}, 160_000},
		{[]model.HopVersion{model.HopV2, model.HopV2}, 210_000},
		{[]model.HopVersion{model.HopV2, model.HopV3}, 250_000},
	}
	for _, tc := range cases {
		if got := EstimateGasUnits(tc.versions); got.Int64() != tc.want {
			t.Fatalf("units(%v) = %s, want %d", tc.versions, got, tc.want)
		}
	}
}

func TestGasCostNilPrice(t *testing.T) {
	if cost := GasCost(big.NewInt(120_000), nil); cost != nil {
		t.Fatalf("nil gas price must yield nil cost, got %s", cost)
	}
	if cost := GasCost(big.NewInt(120_000), big.NewInt(2)); cost.Int64() != 240_000 {
		t.Fatalf("cost = %s", cost)
	}
}
