package quote

import (
	"math/big"
	"testing"

	"aequiswap/internal/fixedpoint"
	"aequiswap/internal/model"
)

func legQuote(in, out model.TokenMetadata, amountIn, amountOut, mid, liquidity *big.Int, version model.HopVersion) *model.PriceQuote {
	return &model.PriceQuote{
		Chain:          "sepolia",
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		MidPriceQ18:    mid,
		Path:           []model.TokenMetadata{in, out},
		Sources:        []model.PriceSource{{DexID: "uniswap-v2", AmountIn: amountIn, AmountOut: amountOut}},
		LiquidityScore: liquidity,
		HopVersions:    []model.HopVersion{version},
	}
}

var (
	metaWETH = model.TokenMetadata{Address: "0x1111111111111111111111111111111111111111", Symbol: "WETH", Decimals: 18}
	metaUSDT = model.TokenMetadata{Address: "0x2222222222222222222222222222222222222222", Symbol: "USDT", Decimals: 6}
	metaUSDC = model.TokenMetadata{Address: "0x3333333333333333333333333333333333333333", Symbol: "USDC", Decimals: 6}
)

func TestComposeTwoHop(t *testing.T) {
	amountIn := mustBig(t, "1000000000000000000") // 1 WETH
	legAOut := mustBig(t, "2995000000")           // 2995 USDT
	legBOut := mustBig(t, "2990000000")           // 2990 USDC

	midA := mustBig(t, "3000000000000000000000") // 3000 Q18
	midB := mustBig(t, "998000000000000000")     // 0.998 Q18

	legA := legQuote(metaWETH, metaUSDT, amountIn, legAOut, midA, big.NewInt(500), model.HopV2)
	legB := legQuote(metaUSDT, metaUSDC, legAOut, legBOut, midB, big.NewInt(200), model.HopV3)

	combined, ok := ComposeTwoHop(legA, legB, big.NewInt(7))
	if !ok {
		t.Fatalf("composition rejected")
	}

	if combined.AmountIn.Cmp(amountIn) != 0 || combined.AmountOut.Cmp(legBOut) != 0 {
		t.Fatalf("end-to-end amounts wrong: in=%s out=%s", combined.AmountIn, combined.AmountOut)
	}
	if combined.Sources[1].AmountIn.Cmp(legAOut) != 0 {
		t.Fatalf("leg B must be quoted with leg A's output, got %s", combined.Sources[1].AmountIn)
	}
	if combined.LiquidityScore.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("bottleneck liquidity must win, got %s", combined.LiquidityScore)
	}
	if want := fixedpoint.MultiplyQ18(midA, midB); combined.MidPriceQ18.Cmp(want) != 0 {
		t.Fatalf("mid must chain multiplicatively: %s want %s", combined.MidPriceQ18, want)
	}
	if len(combined.Path) != 3 || combined.Path[1].Symbol != "USDT" {
		t.Fatalf("path wrong: %+v", combined.Path)
	}
	if len(combined.HopVersions) != 2 || combined.HopVersions[0] != model.HopV2 || combined.HopVersions[1] != model.HopV3 {
		t.Fatalf("hop versions wrong: %v", combined.HopVersions)
	}
	if len(combined.Path) != len(combined.Sources)+1 {
		t.Fatalf("path/sources invariant broken")
	}

	// 1 v2 hop + 1 v3 hop + multi-hop overhead at gas price 7.
	if combined.EstimatedGasUnits.Int64() != 250_000 {
		t.Fatalf("gas units = %s", combined.EstimatedGasUnits)
	}
	if combined.EstimatedGasCostWei.Int64() != 1_750_000 {
		t.Fatalf("gas cost = %s", combined.EstimatedGasCostWei)
	}

	want := fixedpoint.ExecutionPriceQ18(amountIn, legBOut, 18, 6)
	if combined.ExecutionPriceQ18.Cmp(want) != 0 {
		t.Fatalf("execution price must be recomputed end-to-end")
	}
}

func TestComposeTwoHopRequiresPositiveLegs(t *testing.T) {
	amountIn := mustBig(t, "1000000000000000000")
	legA := legQuote(metaWETH, metaUSDT, amountIn, new(big.Int), big.NewInt(1), big.NewInt(1), model.HopV2)
	legB := legQuote(metaUSDT, metaUSDC, new(big.Int), big.NewInt(5), big.NewInt(1), big.NewInt(1), model.HopV2)

	if _, ok := ComposeTwoHop(legA, legB, nil); ok {
		t.Fatalf("zero-output leg must not compose")
	}
}

func TestComposeTwoHopNilGasPrice(t *testing.T) {
	amountIn := mustBig(t, "1000000000000000000")
	legA := legQuote(metaWETH, metaUSDT, amountIn, big.NewInt(10), big.NewInt(1), big.NewInt(1), model.HopV2)
	legB := legQuote(metaUSDT, metaUSDC, big.NewInt(10), big.NewInt(9), big.NewInt(1), big.NewInt(1), model.HopV2)

	combined, ok := ComposeTwoHop(legA, legB, nil)
	if !ok {
		t.Fatalf("composition rejected")
	}
	if combined.EstimatedGasCostWei != nil || combined.GasPriceWei != nil {
		t.Fatalf("gas cost fields must stay nil without an observed price")
	}
	if combined.EstimatedGasUnits == nil {
		t.Fatalf("gas units are price-independent and must be set")
	}
}
