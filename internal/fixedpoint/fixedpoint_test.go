package fixedpoint

import (
	"math/big"
	"testing"
)

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int literal: %s", s)
	}
	return v
}

func TestScaleToQ18(t *testing.T) {
	// 1 USDC (6 decimals) scales up to 1e18.
	got := ScaleToQ18(big.NewInt(1_000_000), 6)
	if got.Cmp(bigFromString(t, "1000000000000000000")) != 0 {
		t.Fatalf("scale up: got %s", got)
	}

	// 18 decimals passes through.
	got = ScaleToQ18(bigFromString(t, "123456789000000000000"), 18)
	if got.Cmp(bigFromString(t, "123456789000000000000")) != 0 {
		t.Fatalf("identity: got %s", got)
	}

	// 24 decimals truncates down.
	got = ScaleToQ18(bigFromString(t, "1999999"), 24)
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("scale down should truncate: got %s", got)
	}
}

func TestMultiplyQ18(t *testing.T) {
	half := bigFromString(t, "500000000000000000")
	got := MultiplyQ18(half, half)
	if got.Cmp(bigFromString(t, "250000000000000000")) != 0 {
		t.Fatalf("0.5*0.5: got %s", got)
	}
}

func TestExecutionPriceZeroAmounts(t *testing.T) {
	if ExecutionPriceQ18(big.NewInt(0), big.NewInt(5), 18, 18).Sign() != 0 {
		t.Fatalf("zero amountIn must yield zero price")
	}
	if ExecutionPriceQ18(big.NewInt(5), big.NewInt(0), 18, 18).Sign() != 0 {
		t.Fatalf("zero amountOut must yield zero price")
	}
}

func TestExecutionPriceDecimalAdjustment(t *testing.T) {
	// 1 WETH (18 dec) -> 3000 USDC (6 dec): price 3000e18.
	amountIn := bigFromString(t, "1000000000000000000")
	amountOut := big.NewInt(3000_000000)
	got := ExecutionPriceQ18(amountIn, amountOut, 18, 6)
	if got.Cmp(bigFromString(t, "3000000000000000000000")) != 0 {
		t.Fatalf("execution price: got %s", got)
	}
}

func TestPriceImpactZeroWhenExact(t *testing.T) {
	mid := bigFromString(t, "3000000000000000000000") // 3000 per unit
	amountIn := bigFromString(t, "1000000000000000000")
	expected := ApplyPriceQ18(mid, amountIn, 18, 6)
	if got := PriceImpactBps(mid, amountIn, expected, 18, 6); got != 0 {
		t.Fatalf("exact output must have zero impact, got %d", got)
	}
}

func TestPriceImpactMonotonic(t *testing.T) {
	mid := bigFromString(t, "3000000000000000000000")
	amountIn := bigFromString(t, "1000000000000000000")
	expected := ApplyPriceQ18(mid, amountIn, 18, 6)

	prev := int64(-1)
	step := new(big.Int).Quo(expected, big.NewInt(100))
	actual := new(big.Int).Set(expected)
	for i := 0; i < 50; i++ {
		impact := PriceImpactBps(mid, amountIn, actual, 18, 6)
		if impact < prev {
			t.Fatalf("impact decreased: step %d, %d < %d", i, impact, prev)
		}
		prev = impact
		actual.Sub(actual, step)
		if actual.Sign() <= 0 {
			break
		}
	}
}

func TestPriceImpactCapped(t *testing.T) {
	mid := bigFromString(t, "1000000000000000000000000000000") // absurd mid price
	got := PriceImpactBps(mid, bigFromString(t, "1000000000000000000"), big.NewInt(1), 18, 18)
	if got != MaxImpactBps {
		t.Fatalf("expected cap %d, got %d", MaxImpactBps, got)
	}
}

func TestPriceImpactZeroMid(t *testing.T) {
	if got := PriceImpactBps(big.NewInt(0), big.NewInt(10), big.NewInt(10), 18, 18); got != 0 {
		t.Fatalf("zero mid must yield zero impact, got %d", got)
	}
}

func TestMidPriceFromReserves(t *testing.T) {
	// 50 WETH vs 150,000 USDC: 3000 USDC per WETH.
	reserveIn := bigFromString(t, "50000000000000000000")
	reserveOut := big.NewInt(150_000_000000)
	got := MidPriceFromReserves(reserveIn, reserveOut, 18, 6)
	if got.Cmp(bigFromString(t, "3000000000000000000000")) != 0 {
		t.Fatalf("mid price: got %s", got)
	}
}

func TestMidPriceFromSqrtPriceX96RoundTrip(t *testing.T) {
	// sqrtPriceX96 = 2^96 encodes price 1.0 between equal-decimal tokens.
	sqrt := new(big.Int).Lsh(big.NewInt(1), 96)
	got := MidPriceFromSqrtPriceX96(sqrt, 18, 18, true)
	if got.Cmp(Q18) != 0 {
		t.Fatalf("unit sqrt price: got %s", got)
	}

	inverse := MidPriceFromSqrtPriceX96(sqrt, 18, 18, false)
	if inverse.Cmp(Q18) != 0 {
		t.Fatalf("unit inverse sqrt price: got %s", inverse)
	}
}

func TestParseDecimalAmountRawPassthrough(t *testing.T) {
	got, err := ParseDecimalAmount("1000", 18)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// A plain integer is raw base units regardless of token decimals.
	if got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("raw integer must pass through, got %s", got)
	}
}

func TestParseDecimalAmountHuman(t *testing.T) {
	got, err := ParseDecimalAmount("0.001", 18)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Cmp(bigFromString(t, "1000000000000000")) != 0 {
		t.Fatalf("0.001 at 18 decimals: got %s", got)
	}

	got, err = ParseDecimalAmount("1.5", 6)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Cmp(big.NewInt(1_500_000)) != 0 {
		t.Fatalf("1.5 at 6 decimals: got %s", got)
	}

	got, err = ParseDecimalAmount("2.500000", 6)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Cmp(big.NewInt(2_500_000)) != 0 {
		t.Fatalf("trailing zeros: got %s", got)
	}
}

func TestParseDecimalAmountRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "abc", "-5", "+5", "1.", ".5", "1.2.3", "1e5", "1 000"} {
		if _, err := ParseDecimalAmount(raw, 18); err == nil {
			t.Fatalf("amount %q must be rejected", raw)
		}
	}
}

func TestParseDecimalAmountRejectsExcessPrecision(t *testing.T) {
	if _, err := ParseDecimalAmount("1.1234567", 6); err == nil {
		t.Fatalf("7 fractional digits must not fit a 6-decimal token")
	}
}

func TestApplyPriceTruncates(t *testing.T) {
	// price of 1/3 scaled: verify truncation toward zero, no rounding.
	third := bigFromString(t, "333333333333333333")
	got := ApplyPriceQ18(third, big.NewInt(10), 0, 0)
	if got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected truncated 3, got %s", got)
	}
}
