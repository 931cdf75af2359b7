// Package fixedpoint implements Q18 fixed-point arithmetic for AMM pricing.
// Prices and amounts are integers scaled by 10^18; every division truncates
// toward zero so results stay bit-exact with on-chain integer math.
package fixedpoint

import (
	"fmt"
	"math/big"
	"strings"
)

// Q18 is the fixed-point scale, 10^18.
var Q18 = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// MaxImpactBps caps price impact to bound pathological inputs.
const MaxImpactBps = int64(10_000_000)

var maxImpact = big.NewInt(MaxImpactBps)

// Pow10 returns 10^n, or 1 for n <= 0.
func Pow10(n int) *big.Int {
	if n <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// ScaleToQ18 rescales a raw token amount to 18-decimal fixed point.
func ScaleToQ18(amount *big.Int, decimals uint8) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	if decimals == 18 {
		return new(big.Int).Set(amount)
	}
	if decimals > 18 {
		return new(big.Int).Quo(amount, Pow10(int(decimals)-18))
	}
	return new(big.Int).Mul(amount, Pow10(18-int(decimals)))
}

// MultiplyQ18 multiplies two Q18 values: a*b/10^18.
func MultiplyQ18(a, b *big.Int) *big.Int {
	if a == nil || b == nil {
		return new(big.Int)
	}
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, Q18)
}

// ApplyPriceQ18 converts an input amount to the output implied by a Q18 price:
// amountIn*price*10^outDec / (10^18 * 10^inDec). Zero price or amount yields
// zero.
func ApplyPriceQ18(priceQ18, amountIn *big.Int, inDecimals, outDecimals uint8) *big.Int {
	if priceQ18 == nil || amountIn == nil || priceQ18.Sign() == 0 || amountIn.Sign() == 0 {
		return new(big.Int)
	}
	numerator := new(big.Int).Mul(amountIn, priceQ18)
	numerator.Mul(numerator, Pow10(int(outDecimals)))
	denominator := new(big.Int).Mul(Q18, Pow10(int(inDecimals)))
	return numerator.Quo(numerator, denominator)
}

// ExecutionPriceQ18 is the realized price of one executed trade:
// amountOut*10^18*10^inDec / (amountIn*10^outDec). Zero amounts yield zero,
// which signals "no price available" rather than an error.
func ExecutionPriceQ18(amountIn, amountOut *big.Int, inDecimals, outDecimals uint8) *big.Int {
	if amountIn == nil || amountOut == nil || amountIn.Sign() == 0 || amountOut.Sign() == 0 {
		return new(big.Int)
	}
	numerator := new(big.Int).Mul(amountOut, Q18)
	numerator.Mul(numerator, Pow10(int(inDecimals)))
	denominator := new(big.Int).Mul(amountIn, Pow10(int(outDecimals)))
	return numerator.Quo(numerator, denominator)
}

// PriceImpactBps measures how far a realized output falls from the mid-price
// expectation, in basis points, capped at MaxImpactBps. A zero mid price or
// zero amount yields zero.
func PriceImpactBps(midPriceQ18, amountIn, amountOut *big.Int, inDecimals, outDecimals uint8) int64 {
	if midPriceQ18 == nil || amountIn == nil || amountOut == nil {
		return 0
	}
	if midPriceQ18.Sign() == 0 || amountIn.Sign() == 0 || amountOut.Sign() == 0 {
		return 0
	}

	expectedOut := ApplyPriceQ18(midPriceQ18, amountIn, inDecimals, outDecimals)
	if expectedOut.Sign() == 0 {
		return 0
	}

	diff := new(big.Int).Sub(expectedOut, amountOut)
	diff.Abs(diff)
	if diff.Sign() == 0 {
		return 0
	}

	impact := diff.Mul(diff, big.NewInt(10000))
	impact.Quo(impact, expectedOut)
	if impact.Cmp(maxImpact) > 0 {
		return MaxImpactBps
	}
	return impact.Int64()
}

// MidPriceFromReserves is the marginal V2 price at current reserves,
// decimal-adjusted and Q18-scaled: reserveOut*10^18*10^inDec /
// (reserveIn*10^outDec).
func MidPriceFromReserves(reserveIn, reserveOut *big.Int, inDecimals, outDecimals uint8) *big.Int {
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return new(big.Int)
	}
	numerator := new(big.Int).Mul(reserveOut, Q18)
	numerator.Mul(numerator, Pow10(int(inDecimals)))
	denominator := new(big.Int).Mul(reserveIn, Pow10(int(outDecimals)))
	return numerator.Quo(numerator, denominator)
}

var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// MidPriceFromSqrtPriceX96 derives the Q18 mid price of a V3 pool from its
// sqrt price. zeroForOne selects the token0->token1 direction.
func MidPriceFromSqrtPriceX96(sqrtPriceX96 *big.Int, inDecimals, outDecimals uint8, zeroForOne bool) *big.Int {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() == 0 {
		return new(big.Int)
	}

	priceX192 := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	inScale := Pow10(int(inDecimals))
	outScale := Pow10(int(outDecimals))

	if zeroForOne {
		numerator := new(big.Int).Mul(priceX192, inScale)
		numerator.Mul(numerator, Q18)
		denominator := new(big.Int).Mul(q192, outScale)
		return numerator.Quo(numerator, denominator)
	}

	numerator := new(big.Int).Mul(q192, inScale)
	numerator.Mul(numerator, Q18)
	denominator := new(big.Int).Mul(priceX192, outScale)
	return numerator.Quo(numerator, denominator)
}

// ParseDecimalAmount converts a user-supplied amount string into raw base
// units. A plain integer is taken as already-raw and passes through
// unchanged; a decimal-pointed value is a human amount scaled by the token's
// decimals. The fractional part must fit the token's precision.
func ParseDecimalAmount(value string, decimals uint8) (*big.Int, error) {
	whole, frac, hasFrac := strings.Cut(value, ".")
	if !allDigits(whole) {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	parsed, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if !hasFrac {
		return parsed, nil
	}
	if !allDigits(frac) {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q exceeds %d-decimal precision", value, decimals)
	}
	parsed.Mul(parsed, Pow10(int(decimals)))
	fracPart, ok := new(big.Int).SetString(frac, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	fracPart.Mul(fracPart, Pow10(int(decimals)-len(frac)))
	return parsed.Add(parsed, fracPart), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MinBig returns the smaller of a and b.
func MinBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
