package liquidity

import (
	"math"

	"github.com/shopspring/decimal"
)

// AmountPrecision is the fixed number of fractional digits carried by
// computed deposit amounts. Rounding is half away from zero.
const AmountPrecision = 6

// DepositPair is a valid position's token amounts in human units, rounded to
// AmountPrecision fractional digits.
type DepositPair struct {
	Amount0 decimal.Decimal `json:"amount0"`
	Amount1 decimal.Decimal `json:"amount1"`
}

// BaseUnits converts the pair into smallest-unit quantities by shifting each
// side by its token's declared decimals.
func (p DepositPair) BaseUnits(decimals0, decimals1 int32) (decimal.Decimal, decimal.Decimal) {
	return p.Amount0.Shift(decimals0), p.Amount1.Shift(decimals1)
}

// CounterpartAmount computes the matching amount of the other token for a
// one-sided deposit at the current price, under either a concentrated range
// or the full-range mode.
//
// Full-range mode is a 50/50 economic-value split, a deliberate UX
// simplification distinct from evaluating the concentrated formulas at the
// lattice extremes. Concentrated mode follows the three sqrt-price regimes:
// entirely below range, entirely above range, and in range.
func CounterpartAmount(input DepositInput, currentPrice float64, r Range) (DepositPair, error) {
	if !isPositiveFinite(input.Amount()) {
		return DepositPair{}, ErrInvalidInput
	}
	if !isPositiveFinite(currentPrice) {
		return DepositPair{}, ErrInvalidPrice
	}

	if r.IsFull() {
		return fullRangeSplit(input, currentPrice), nil
	}

	lower, upper := r.Bounds()
	if !isPositiveFinite(lower) || !isPositiveFinite(upper) {
		return DepositPair{}, ErrInvalidPrice
	}

	sqrtLower := math.Sqrt(lower)
	sqrtUpper := math.Sqrt(upper)
	sqrtCurrent := math.Sqrt(currentPrice)
	if sqrtUpper <= sqrtLower {
		return DepositPair{}, ErrDegenerateRange
	}

	if input.IsToken0() {
		return pairFrom(input.Amount(), amount1ForToken0(input.Amount(), currentPrice, lower, upper, sqrtLower, sqrtUpper, sqrtCurrent), true), nil
	}
	return pairFrom(input.Amount(), amount0ForToken1(input.Amount(), currentPrice, lower, upper, sqrtLower, sqrtUpper, sqrtCurrent), false), nil
}

func fullRangeSplit(input DepositInput, currentPrice float64) DepositPair {
	if input.IsToken0() {
		return pairFrom(input.Amount(), input.Amount()*currentPrice, true)
	}
	return pairFrom(input.Amount(), input.Amount()/currentPrice, false)
}

// amount1ForToken0 derives the token1 amount matching a token0 deposit x.
func amount1ForToken0(x, currentPrice, lower, upper, sqrtLower, sqrtUpper, sqrtCurrent float64) float64 {
	switch {
	case currentPrice <= lower:
		// Entirely below range: the position holds only token0.
		return 0
	case currentPrice >= upper:
		liq := x / (1/sqrtLower - 1/sqrtUpper)
		return liq * (sqrtUpper - sqrtLower)
	default:
		liq := x / (1/sqrtCurrent - 1/sqrtUpper)
		return liq * (sqrtCurrent - sqrtLower)
	}
}

// amount0ForToken1 is the mirror image for a token1 deposit y.
func amount0ForToken1(y, currentPrice, lower, upper, sqrtLower, sqrtUpper, sqrtCurrent float64) float64 {
	switch {
	case currentPrice <= lower:
		liq := y / (sqrtUpper - sqrtLower)
		return liq * (1/sqrtLower - 1/sqrtUpper)
	case currentPrice >= upper:
		// Entirely above range: the position holds only token1.
		return 0
	default:
		liq := y / (sqrtCurrent - sqrtLower)
		return liq * (1/sqrtCurrent - 1/sqrtUpper)
	}
}

// pairFrom assembles the pair, placing the input on its declared side.
// Negative results from numerical noise are clamped to zero.
func pairFrom(inputAmount, counterpart float64, token0Input bool) DepositPair {
	if counterpart < 0 || math.IsNaN(counterpart) {
		counterpart = 0
	}
	if token0Input {
		return DepositPair{
			Amount0: roundAmount(inputAmount),
			Amount1: roundAmount(counterpart),
		}
	}
	return DepositPair{
		Amount0: roundAmount(counterpart),
		Amount1: roundAmount(inputAmount),
	}
}

func roundAmount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(AmountPrecision)
}
