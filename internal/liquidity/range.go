// Package liquidity computes the counterpart deposit amount for a one-sided
// input into a concentrated-liquidity position.
package liquidity

import (
	"errors"
	"math"
)

var (
	// ErrInvalidInput reports a deposit amount that is not a positive finite
	// number.
	ErrInvalidInput = errors.New("deposit amount must be a positive finite number")
	// ErrInvalidPrice reports a non-positive or non-finite price bound.
	ErrInvalidPrice = errors.New("price must be a positive finite number")
	// ErrDegenerateRange reports a zero-width or inverted price range.
	ErrDegenerateRange = errors.New("price range has zero or negative width")
)

// Range selects between a bounded price interval and the full-range sentinel.
// The zero value is not valid; use NewRange or FullRange.
type Range struct {
	lower float64
	upper float64
	full  bool
}

// FullRange returns the sentinel spanning the entire price lattice.
func FullRange() Range {
	return Range{full: true}
}

// NewRange builds a concentrated range from human price bounds.
func NewRange(lower, upper float64) (Range, error) {
	if !isPositiveFinite(lower) || !isPositiveFinite(upper) {
		return Range{}, ErrInvalidPrice
	}
	if upper <= lower {
		return Range{}, ErrDegenerateRange
	}
	return Range{lower: lower, upper: upper}, nil
}

// IsFull reports whether the range is the full-range sentinel.
func (r Range) IsFull() bool {
	return r.full
}

// Bounds returns the price bounds of a concentrated range. Meaningless for
// the full-range sentinel.
func (r Range) Bounds() (lower, upper float64) {
	return r.lower, r.upper
}

// DepositInput is the one-sided deposit: an amount and which token it is
// denominated in.
type DepositInput struct {
	amount float64
	token0 bool
}

// Token0Input declares a deposit denominated in token0.
func Token0Input(amount float64) DepositInput {
	return DepositInput{amount: amount, token0: true}
}

// Token1Input declares a deposit denominated in token1.
func Token1Input(amount float64) DepositInput {
	return DepositInput{amount: amount}
}

// Amount returns the deposited amount.
func (d DepositInput) Amount() float64 {
	return d.amount
}

// IsToken0 reports whether the deposit is denominated in token0.
func (d DepositInput) IsToken0() bool {
	return d.token0
}

func isPositiveFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
