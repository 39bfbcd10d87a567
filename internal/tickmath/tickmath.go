// Package tickmath converts between continuous prices and the discretized
// tick lattice used by concentrated-liquidity pools, and enforces the
// alignment and bounds policy for tick ranges.
package tickmath

import (
	"errors"
	"math"
)

const (
	// MinTick and MaxTick bound the representable tick lattice.
	MinTick int32 = -887272
	MaxTick int32 = 887272

	// TickBase is the price ratio between adjacent ticks.
	TickBase = 1.0001

	// DefaultTickSpacing is used when a fee tier has no known spacing.
	DefaultTickSpacing int32 = 60
)

// ErrInvalidPrice reports a price that cannot be mapped onto the lattice.
var ErrInvalidPrice = errors.New("price must be a positive finite number")

var logTickBase = math.Log(TickBase)

// spacingByFeeBP maps fee tiers, expressed in hundredths of a percent
// (basis points), to their tick spacing.
var spacingByFeeBP = map[int32]int32{
	1:   1,
	5:   10,
	30:  60,
	100: 200,
}

// TickToPrice returns 1.0001^tick, the raw lattice price at the tick. Callers
// needing a human-denominated price multiply by DecimalFactor themselves.
func TickToPrice(tick int32) float64 {
	return math.Pow(TickBase, float64(tick))
}

// PriceToTick returns the highest tick whose price does not exceed the given
// raw lattice price. The price must already be stripped of any decimal
// scaling; see DecimalFactor.
func PriceToTick(price float64) (int32, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidPrice
	}
	return int32(math.Floor(math.Log(price) / logTickBase)), nil
}

// AlignDown rounds the tick down to a multiple of spacing.
func AlignDown(tick, spacing int32) int32 {
	return floorDiv(tick, spacing) * spacing
}

// AlignUp rounds the tick up to a multiple of spacing.
func AlignUp(tick, spacing int32) int32 {
	return -floorDiv(-tick, spacing) * spacing
}

// Clamp forces the tick into [MinTick, MaxTick].
func Clamp(tick int32) int32 {
	if tick < MinTick {
		return MinTick
	}
	if tick > MaxTick {
		return MaxTick
	}
	return tick
}

// FullRange returns the widest tick interval alignable to spacing within the
// global bounds.
func FullRange(spacing int32) (int32, int32) {
	return AlignUp(MinTick, spacing), AlignDown(MaxTick, spacing)
}

// AlignedRange aligns a tick range to spacing: the lower bound is aligned
// down and the upper bound up, so the aligned range is never narrower than
// requested. Both bounds are clamped into the aligned full-range interval,
// which keeps them spacing multiples. If alignment would collapse the range,
// the upper bound is bumped forward one spacing unit so every output range
// has strictly positive width.
func AlignedRange(lower, upper, spacing int32) (int32, int32) {
	minAligned, maxAligned := FullRange(spacing)
	lo := clampTo(AlignDown(lower, spacing), minAligned, maxAligned)
	hi := clampTo(AlignUp(upper, spacing), minAligned, maxAligned)
	if hi <= lo {
		if lo >= maxAligned {
			lo = maxAligned - spacing
			hi = maxAligned
		} else {
			hi = lo + spacing
		}
	}
	return lo, hi
}

// SpacingForFee resolves the tick spacing for a fee tier given in percent
// (0.30 means a 0.30% pool). Unknown tiers fall back to DefaultTickSpacing.
func SpacingForFee(feePercent float64) int32 {
	key := int32(math.Round(feePercent * 100))
	if spacing, ok := spacingByFeeBP[key]; ok {
		return spacing
	}
	return DefaultTickSpacing
}

// SpacingForFeePPM resolves the tick spacing for a fee tier in parts per
// million, the unit pool metadata feeds use (3000 = 0.30%).
func SpacingForFeePPM(fee uint32) int32 {
	return SpacingForFee(float64(fee) / 10000)
}

// DecimalFactor returns 10^(decimals0-decimals1), the scaling between a raw
// lattice price and a human price for tokens of differing decimal precision.
func DecimalFactor(decimals0, decimals1 int32) float64 {
	return math.Pow(10, float64(decimals0-decimals1))
}

func clampTo(tick, lo, hi int32) int32 {
	if tick < lo {
		return lo
	}
	if tick > hi {
		return hi
	}
	return tick
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
