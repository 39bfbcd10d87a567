package distribution

import (
	"math"
	"sort"

	"liquidityRange/internal/model"
	"liquidityRange/internal/tickmath"
)

// PriceField selects which token the series prices are denominated in.
type PriceField string

const (
	// PriceToken0 prices the series as token1 per token0.
	PriceToken0 PriceField = "price0"
	// PriceToken1 prices the series as token0 per token1 (the reciprocal).
	PriceToken1 PriceField = "price1"
)

// DefaultTopN is the number of entries the top view keeps when the caller
// does not say otherwise.
const DefaultTopN = 10

// minLiquidity is the magnitude below which a sample carries no display
// weight and is filtered out.
const minLiquidity = 1e-12

// Valid reports whether the field is a known price denomination.
func (f PriceField) Valid() bool {
	return f == PriceToken0 || f == PriceToken1
}

// BuildSeries filters out near-zero samples, prices each survivor in human
// terms, and returns the series sorted ascending by tick. An empty result is
// a valid outcome, not an error.
func BuildSeries(samples []model.LiquiditySample, decimals0, decimals1 int32, field PriceField) []model.SeriesPoint {
	factor := tickmath.DecimalFactor(decimals0, decimals1)
	series := make([]model.SeriesPoint, 0, len(samples))
	for _, sample := range samples {
		liq := math.Abs(sample.NetLiquidity)
		if liq <= minLiquidity {
			continue
		}
		price := tickmath.TickToPrice(sample.Tick) * factor
		if field == PriceToken1 {
			price = 1 / price
		}
		series = append(series, model.SeriesPoint{
			Tick:      sample.Tick,
			Price:     price,
			Liquidity: liq,
		})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Tick < series[j].Tick
	})
	return series
}

// TopN returns the min(n, len) series entries with the largest liquidity,
// ordered non-increasing by liquidity. The base series is left untouched.
func TopN(series []model.SeriesPoint, n int) []model.SeriesPoint {
	if n <= 0 {
		n = DefaultTopN
	}
	ranked := make([]model.SeriesPoint, len(series))
	copy(ranked, series)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Liquidity > ranked[j].Liquidity
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TotalLiquidity sums the series liquidity. Histogram binning must conserve
// this value.
func TotalLiquidity(series []model.SeriesPoint) float64 {
	var total float64
	for _, point := range series {
		total += point.Liquidity
	}
	return total
}
