package distribution

import (
	"math"
	"strconv"

	"liquidityRange/internal/model"
)

// DefaultBins is the bin count used when the caller passes a non-positive
// count.
const DefaultBins = 10

// logBinThreshold is the max/min price ratio above which bins are spaced in
// log10(price) rather than linearly.
const logBinThreshold = 10.0

// Histogram buckets the series into numBins price bins. When the price span
// exceeds logBinThreshold the boundaries are geometric and a bin's
// representative price is the geometric mean of its edges; otherwise both are
// linear/arithmetic. The last bin is inclusive of its upper boundary so the
// maximum-price point is captured. Bins that accumulate no liquidity are
// dropped.
func Histogram(series []model.SeriesPoint, numBins int) []model.LiquidityBin {
	if len(series) == 0 {
		return nil
	}
	if numBins <= 0 {
		numBins = DefaultBins
	}

	minPrice, maxPrice := priceSpan(series)
	if minPrice == maxPrice {
		// All mass at a single price point: one bin holds everything.
		return []model.LiquidityBin{{
			Label:     formatEdge(minPrice) + "-" + formatEdge(maxPrice),
			Price:     minPrice,
			Liquidity: TotalLiquidity(series),
		}}
	}

	useLog := maxPrice/minPrice > logBinThreshold

	var lo, step float64
	if useLog {
		lo = math.Log10(minPrice)
		step = (math.Log10(maxPrice) - lo) / float64(numBins)
	} else {
		lo = minPrice
		step = (maxPrice - lo) / float64(numBins)
	}

	totals := make([]float64, numBins)
	for _, point := range series {
		value := point.Price
		if useLog {
			value = math.Log10(value)
		}
		idx := int((value - lo) / step)
		// Clamping folds the maximum-price point into the last bin, which is
		// how that bin becomes upper-inclusive.
		if idx < 0 {
			idx = 0
		}
		if idx >= numBins {
			idx = numBins - 1
		}
		totals[idx] += point.Liquidity
	}

	bins := make([]model.LiquidityBin, 0, numBins)
	for i := 0; i < numBins; i++ {
		if totals[i] == 0 {
			continue
		}
		start, end := binEdges(lo, step, i, useLog)
		bins = append(bins, model.LiquidityBin{
			Label:     formatEdge(start) + "-" + formatEdge(end),
			Price:     representativePrice(start, end, useLog),
			Liquidity: totals[i],
		})
	}
	return bins
}

func priceSpan(series []model.SeriesPoint) (float64, float64) {
	minPrice, maxPrice := series[0].Price, series[0].Price
	for _, point := range series[1:] {
		if point.Price < minPrice {
			minPrice = point.Price
		}
		if point.Price > maxPrice {
			maxPrice = point.Price
		}
	}
	return minPrice, maxPrice
}

func binEdges(lo, step float64, i int, useLog bool) (float64, float64) {
	start := lo + float64(i)*step
	end := start + step
	if useLog {
		return math.Pow(10, start), math.Pow(10, end)
	}
	return start, end
}

func representativePrice(start, end float64, useLog bool) float64 {
	if useLog {
		return math.Sqrt(start * end)
	}
	return (start + end) / 2
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
