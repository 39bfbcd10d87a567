// Package distribution turns raw per-tick liquidity samples into
// display-ready series: a price-sorted base series, a top-N view, and a
// fixed-bucket histogram.
package distribution

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"liquidityRange/internal/model"
	"liquidityRange/internal/tickmath"
)

// ParseSamples converts raw indexer records into typed samples. Records with
// unparseable or out-of-bounds tick indices, or unparseable liquidity deltas,
// are dropped and counted; a bad record never fails the batch.
func ParseSamples(raw []model.RawSample) ([]model.LiquiditySample, int) {
	samples := make([]model.LiquiditySample, 0, len(raw))
	dropped := 0
	for _, record := range raw {
		tick, ok := parseTick(record.TickIndex.String())
		if !ok {
			dropped++
			continue
		}
		delta, err := decimal.NewFromString(strings.TrimSpace(record.NetLiquidityDelta.String()))
		if err != nil {
			dropped++
			continue
		}
		samples = append(samples, model.LiquiditySample{
			Tick:         tick,
			NetLiquidity: delta.InexactFloat64(),
		})
	}
	return samples, dropped
}

func parseTick(input string) (int32, bool) {
	input = strings.TrimSpace(input)
	value, err := strconv.ParseInt(input, 10, 32)
	if err != nil {
		// Some feeds emit tick indices as decimal floats ("100.0").
		f, ferr := strconv.ParseFloat(input, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, false
		}
		value = int64(f)
	}
	if value < int64(tickmath.MinTick) || value > int64(tickmath.MaxTick) {
		return 0, false
	}
	return int32(value), true
}
