// Package engine is the consolidated surface the dashboard's collaborators
// call: aligned range derivation, counterpart amount computation, and
// liquidity series aggregation. Everything here is a pure function over its
// inputs; the only state is an injected logger, so concurrent callers need no
// coordination.
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"liquidityRange/internal/distribution"
	"liquidityRange/internal/liquidity"
	"liquidityRange/internal/model"
	"liquidityRange/internal/tickmath"
)

// Status tags a series result envelope.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Engine exposes the calculator operations.
type Engine struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// AlignedRange is a spacing-aligned, bounds-clamped tick interval.
type AlignedRange struct {
	TickLower int32 `json:"tick_lower"`
	TickUpper int32 `json:"tick_upper"`
}

// ComputeAlignedRange maps a human price range (or the full-range sentinel)
// onto the tick lattice for a pool's fee tier. Human prices are divided by
// the decimal factor before tick conversion; that adjustment happens here and
// nowhere else.
func (e *Engine) ComputeAlignedRange(r liquidity.Range, feePercent float64, decimals0, decimals1 int32) (AlignedRange, error) {
	spacing := tickmath.SpacingForFee(feePercent)

	if r.IsFull() {
		lo, hi := tickmath.FullRange(spacing)
		return AlignedRange{TickLower: lo, TickUpper: hi}, nil
	}

	factor := tickmath.DecimalFactor(decimals0, decimals1)
	lower, upper := r.Bounds()

	tickLower, err := tickmath.PriceToTick(lower / factor)
	if err != nil {
		return AlignedRange{}, fmt.Errorf("lower bound: %w", err)
	}
	tickUpper, err := tickmath.PriceToTick(upper / factor)
	if err != nil {
		return AlignedRange{}, fmt.Errorf("upper bound: %w", err)
	}

	lo, hi := tickmath.AlignedRange(tickLower, tickUpper, spacing)
	return AlignedRange{TickLower: lo, TickUpper: hi}, nil
}

// CounterpartResult is the deposit pair in human units plus the smallest-unit
// form the transaction collaborator consumes.
type CounterpartResult struct {
	Amount0     decimal.Decimal `json:"amount0"`
	Amount1     decimal.Decimal `json:"amount1"`
	Amount0Base decimal.Decimal `json:"amount0_base"`
	Amount1Base decimal.Decimal `json:"amount1_base"`
}

// ComputeCounterpartAmount computes the matching deposit amount for a
// one-sided input.
func (e *Engine) ComputeCounterpartAmount(input liquidity.DepositInput, currentPrice float64, r liquidity.Range, decimals0, decimals1 int32) (CounterpartResult, error) {
	pair, err := liquidity.CounterpartAmount(input, currentPrice, r)
	if err != nil {
		return CounterpartResult{}, err
	}
	base0, base1 := pair.BaseUnits(decimals0, decimals1)
	return CounterpartResult{
		Amount0:     pair.Amount0,
		Amount1:     pair.Amount1,
		Amount0Base: base0,
		Amount1Base: base1,
	}, nil
}

// SeriesResult is the envelope returned to series consumers.
type SeriesResult struct {
	Status  Status              `json:"status"`
	Series  []model.SeriesPoint `json:"series"`
	Dropped int                 `json:"dropped,omitempty"`
}

// HistogramResult is the envelope for the histogram view.
type HistogramResult struct {
	Status  Status               `json:"status"`
	Bins    []model.LiquidityBin `json:"bins"`
	Dropped int                  `json:"dropped,omitempty"`
}

// BuildLiquiditySeries parses raw samples and returns the price-sorted base
// series. Malformed samples are dropped, counted, and logged; an empty series
// is a success.
func (e *Engine) BuildLiquiditySeries(raw []model.RawSample, decimals0, decimals1 int32, field distribution.PriceField) SeriesResult {
	series, dropped, ok := e.baseSeries(raw, decimals0, decimals1, field)
	if !ok {
		return SeriesResult{Status: StatusError}
	}
	return SeriesResult{Status: StatusSuccess, Series: series, Dropped: dropped}
}

// TopLiquiditySeries returns the n largest concentrations of the base series.
func (e *Engine) TopLiquiditySeries(raw []model.RawSample, decimals0, decimals1 int32, field distribution.PriceField, n int) SeriesResult {
	series, dropped, ok := e.baseSeries(raw, decimals0, decimals1, field)
	if !ok {
		return SeriesResult{Status: StatusError}
	}
	return SeriesResult{Status: StatusSuccess, Series: distribution.TopN(series, n), Dropped: dropped}
}

// LiquidityHistogram buckets the base series into numBins price bins.
func (e *Engine) LiquidityHistogram(raw []model.RawSample, decimals0, decimals1 int32, field distribution.PriceField, numBins int) HistogramResult {
	series, dropped, ok := e.baseSeries(raw, decimals0, decimals1, field)
	if !ok {
		return HistogramResult{Status: StatusError}
	}
	return HistogramResult{Status: StatusSuccess, Bins: distribution.Histogram(series, numBins), Dropped: dropped}
}

func (e *Engine) baseSeries(raw []model.RawSample, decimals0, decimals1 int32, field distribution.PriceField) ([]model.SeriesPoint, int, bool) {
	if !field.Valid() {
		e.logger.Warn("unknown price field", zap.String("field", string(field)))
		return nil, 0, false
	}
	samples, dropped := distribution.ParseSamples(raw)
	if dropped > 0 {
		e.logger.Warn("dropped malformed samples", zap.Int("dropped", dropped), zap.Int("kept", len(samples)))
	}
	return distribution.BuildSeries(samples, decimals0, decimals1, field), dropped, true
}
