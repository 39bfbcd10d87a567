package ingest

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"liquidityRange/internal/model"
)

// Accumulator folds position events into net liquidity deltas per tick. A
// mint of liquidity L over [tickLower, tickUpper) adds +L at the lower tick
// and -L at the upper one; a burn reverses both signs.
type Accumulator struct {
	deltas map[string]map[int32]*big.Int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{deltas: make(map[string]map[int32]*big.Int)}
}

// Apply folds one event into the accumulator.
func (a *Accumulator) Apply(event *PositionEvent) {
	if event == nil || event.Amount == nil || event.Amount.Sign() == 0 {
		return
	}

	key := strings.ToLower(event.PoolAddress)
	ticks := a.deltas[key]
	if ticks == nil {
		ticks = make(map[int32]*big.Int)
		a.deltas[key] = ticks
	}

	amount := event.Amount
	if event.Removed {
		amount = new(big.Int).Neg(amount)
	}

	addDelta(ticks, event.TickLower, amount)
	addDelta(ticks, event.TickUpper, new(big.Int).Neg(amount))
}

// Records flattens the accumulated deltas into sample records, attaching pool
// metadata from the registry. Pools absent from the registry are skipped and
// reported so the caller can log them.
func (a *Accumulator) Records(chainID uint64, metaByPool map[string]model.PoolMeta) ([]model.SampleRecord, []string) {
	pools := make([]string, 0, len(a.deltas))
	for pool := range a.deltas {
		pools = append(pools, pool)
	}
	sort.Strings(pools)

	records := make([]model.SampleRecord, 0, len(a.deltas))
	var missing []string
	for _, pool := range pools {
		meta, ok := lookupMeta(metaByPool, pool)
		if !ok {
			missing = append(missing, pool)
			continue
		}

		ticks := make([]int32, 0, len(a.deltas[pool]))
		for tick := range a.deltas[pool] {
			ticks = append(ticks, tick)
		}
		sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })

		for _, tick := range ticks {
			delta := a.deltas[pool][tick]
			if delta.Sign() == 0 {
				continue
			}
			records = append(records, model.SampleRecord{
				ChainID:     chainID,
				PoolAddress: pool,
				Sample: model.RawSample{
					TickIndex:         model.Numeric(formatTick(tick)),
					NetLiquidityDelta: model.Numeric(delta.String()),
				},
				PoolMeta: meta,
			})
		}
	}
	return records, missing
}

func lookupMeta(metaByPool map[string]model.PoolMeta, pool string) (model.PoolMeta, bool) {
	for address, meta := range metaByPool {
		if strings.EqualFold(address, pool) {
			return meta, true
		}
	}
	return model.PoolMeta{}, false
}

func addDelta(ticks map[int32]*big.Int, tick int32, amount *big.Int) {
	existing := ticks[tick]
	if existing == nil {
		ticks[tick] = new(big.Int).Set(amount)
		return
	}
	existing.Add(existing, amount)
}

func formatTick(tick int32) string {
	return strconv.FormatInt(int64(tick), 10)
}
