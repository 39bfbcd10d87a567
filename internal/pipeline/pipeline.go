package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"liquidityRange/internal/distribution"
	"liquidityRange/internal/engine"
	"liquidityRange/internal/model"
	"liquidityRange/internal/storage"
)

// Config controls snapshot building.
type Config struct {
	TopN       int
	NumBins    int
	PriceField distribution.PriceField
	Workers    int
}

// Builder reads liquidity samples from JSONL, groups them per pool, and
// computes a distribution snapshot for each pool.
type Builder struct {
	cfg    Config
	engine *engine.Engine
	sinks  []storage.SnapshotSink
	logger *zap.Logger
}

func NewBuilder(cfg Config, eng *engine.Engine, sinks []storage.SnapshotSink, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eng == nil {
		eng = engine.New(logger)
	}

	return &Builder{
		cfg:    cfg,
		engine: eng,
		sinks:  sinks,
		logger: logger,
	}
}

type poolGroup struct {
	chainID uint64
	address string
	meta    model.PoolMeta
	samples []model.RawSample
}

// Run executes snapshot building over a sample records JSONL file.
func (b *Builder) Run(ctx context.Context, inputPath string) error {
	if !b.cfg.PriceField.Valid() {
		return fmt.Errorf("invalid price field: %q", b.cfg.PriceField)
	}
	if b.cfg.TopN <= 0 {
		b.cfg.TopN = distribution.DefaultTopN
	}
	if b.cfg.NumBins <= 0 {
		b.cfg.NumBins = distribution.DefaultBins
	}
	if b.cfg.Workers <= 0 {
		b.cfg.Workers = 4
	}

	groups, total, failed, err := b.readGroups(inputPath)
	if err != nil {
		return err
	}

	snapshots, err := b.buildSnapshots(ctx, groups)
	if err != nil {
		return err
	}

	for _, sink := range b.sinks {
		if err := sink.PutSnapshotBatch(snapshots); err != nil {
			return fmt.Errorf("write snapshots: %w", err)
		}
	}

	b.logger.Info("snapshots complete",
		zap.Int("total", total),
		zap.Int("pools", len(groups)),
		zap.Int("snapshots", len(snapshots)),
		zap.Int("failed", failed),
	)

	return nil
}

func (b *Builder) readGroups(inputPath string) (map[string]*poolGroup, int, int, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	groups := make(map[string]*poolGroup)
	var total, failed int

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.SampleRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			b.logger.Warn("decode sample record", zap.Error(err))
			continue
		}
		if record.PoolAddress == "" {
			failed++
			b.logger.Warn("sample record without pool address")
			continue
		}

		key := poolKey(record.ChainID, record.PoolAddress)
		group := groups[key]
		if group == nil {
			group = &poolGroup{
				chainID: record.ChainID,
				address: record.PoolAddress,
				meta:    record.PoolMeta,
			}
			groups[key] = group
		}
		group.samples = append(group.samples, record.Sample)
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("scan input: %w", err)
	}

	return groups, total, failed, nil
}

func (b *Builder) buildSnapshots(ctx context.Context, groups map[string]*poolGroup) ([]model.DistributionSnapshot, error) {
	workers, err := ants.NewPool(b.cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}
	defer workers.Release()

	generatedAt := time.Now().UTC().Format(time.RFC3339)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		snapshots []model.DistributionSnapshot
	)

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		group := group
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			snapshot, ok := b.buildSnapshot(group, generatedAt)
			if !ok {
				return
			}
			mu.Lock()
			snapshots = append(snapshots, snapshot)
			mu.Unlock()
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit pool task: %w", err)
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].ChainID != snapshots[j].ChainID {
			return snapshots[i].ChainID < snapshots[j].ChainID
		}
		return snapshots[i].PoolAddress < snapshots[j].PoolAddress
	})

	return snapshots, nil
}

func (b *Builder) buildSnapshot(group *poolGroup, generatedAt string) (model.DistributionSnapshot, bool) {
	decimals0 := group.meta.Token0Decimals
	decimals1 := group.meta.Token1Decimals

	series := b.engine.BuildLiquiditySeries(group.samples, decimals0, decimals1, b.cfg.PriceField)
	if series.Status != engine.StatusSuccess {
		b.logger.Warn("series build failed", zap.String("pool", group.address))
		return model.DistributionSnapshot{}, false
	}
	top := b.engine.TopLiquiditySeries(group.samples, decimals0, decimals1, b.cfg.PriceField, b.cfg.TopN)
	hist := b.engine.LiquidityHistogram(group.samples, decimals0, decimals1, b.cfg.PriceField, b.cfg.NumBins)
	if top.Status != engine.StatusSuccess || hist.Status != engine.StatusSuccess {
		b.logger.Warn("snapshot views failed", zap.String("pool", group.address))
		return model.DistributionSnapshot{}, false
	}

	return model.DistributionSnapshot{
		ChainID:        group.chainID,
		PoolAddress:    group.address,
		PriceField:     string(b.cfg.PriceField),
		GeneratedAt:    generatedAt,
		Series:         series.Series,
		Top:            top.Series,
		Bins:           hist.Bins,
		TotalLiquidity: distribution.TotalLiquidity(series.Series),
		DroppedSamples: series.Dropped,
	}, true
}

func poolKey(chainID uint64, address string) string {
	return fmt.Sprintf("%d:%s", chainID, strings.ToLower(address))
}
