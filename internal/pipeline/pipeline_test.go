package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"liquidityRange/internal/distribution"
	"liquidityRange/internal/model"
	"liquidityRange/internal/storage"
)

type memorySink struct {
	mu        sync.Mutex
	snapshots []model.DistributionSnapshot
}

func (s *memorySink) PutSnapshotBatch(snapshots []model.DistributionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshots...)
	return nil
}

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	var data []byte
	for _, line := range lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestBuilderGroupsPerPool(t *testing.T) {
	input := writeInput(t,
		`{"chain_id":1,"pool_address":"0xAAA","sample":{"tick_index":100,"net_liquidity_delta":"50"},"pool_meta":{"token0_decimals":18,"token1_decimals":18,"fee_ppm":3000,"tick_spacing":60}}`,
		`{"chain_id":1,"pool_address":"0xaaa","sample":{"tick_index":200,"net_liquidity_delta":"20"},"pool_meta":{"token0_decimals":18,"token1_decimals":18,"fee_ppm":3000,"tick_spacing":60}}`,
		`{"chain_id":1,"pool_address":"0xbbb","sample":{"tick_index":-60,"net_liquidity_delta":"10"},"pool_meta":{"token0_decimals":6,"token1_decimals":18,"fee_ppm":500,"tick_spacing":10}}`,
	)

	sink := &memorySink{}
	builder := NewBuilder(Config{PriceField: distribution.PriceToken0, Workers: 2}, nil, []storage.SnapshotSink{sink}, nil)

	if err := builder.Run(context.Background(), input); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sink.snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(sink.snapshots))
	}

	// Case-insensitive pool grouping keeps 0xAAA and 0xaaa together; sorted
	// output puts it first.
	first := sink.snapshots[0]
	if first.PoolAddress != "0xAAA" {
		t.Fatalf("unexpected first pool: %s", first.PoolAddress)
	}
	if len(first.Series) != 2 {
		t.Fatalf("expected 2 series points, got %d", len(first.Series))
	}
	if math.Abs(first.TotalLiquidity-70) > 1e-9 {
		t.Fatalf("unexpected total liquidity: %f", first.TotalLiquidity)
	}
	if first.PriceField != "price0" {
		t.Fatalf("unexpected price field: %s", first.PriceField)
	}
	if first.GeneratedAt == "" {
		t.Fatal("expected generated_at to be set")
	}

	second := sink.snapshots[1]
	if second.PoolAddress != "0xbbb" {
		t.Fatalf("unexpected second pool: %s", second.PoolAddress)
	}
	if len(second.Series) != 1 {
		t.Fatalf("expected 1 series point, got %d", len(second.Series))
	}
}

func TestBuilderSkipsMalformedLines(t *testing.T) {
	input := writeInput(t,
		`not json`,
		`{"chain_id":1,"sample":{"tick_index":1,"net_liquidity_delta":"1"}}`,
		`{"chain_id":1,"pool_address":"0xccc","sample":{"tick_index":60,"net_liquidity_delta":"5"},"pool_meta":{"token0_decimals":18,"token1_decimals":18,"fee_ppm":3000,"tick_spacing":60}}`,
	)

	sink := &memorySink{}
	builder := NewBuilder(Config{PriceField: distribution.PriceToken0}, nil, []storage.SnapshotSink{sink}, nil)

	if err := builder.Run(context.Background(), input); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(sink.snapshots))
	}
	if sink.snapshots[0].PoolAddress != "0xccc" {
		t.Fatalf("unexpected pool: %s", sink.snapshots[0].PoolAddress)
	}
}

func TestBuilderRejectsInvalidPriceField(t *testing.T) {
	input := writeInput(t,
		`{"chain_id":1,"pool_address":"0xaaa","sample":{"tick_index":0,"net_liquidity_delta":"1"},"pool_meta":{"token0_decimals":18,"token1_decimals":18}}`,
	)

	builder := NewBuilder(Config{PriceField: "bogus"}, nil, nil, nil)
	if err := builder.Run(context.Background(), input); err == nil {
		t.Fatal("expected invalid price field error")
	}
}

func TestBuilderDropsBadSamplesPerPool(t *testing.T) {
	input := writeInput(t,
		`{"chain_id":1,"pool_address":"0xaaa","sample":{"tick_index":"abc","net_liquidity_delta":"1"},"pool_meta":{"token0_decimals":18,"token1_decimals":18}}`,
		`{"chain_id":1,"pool_address":"0xaaa","sample":{"tick_index":120,"net_liquidity_delta":"40"},"pool_meta":{"token0_decimals":18,"token1_decimals":18}}`,
	)

	sink := &memorySink{}
	builder := NewBuilder(Config{PriceField: distribution.PriceToken0}, nil, []storage.SnapshotSink{sink}, nil)

	if err := builder.Run(context.Background(), input); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(sink.snapshots))
	}
	snapshot := sink.snapshots[0]
	if snapshot.DroppedSamples != 1 {
		t.Fatalf("expected 1 dropped sample, got %d", snapshot.DroppedSamples)
	}
	if len(snapshot.Series) != 1 || snapshot.Series[0].Tick != 120 {
		t.Fatalf("unexpected series: %+v", snapshot.Series)
	}
}
