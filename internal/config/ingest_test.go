package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadIngestFromFile(t *testing.T) {
	path := writeConfig(t, `
in: ./data/logs.jsonl
chain-id: 56
pools:
  - address: "0xAbC"
    token0_decimals: 6
    token1_decimals: 18
    fee_ppm: 500
  - address: "0xdef"
    token0_decimals: 18
    token1_decimals: 18
    fee_ppm: 3000
    tick_spacing: 60
`)

	cfg, err := LoadIngest(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.In != "./data/logs.jsonl" {
		t.Fatalf("unexpected in: %s", cfg.In)
	}
	if cfg.ChainID != 56 {
		t.Fatalf("unexpected chain id: %d", cfg.ChainID)
	}
	if cfg.Out == "" || cfg.Errors == "" {
		t.Fatal("expected default out and errors paths")
	}
	if len(cfg.Pools) != 2 {
		t.Fatalf("expected 2 pools, got %d", len(cfg.Pools))
	}

	meta := cfg.MetaByPool()
	first, ok := meta["0xabc"]
	if !ok {
		t.Fatal("expected lowercase keyed entry for 0xAbC")
	}
	if first.Token0Decimals != 6 || first.Token1Decimals != 18 {
		t.Fatalf("unexpected decimals: %+v", first)
	}
	// tick_spacing omitted, derived from the 0.05% fee tier
	if first.TickSpacing != 10 {
		t.Fatalf("unexpected derived spacing: %d", first.TickSpacing)
	}
	second := meta["0xdef"]
	if second.TickSpacing != 60 {
		t.Fatalf("unexpected explicit spacing: %d", second.TickSpacing)
	}

	records := cfg.PoolRecords()
	if len(records) != 2 {
		t.Fatalf("expected 2 pool records, got %d", len(records))
	}
	if records[0].ChainID != 56 || records[0].TickSpacing != 10 {
		t.Fatalf("unexpected pool record: %+v", records[0])
	}
}

func TestLoadSeriesFlagOverride(t *testing.T) {
	flags := pflag.NewFlagSet("series", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.Int("top-n", 10, "")
	flags.Int("bins", 20, "")
	if err := flags.Set("in", "./samples.jsonl"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := flags.Set("top-n", "5"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := LoadSeries("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.In != "./samples.jsonl" {
		t.Fatalf("unexpected in: %s", cfg.In)
	}
	if cfg.TopN != 5 {
		t.Fatalf("unexpected top-n: %d", cfg.TopN)
	}
	if cfg.Bins != 20 {
		t.Fatalf("unexpected bins default: %d", cfg.Bins)
	}
	if cfg.PriceField != "price0" {
		t.Fatalf("unexpected price field default: %s", cfg.PriceField)
	}
	if cfg.Workers != 4 {
		t.Fatalf("unexpected workers default: %d", cfg.Workers)
	}
}
