package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"liquidityRange/internal/model"
	"liquidityRange/internal/tickmath"
)

// PoolEntry describes one pool in the configured registry. Decimals and fee
// tier come from config because the toolchain never reads chain state.
type PoolEntry struct {
	Address        string `mapstructure:"address"`
	Token0Decimals int32  `mapstructure:"token0_decimals"`
	Token1Decimals int32  `mapstructure:"token1_decimals"`
	FeePPM         uint32 `mapstructure:"fee_ppm"`
	TickSpacing    int32  `mapstructure:"tick_spacing"`
}

// IngestConfig holds configuration for the ingest command.
type IngestConfig struct {
	In       string
	Out      string
	Errors   string
	ChainID  uint64
	PGDSN    string
	LogLevel string
	Pools    []PoolEntry
}

// MetaByPool maps lowercase pool addresses to their metadata. Entries that
// omit tick_spacing get it derived from the fee tier.
func (c IngestConfig) MetaByPool() map[string]model.PoolMeta {
	out := make(map[string]model.PoolMeta, len(c.Pools))
	for _, pool := range c.Pools {
		if pool.Address == "" {
			continue
		}
		spacing := pool.TickSpacing
		if spacing == 0 {
			spacing = tickmath.SpacingForFeePPM(pool.FeePPM)
		}
		out[strings.ToLower(pool.Address)] = model.PoolMeta{
			Token0Decimals: pool.Token0Decimals,
			Token1Decimals: pool.Token1Decimals,
			FeePPM:         pool.FeePPM,
			TickSpacing:    spacing,
		}
	}
	return out
}

// PoolRecords converts the configured registry into pool rows for storage.
func (c IngestConfig) PoolRecords() []model.Pool {
	out := make([]model.Pool, 0, len(c.Pools))
	for _, pool := range c.Pools {
		if pool.Address == "" {
			continue
		}
		spacing := pool.TickSpacing
		if spacing == 0 {
			spacing = tickmath.SpacingForFeePPM(pool.FeePPM)
		}
		out = append(out, model.Pool{
			ChainID:        c.ChainID,
			Address:        pool.Address,
			Token0Decimals: pool.Token0Decimals,
			Token1Decimals: pool.Token1Decimals,
			FeePPM:         pool.FeePPM,
			TickSpacing:    spacing,
		})
	}
	return out
}

// LoadIngest merges config file, environment variables, and flags into IngestConfig.
func LoadIngest(cfgFile string, flags *pflag.FlagSet) (IngestConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RANGETOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/samples.jsonl")
	v.SetDefault("errors", "./data/ingest_errors.jsonl")
	v.SetDefault("chain-id", uint64(1))
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return IngestConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := readConfigFile(v, cfgFile); err != nil {
		return IngestConfig{}, err
	}

	cfg := IngestConfig{
		In:       v.GetString("in"),
		Out:      v.GetString("out"),
		Errors:   v.GetString("errors"),
		ChainID:  v.GetUint64("chain-id"),
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: v.GetString("log-level"),
	}

	if v.IsSet("pools") {
		if err := v.UnmarshalKey("pools", &cfg.Pools); err != nil {
			return IngestConfig{}, fmt.Errorf("parse pools: %w", err)
		}
	}

	return cfg, nil
}
