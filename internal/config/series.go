package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SeriesConfig holds configuration for the series command.
type SeriesConfig struct {
	In         string
	Out        string
	PGDSN      string
	PriceField string
	TopN       int
	Bins       int
	Workers    int
	LogLevel   string
}

// LoadSeries merges config file, environment variables, and flags into SeriesConfig.
func LoadSeries(cfgFile string, flags *pflag.FlagSet) (SeriesConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RANGETOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/snapshots.jsonl")
	v.SetDefault("price-field", "price0")
	v.SetDefault("top-n", 10)
	v.SetDefault("bins", 20)
	v.SetDefault("workers", 4)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return SeriesConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := readConfigFile(v, cfgFile); err != nil {
		return SeriesConfig{}, err
	}

	cfg := SeriesConfig{
		In:         v.GetString("in"),
		Out:        v.GetString("out"),
		PGDSN:      v.GetString("pg-dsn"),
		PriceField: v.GetString("price-field"),
		TopN:       v.GetInt("top-n"),
		Bins:       v.GetInt("bins"),
		Workers:    v.GetInt("workers"),
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}
