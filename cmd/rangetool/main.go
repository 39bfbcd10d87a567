package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "rangetool",
		Short:        "Concentrated liquidity range toolkit",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	rangeCmd := &cobra.Command{
		Use:   "range",
		Short: "Map a price range onto spacing-aligned ticks",
		RunE:  runRange,
	}

	rangeCmd.Flags().Float64("lower", 0, "lower price bound (token1 per token0, human units)")
	rangeCmd.Flags().Float64("upper", 0, "upper price bound (token1 per token0, human units)")
	rangeCmd.Flags().Bool("full-range", false, "use the maximal tick range")
	rangeCmd.Flags().Float64("fee", 0.3, "fee tier percent (0.01, 0.05, 0.3, 1)")
	rangeCmd.Flags().Int32("token0-decimals", 18, "token0 decimals")
	rangeCmd.Flags().Int32("token1-decimals", 18, "token1 decimals")

	root.AddCommand(rangeCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute the counterpart deposit amount for a one-sided input",
		RunE:  runQuote,
	}

	quoteCmd.Flags().Float64("amount", 0, "deposit amount (human units)")
	quoteCmd.Flags().String("token", "token0", "input token (token0 or token1)")
	quoteCmd.Flags().Float64("price", 0, "current price (token1 per token0, human units)")
	quoteCmd.Flags().Float64("lower", 0, "lower price bound (human units)")
	quoteCmd.Flags().Float64("upper", 0, "upper price bound (human units)")
	quoteCmd.Flags().Bool("full-range", false, "use the maximal tick range")
	quoteCmd.Flags().Int32("token0-decimals", 18, "token0 decimals")
	quoteCmd.Flags().Int32("token1-decimals", 18, "token1 decimals")

	root.AddCommand(quoteCmd)

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Decode dumped pool logs into per-tick liquidity samples",
		RunE:  runIngest,
	}

	ingestCmd.Flags().String("in", "", "input raw logs JSONL")
	ingestCmd.Flags().String("out", "./data/samples.jsonl", "output samples JSONL")
	ingestCmd.Flags().String("errors", "./data/ingest_errors.jsonl", "decode errors JSONL")
	ingestCmd.Flags().Uint64("chain-id", 1, "chain id stamped on samples")
	ingestCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the pool registry")
	ingestCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(ingestCmd)

	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "Build per-pool distribution snapshots from liquidity samples",
		RunE:  runSeries,
	}

	seriesCmd.Flags().String("in", "", "input samples JSONL")
	seriesCmd.Flags().String("out", "./data/snapshots.jsonl", "output snapshots JSONL")
	seriesCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for snapshots")
	seriesCmd.Flags().String("price-field", "price0", "price axis (price0 or price1)")
	seriesCmd.Flags().Int("top-n", 10, "entries kept in the top view")
	seriesCmd.Flags().Int("bins", 20, "histogram bin count")
	seriesCmd.Flags().Int("workers", 4, "parallel pool snapshot workers")
	seriesCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(seriesCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
