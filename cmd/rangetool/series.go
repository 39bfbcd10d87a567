package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityRange/internal/config"
	"liquidityRange/internal/distribution"
	"liquidityRange/internal/engine"
	"liquidityRange/internal/pipeline"
	"liquidityRange/internal/storage"
	"liquidityRange/internal/storage/postgres"
)

func runSeries(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSeries(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" && cfg.PGDSN == "" {
		return fmt.Errorf("output path or pg dsn is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []storage.SnapshotSink
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlSink(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	builder := pipeline.NewBuilder(pipeline.Config{
		TopN:       cfg.TopN,
		NumBins:    cfg.Bins,
		PriceField: distribution.PriceField(cfg.PriceField),
		Workers:    cfg.Workers,
	}, engine.New(logger), sinks, logger)

	logger.Info("series start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("price_field", cfg.PriceField),
		zap.Int("top_n", cfg.TopN),
		zap.Int("bins", cfg.Bins),
		zap.Int("workers", cfg.Workers),
	)

	return builder.Run(ctx, cfg.In)
}
