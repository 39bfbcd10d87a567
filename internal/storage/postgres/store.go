package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityRange/internal/model"
)

// Store provides Postgres persistence for distribution snapshots.
type Store struct {
	pool *pgxpool.Pool
}

var (
	writeAttempts = retry.Attempts(3)
	writeDelay    = retry.Delay(200 * time.Millisecond)
)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPools inserts or updates pool registry rows.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				chain_id, pool_address, token0_decimals, token1_decimals, fee_ppm, tick_spacing, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				token0_decimals = EXCLUDED.token0_decimals,
				token1_decimals = EXCLUDED.token1_decimals,
				fee_ppm = EXCLUDED.fee_ppm,
				tick_spacing = EXCLUDED.tick_spacing,
				updated_at = now()
		`,
			int64(pool.ChainID),
			pool.Address,
			pool.Token0Decimals,
			pool.Token1Decimals,
			int64(pool.FeePPM),
			pool.TickSpacing,
		)
	}

	return retry.Do(func() error {
		return s.sendBatch(ctx, batch, len(pools))
	}, writeAttempts, writeDelay, retry.Context(ctx))
}

// UpsertSnapshots inserts or updates distribution snapshots. The series, top
// and bin views are stored as JSONB columns keyed by pool and price field.
func (s *Store) UpsertSnapshots(ctx context.Context, snapshots []model.DistributionSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snapshot := range snapshots {
		series, err := json.Marshal(snapshot.Series)
		if err != nil {
			return fmt.Errorf("marshal series: %w", err)
		}
		top, err := json.Marshal(snapshot.Top)
		if err != nil {
			return fmt.Errorf("marshal top: %w", err)
		}
		bins, err := json.Marshal(snapshot.Bins)
		if err != nil {
			return fmt.Errorf("marshal bins: %w", err)
		}
		batch.Queue(`
			INSERT INTO distribution_snapshots (
				chain_id, pool_address, price_field, generated_at,
				series, top, bins, total_liquidity, dropped_samples, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
			ON CONFLICT (chain_id, pool_address, price_field)
			DO UPDATE SET
				generated_at = EXCLUDED.generated_at,
				series = EXCLUDED.series,
				top = EXCLUDED.top,
				bins = EXCLUDED.bins,
				total_liquidity = EXCLUDED.total_liquidity,
				dropped_samples = EXCLUDED.dropped_samples,
				updated_at = now()
		`,
			int64(snapshot.ChainID),
			snapshot.PoolAddress,
			snapshot.PriceField,
			snapshot.GeneratedAt,
			series,
			top,
			bins,
			snapshot.TotalLiquidity,
			snapshot.DroppedSamples,
		)
	}

	return retry.Do(func() error {
		return s.sendBatch(ctx, batch, len(snapshots))
	}, writeAttempts, writeDelay, retry.Context(ctx))
}

// PutSnapshotBatch implements storage.SnapshotSink.
func (s *Store) PutSnapshotBatch(snapshots []model.DistributionSnapshot) error {
	return s.UpsertSnapshots(context.Background(), snapshots)
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
