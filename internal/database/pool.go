package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/kalshi-highs/internal/config"
)

// Schema creates the journal table if it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS market_decisions (
	run_id            UUID        NOT NULL,
	ticker            TEXT        NOT NULL,
	station           TEXT        NOT NULL,
	target_date       DATE        NOT NULL,
	condition         TEXT        NOT NULL,
	strategy          TEXT        NOT NULL,
	max_temp_f        NUMERIC     NOT NULL,
	rounded_max_f     INTEGER     NOT NULL,
	no_ask            INTEGER     NOT NULL,
	no_probability    NUMERIC     NOT NULL,
	expected_value    NUMERIC     NOT NULL,
	action            TEXT        NOT NULL,
	price             INTEGER,
	reason            TEXT        NOT NULL,
	decided_at        TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, ticker)
)`

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the journal table.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create market_decisions: %w", err)
	}
	return nil
}
