// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"personalcal/internal/config"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a single-user service.
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		slog.Warn("db connect failed, retrying in 2s",
			"attempt", attempt, "max", 5, "err", err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// Migrate bootstraps the schema. Attendees live in a text[] column; pgx
// scans that into []string directly, so no join table is needed for a
// free-text name list.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS events (
			id          text PRIMARY KEY,
			title       text NOT NULL,
			description text NOT NULL DEFAULT '',
			location    text NOT NULL DEFAULT '',
			start_time  timestamptz NOT NULL,
			end_time    timestamptz NOT NULL,
			attendees   text[] NOT NULL DEFAULT '{}',
			created_at  timestamptz NOT NULL,
			updated_at  timestamptz NOT NULL
		);
		CREATE INDEX IF NOT EXISTS events_start_time_idx ON events (start_time);
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate events table: %w", err)
	}
	return nil
}
