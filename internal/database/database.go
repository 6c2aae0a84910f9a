// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, dsn string, log *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				break
			}
			pool.Close()
			err = fmt.Errorf("ping: %w", pingErr)
		}
		log.Warn("db connect failed, retrying in 2s", "attempt", attempt, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

// schema is applied on startup. Statements are idempotent so restarting the
// service against an existing database is safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id    BIGSERIAL PRIMARY KEY,
		name  TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id  BIGSERIAL PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		UNIQUE (lat, lon)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id                 BIGSERIAL PRIMARY KEY,
		title              TEXT NOT NULL,
		annotation         TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		category_id        BIGINT NOT NULL REFERENCES categories (id),
		initiator_id       BIGINT NOT NULL REFERENCES users (id),
		location_id        BIGINT NOT NULL REFERENCES locations (id),
		event_date         TIMESTAMP NOT NULL,
		created_on         TIMESTAMP NOT NULL DEFAULT now(),
		published_on       TIMESTAMP,
		paid               BOOLEAN NOT NULL DEFAULT FALSE,
		participant_limit  INTEGER NOT NULL DEFAULT 0,
		request_moderation BOOLEAN NOT NULL DEFAULT TRUE,
		state              TEXT NOT NULL DEFAULT 'PENDING',
		confirmed_requests INTEGER NOT NULL DEFAULT 0,
		views              BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_state_date ON events (state, event_date)`,
	`CREATE INDEX IF NOT EXISTS idx_events_initiator ON events (initiator_id)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id           BIGSERIAL PRIMARY KEY,
		event_id     BIGINT NOT NULL REFERENCES events (id),
		requester_id BIGINT NOT NULL REFERENCES users (id),
		status       TEXT NOT NULL DEFAULT 'PENDING',
		created      TIMESTAMP NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_event ON requests (event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests (requester_id)`,
	`CREATE TABLE IF NOT EXISTS compilations (
		id     BIGSERIAL PRIMARY KEY,
		title  TEXT NOT NULL,
		pinned BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS compilation_events (
		compilation_id BIGINT NOT NULL REFERENCES compilations (id) ON DELETE CASCADE,
		event_id       BIGINT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
		PRIMARY KEY (compilation_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id        BIGSERIAL PRIMARY KEY,
		event_id  BIGINT NOT NULL REFERENCES events (id) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES users (id),
		text      TEXT NOT NULL,
		created   TIMESTAMP NOT NULL DEFAULT now(),
		edited    TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_event ON comments (event_id)`,
}

// Migrate applies the schema to the connected database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
