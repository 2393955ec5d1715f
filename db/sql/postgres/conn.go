// Package postgres stores cache entries in a PostgreSQL table through
// lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

var ErrMissingDSN = errors.New("postgres: DSN is required")

// Open returns a pinged connection pool.
func Open(ctx context.Context, opts ...Option) (*sql.DB, error) {
	o := buildOptions(opts)
	if o.DSN == "" {
		return nil, ErrMissingDSN
	}
	db, err := sql.Open("postgres", o.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(o.Pool.MaxOpen)
	db.SetMaxIdleConns(o.Pool.MaxIdle)
	db.SetConnMaxLifetime(o.Pool.MaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}
