package postgres

import "time"

// Pool bounds the database/sql connection pool.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

type Options struct {
	DSN       string
	Namespace string
	Pool      Pool
	// Migrate runs KVMigrations when OpenKV connects.
	Migrate bool
}

type Option func(*Options)

// WithDSN sets the lib/pq connection string.
func WithDSN(dsn string) Option {
	return func(o *Options) { o.DSN = dsn }
}

// WithNamespace selects the kv_entries partition served by OpenKV.
func WithNamespace(ns string) Option {
	return func(o *Options) {
		if ns != "" {
			o.Namespace = ns
		}
	}
}

// WithPool replaces the pool limits. Zero fields keep their defaults.
func WithPool(p Pool) Option {
	return func(o *Options) {
		if p.MaxOpen > 0 {
			o.Pool.MaxOpen = p.MaxOpen
		}
		if p.MaxIdle > 0 {
			o.Pool.MaxIdle = p.MaxIdle
		}
		if p.MaxLifetime > 0 {
			o.Pool.MaxLifetime = p.MaxLifetime
		}
	}
}

func WithoutMigrations() Option {
	return func(o *Options) { o.Migrate = false }
}

func buildOptions(opts []Option) Options {
	o := Options{
		Namespace: "entity-cache",
		Pool:      Pool{MaxOpen: 10, MaxIdle: 5, MaxLifetime: 30 * time.Minute},
		Migrate:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
