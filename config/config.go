// Package config loads rowcache settings from ROWCACHE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const EnvPrefix = "ROWCACHE_"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Listen string `env:"LISTEN" envDefault:":8080"`
	Store  Store  `envPrefix:"STORE_"`
	Remote Remote `envPrefix:"REMOTE_"`
	Log    Log    `envPrefix:"LOG_"`
}

// Store selects and configures the cache backend.
type Store struct {
	Driver        string        `env:"DRIVER" envDefault:"memory"`
	Namespace     string        `env:"NAMESPACE" envDefault:"entity-cache"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"2s"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"rowcache.db"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPoolSize int           `env:"REDIS_POOL_SIZE"`
	PostgresDSN   string        `env:"POSTGRES_DSN"`
}

// Remote configures the upstream catalog API.
type Remote struct {
	BaseURL         string        `env:"BASE_URL,required"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Retries         int           `env:"RETRIES" envDefault:"1"`
	BreakerFailures uint32        `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: %sSTORE_SQLITE_PATH is required for the sqlite driver", ErrInvalid, EnvPrefix)
		}
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("%w: %sSTORE_REDIS_ADDR is required for the redis driver", ErrInvalid, EnvPrefix)
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("%w: %sSTORE_POSTGRES_DSN is required for the postgres driver", ErrInvalid, EnvPrefix)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Store.Namespace == "" {
		return fmt.Errorf("%w: store namespace is empty", ErrInvalid)
	}
	if c.Store.Timeout <= 0 || c.Remote.Timeout <= 0 || c.Remote.BreakerCooldown <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalid)
	}
	if c.Remote.Retries < 0 {
		return fmt.Errorf("%w: remote retries must not be negative", ErrInvalid)
	}
	if c.Remote.BreakerFailures == 0 {
		return fmt.Errorf("%w: breaker failures must be positive", ErrInvalid)
	}
	return nil
}
