// Package app wires configuration into a running rowcache process.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/adeilh/rowcache/accessor"
	"github.com/adeilh/rowcache/api"
	"github.com/adeilh/rowcache/cache"
	"github.com/adeilh/rowcache/cache/redis"
	"github.com/adeilh/rowcache/cache/sqlite"
	"github.com/adeilh/rowcache/catalog"
	"github.com/adeilh/rowcache/config"
	"github.com/adeilh/rowcache/dataservice"
	"github.com/adeilh/rowcache/db/sql/postgres"
	"github.com/adeilh/rowcache/httpx"
	"github.com/adeilh/rowcache/remote"
)

// App holds the assembled components of one process.
type App struct {
	Server   *httpx.Server
	Items    *dataservice.Service[catalog.Item]
	Registry *prometheus.Registry

	log     *zap.Logger
	closers []func() error
}

// New assembles the process from cfg. Close must be called on the result.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Registry: prometheus.NewRegistry(), log: log}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	backend, closeBackend, err := OpenBackend(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeBackend)

	store := cache.NewStore(backend,
		cache.WithTimeout(cfg.Store.Timeout),
		cache.WithLogger(log.Named("cache")),
	)
	proxy := accessor.NewProxy(store, accessor.WithLogger(log.Named("accessor")))

	client := httpx.NewClient(
		httpx.WithBaseURL(cfg.Remote.BaseURL),
		httpx.WithClientTimeout(cfg.Remote.Timeout),
		httpx.WithRetries(cfg.Remote.Retries, 100*time.Millisecond),
	)
	source := remote.NewHTTPSource[catalog.Item](client,
		remote.WithPaths("/items", "/items"),
		remote.WithBreaker("catalog", cfg.Remote.BreakerFailures, cfg.Remote.BreakerCooldown),
		remote.WithLogger(log.Named("remote")),
	)

	a.Items, err = catalog.NewService(proxy, source,
		dataservice.WithLogger(log.Named("items")),
		dataservice.WithMetrics(dataservice.NewMetrics(a.Registry)),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Server = httpx.NewServer(
		httpx.WithAddress(cfg.Listen),
		httpx.WithLogger(log.Named("http")),
	)
	a.Server.RegisterRoutes(func(e *httpx.Echo) {
		api.Register[catalog.Item](e, "/items", a.Items)
		api.RegisterOps(e, a.Registry)
	})
	return a, nil
}

// Run serves until ctx is cancelled, then drains pending write-backs.
func (a *App) Run(ctx context.Context) error {
	err := a.Server.Start(ctx)
	a.log.Debug("waiting for pending write-backs")
	a.Items.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the cache backend. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenBackend opens the cache backend selected by cfg.Driver.
func OpenBackend(ctx context.Context, cfg config.Store) (cache.Backend, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return cache.NewMemory(), func() error { return nil }, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath, cfg.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverRedis:
		s := redis.NewStore(redisOptions(cfg))
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return s, s.Close, nil
	case config.DriverPostgres:
		repo, db, err := postgres.OpenKV(ctx,
			postgres.WithDSN(cfg.PostgresDSN),
			postgres.WithNamespace(cfg.Namespace),
		)
		if err != nil {
			return nil, nil, err
		}
		return repo, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalid, cfg.Driver)
	}
}

func redisOptions(cfg config.Store) redis.Options {
	return redis.Options{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		Namespace: cfg.Namespace,
		PoolSize:  cfg.RedisPoolSize,
		Timeout:   cfg.Timeout,
	}
}
