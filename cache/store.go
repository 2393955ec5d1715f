package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Options controls how a Store talks to its backend.
type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

type Option func(*Options)

// WithTimeout bounds every backend call issued by the store.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.Timeout = d
		}
	}
}

// WithLogger sets the logger used to report soft failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func defaultOptions() Options {
	return Options{Timeout: 2 * time.Second, Logger: zap.NewNop()}
}

// Store exposes the synchronous key/value contract on top of a Backend.
// Failures never escape as errors: reads fall back to the caller's default
// and writes report false.
type Store struct {
	backend Backend
	timeout time.Duration
	log     *zap.Logger
}

// NewStore wraps a backend.
func NewStore(b Backend, opts ...Option) *Store {
	cfg := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Store{backend: b, timeout: cfg.Timeout, log: cfg.Logger}
}

// Get returns the value stored under key, or def when it is absent or the
// backend fails.
func (s *Store) Get(key, def string) string {
	ctx, cancel := s.opContext()
	defer cancel()

	value, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return def
	}
	return string(value)
}

// Put stores value under key. A false return means the value was not
// persisted.
func (s *Store) Put(key, value string) bool {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.backend.Set(ctx, key, []byte(value)); err != nil {
		s.log.Warn("cache put failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Remove deletes key. Removing an absent key succeeds.
func (s *Store) Remove(key string) bool {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("cache remove failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}
