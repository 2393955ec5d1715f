package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adeilh/rowcache/cache"
)

// Store implements cache.Backend on a Redis server. Keys are stored as
// "<namespace>:<key>" when a namespace is configured.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

// Options selects the server and the key namespace.
type Options struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
	PoolSize  int
	// Timeout applies to dialing and to each read and write.
	Timeout time.Duration
}

func NewStore(opts Options) *Store {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:6379"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           max(opts.DB, 0),
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
		PoolSize:     opts.PoolSize,
	})
	return NewStoreWithClient(client, opts.Namespace)
}

// NewStoreWithClient reuses an existing client.
func NewStoreWithClient(client goredis.UniversalClient, namespace string) *Store {
	s := &Store{client: client}
	if namespace != "" {
		s.prefix = namespace + ":"
	}
	return s
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, cache.ErrNotFound
		}
		return nil, fmt.Errorf("redis: GET: %w", err)
	}
	return payload, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: SET: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("redis: DEL: %w", err)
	}
	if n == 0 {
		return cache.ErrNotFound
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
