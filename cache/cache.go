// Package cache provides the synchronous key/value store the accessor layer
// reads and writes, on top of pluggable backends.
package cache

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("cache: key not found")

// Backend is a durable, string-keyed blob store bound to a single namespace.
// It can be backed by memory, SQLite, Redis, PostgreSQL or any other KV store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
