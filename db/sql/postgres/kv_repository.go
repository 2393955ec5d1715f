package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/adeilh/rowcache/cache"
)

var ErrSchemaMissing = errors.New("postgres: kv_entries table missing")

// KVRepository implements cache.Backend for one namespace of the kv_entries
// table.
type KVRepository struct {
	db        *sql.DB
	namespace string
}

// NewKVRepository wraps an existing *sql.DB connection.
func NewKVRepository(db *sql.DB, namespace string) *KVRepository {
	return &KVRepository{db: db, namespace: namespace}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`
	var value []byte
	err := r.db.QueryRowContext(ctx, query, r.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrNotFound
		}
		return nil, translateError(err)
	}
	return value, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	const query = `INSERT INTO kv_entries (namespace, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx, query, r.namespace, key, value)
	return translateError(err)
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE namespace = $1 AND key = $2`
	res, err := r.db.ExecContext(ctx, query, r.namespace, key)
	if err != nil {
		return translateError(err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return cache.ErrNotFound
	}
	return nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "42P01" {
		return ErrSchemaMissing
	}
	return fmt.Errorf("postgres: %w", err)
}

// OpenKV connects, migrates the schema unless disabled, and returns a
// repository bound to the configured namespace. The caller owns the returned
// *sql.DB.
func OpenKV(ctx context.Context, opts ...Option) (*KVRepository, *sql.DB, error) {
	o := buildOptions(opts)
	db, err := Open(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	if o.Migrate {
		if _, err := Migrate(ctx, db, KVMigrations); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return NewKVRepository(db, o.Namespace), db, nil
}
