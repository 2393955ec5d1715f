package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeilh/rowcache/cache"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), "entity-cache")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenValidatesArguments(t *testing.T) {
	_, err := Open("", "ns")
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "x.db"), " ")
	assert.Error(t, err)
}

func TestStoreSetGetDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "rows.0.10")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, store.Set(ctx, "rows.0.10", []byte(`{"code":0}`)))
	got, err := store.Get(ctx, "rows.0.10")
	require.NoError(t, err)
	assert.Equal(t, `{"code":0}`, string(got))

	require.NoError(t, store.Set(ctx, "rows.0.10", []byte(`{"code":1}`)))
	got, err = store.Get(ctx, "rows.0.10")
	require.NoError(t, err)
	assert.Equal(t, `{"code":1}`, string(got))

	require.NoError(t, store.Delete(ctx, "rows.0.10"))
	assert.ErrorIs(t, store.Delete(ctx, "rows.0.10"), cache.ErrNotFound)
}

func TestStoreNamespacesShareFile(t *testing.T) {
	store := openTestStore(t)
	settings := store.Namespace("settings")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("entity")))
	require.NoError(t, settings.Set(ctx, "k", []byte("setting")))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "entity", string(got))

	got, err = settings.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "setting", string(got))
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := Open(path, "entity-cache")
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	require.NoError(t, store.Close())

	reopened, err := Open(path, "entity-cache")
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestStoreThroughCacheStore(t *testing.T) {
	kv := cache.NewStore(openTestStore(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			assert.True(t, kv.Put(key, key))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("k%d", i)
		assert.Equal(t, key, kv.Get(key, ""))
	}
}
