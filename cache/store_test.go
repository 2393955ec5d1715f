package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingBackend struct {
	err error
}

func (f failingBackend) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingBackend) Set(context.Context, string, []byte) error   { return f.err }
func (f failingBackend) Delete(context.Context, string) error        { return f.err }

type slowBackend struct{}

func (slowBackend) Get(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowBackend) Set(ctx context.Context, _ string, _ []byte) error {
	<-ctx.Done()
	return ctx.Err()
}
func (slowBackend) Delete(ctx context.Context, _ string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestStorePutGetRemove(t *testing.T) {
	store := NewStore(NewMemory())

	assert.Equal(t, "fallback", store.Get("missing", "fallback"))

	require.True(t, store.Put("k", "v1"))
	assert.Equal(t, "v1", store.Get("k", ""))

	require.True(t, store.Put("k", "v2"))
	assert.Equal(t, "v2", store.Get("k", ""))

	assert.True(t, store.Remove("k"))
	assert.Equal(t, "", store.Get("k", ""))
	assert.True(t, store.Remove("k"), "removing an absent key succeeds")
}

func TestStoreBackendFailureIsSoft(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := NewStore(failingBackend{err: errors.New("disk full")}, WithLogger(zap.New(core)))

	assert.False(t, store.Put("k", "v"))
	assert.Equal(t, "def", store.Get("k", "def"))
	assert.False(t, store.Remove("k"))

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "cache put failed", logs.All()[0].Message)
	assert.Equal(t, "k", logs.All()[0].ContextMap()["key"])
}

func TestStoreMissIsNotLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := NewStore(failingBackend{err: ErrNotFound}, WithLogger(zap.New(core)))

	assert.Equal(t, "def", store.Get("k", "def"))
	assert.True(t, store.Remove("k"))
	assert.Zero(t, logs.Len())
}

func TestStoreTimeout(t *testing.T) {
	store := NewStore(slowBackend{}, WithTimeout(20*time.Millisecond))

	start := time.Now()
	assert.False(t, store.Put("k", "v"))
	assert.Equal(t, "def", store.Get("k", "def"))
	assert.Less(t, time.Since(start), time.Second)
}

func TestStoreConcurrentPutsToDifferentKeys(t *testing.T) {
	mem := NewMemory()
	store := NewStore(mem)

	const workers = 16
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("w%d:%d", worker, i)
				store.Put(key, key)
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, workers*perWorker, mem.Len())
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			key := fmt.Sprintf("w%d:%d", w, i)
			assert.Equal(t, key, store.Get(key, ""))
		}
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, mem.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))

	assert.ErrorIs(t, mem.Delete(ctx, "nope"), ErrNotFound)
}
