package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeilh/rowcache/accessor"
	"github.com/adeilh/rowcache/cache"
	"github.com/adeilh/rowcache/remote"
	"github.com/adeilh/rowcache/result"
)

func TestAccessorsValidate(t *testing.T) {
	require.NoError(t, Accessors.Validate())
}

func TestServiceKeys(t *testing.T) {
	backend := cache.NewMemory()
	store := cache.NewStore(backend)
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	item := Item{ID: 42, Title: "answer", UpdatedAt: updated}

	src := remote.Funcs[Item]{
		List: func(_ context.Context, offset, limit int) (result.List[Item], error) {
			return result.Page([]Item{item}, 1, offset, limit), nil
		},
		ByID: func(_ context.Context, id int64) (result.Result[Item], error) {
			return result.Success(item), nil
		},
	}
	svc, err := NewService(accessor.NewProxy(store), src)
	require.NoError(t, err)

	_, err = svc.FindRows(context.Background(), 0, 10)
	require.NoError(t, err)
	_, err = svc.GetRow(context.Background(), 42)
	require.NoError(t, err)
	svc.Wait()

	assert.NotEmpty(t, store.Get("catalog.items.page.0.10", ""))
	assert.NotEmpty(t, store.Get("catalog.item.42", ""))
	assert.Equal(t, 2, backend.Len())

	got, err := svc.FindRows(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, updated.Equal(got.Items[0].UpdatedAt))

	ok, err := svc.Evict(42)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, store.Get("catalog.item.42", ""))
}

func TestItemDecodesOlderEntries(t *testing.T) {
	store := cache.NewStore(cache.NewMemory())
	require.True(t, store.Put("catalog.item.7", `{"code":0,"data":{"id":7,"title":"legacy"}}`))

	src := remote.Funcs[Item]{}
	svc, err := NewService(accessor.NewProxy(store), src)
	require.NoError(t, err)

	got, err := svc.GetRow(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "legacy", got.Data.Title)
	assert.Empty(t, got.Data.Summary)
	assert.True(t, got.Data.UpdatedAt.IsZero())
}
