package accessor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore is a KeyValueStore double that records writes.
type mapStore struct {
	mu      sync.Mutex
	entries map[string]string
	fail    bool
	puts    int
}

func newMapStore() *mapStore { return &mapStore{entries: map[string]string{}} }

func (m *mapStore) Get(key, def string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.entries[key]; ok {
		return v
	}
	return def
}

func (m *mapStore) Put(key, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.fail {
		return false
	}
	m.entries[key] = value
	return true
}

func (m *mapStore) Remove(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return true
}

func (m *mapStore) snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

type item struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func TestProxySetThenGet(t *testing.T) {
	store := newMapStore()
	p := NewProxy(store)

	ok, err := p.Set("catalog.item.", int64(42), item{ID: 42, Title: "answer"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":42,"title":"answer"}`, store.snapshot()["catalog.item.42"])

	var got item
	found, err := p.Get("catalog.item.", &got, int64(42))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, item{ID: 42, Title: "answer"}, got)
}

func TestProxyGetAbsentIsNotAnError(t *testing.T) {
	p := NewProxy(newMapStore())
	var got item
	found, err := p.Get("catalog.item.", &got, 1)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestProxyGetEmptyValueIsAbsent(t *testing.T) {
	store := newMapStore()
	store.entries["catalog.item.1"] = ""
	var got item
	found, err := NewProxy(store).Get("catalog.item.", &got, 1)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestProxyGetMalformedValue(t *testing.T) {
	store := newMapStore()
	store.entries["catalog.item.1"] = "{broken"
	var got item
	found, err := NewProxy(store).Get("catalog.item.", &got, 1)
	assert.False(t, found)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestProxyKeyDerivationErrors(t *testing.T) {
	p := NewProxy(newMapStore())
	var got item

	_, err := p.Get("", &got, 1)
	assert.ErrorIs(t, err, ErrKeyDerivation)

	_, err = p.Set("")
	assert.ErrorIs(t, err, ErrKeyDerivation)

	_, err = p.Set("catalog.item.")
	assert.ErrorIs(t, err, ErrKeyDerivation)

	_, err = p.Remove("", 1)
	assert.ErrorIs(t, err, ErrKeyDerivation)
}

func TestProxySetReportsStoreFailure(t *testing.T) {
	store := newMapStore()
	store.fail = true
	ok, err := NewProxy(store).Set("catalog.item.", 1, item{ID: 1})
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, store.puts, "no retry on failure")
}

func TestProxySetEncodeFailure(t *testing.T) {
	_, err := NewProxy(newMapStore()).Set("bad.", 1, make(chan int))
	assert.ErrorIs(t, err, ErrEncode)
}

func TestProxySetIsIdempotent(t *testing.T) {
	once := newMapStore()
	twice := newMapStore()

	_, err := NewProxy(once).Set("catalog.item.", 7, item{ID: 7, Title: "final"})
	require.NoError(t, err)

	p := NewProxy(twice)
	_, err = p.Set("catalog.item.", 7, item{ID: 7, Title: "first"})
	require.NoError(t, err)
	_, err = p.Set("catalog.item.", 7, item{ID: 7, Title: "final"})
	require.NoError(t, err)

	assert.Equal(t, once.snapshot(), twice.snapshot())
}

func TestProxyRemove(t *testing.T) {
	store := newMapStore()
	p := NewProxy(store)
	_, err := p.Set("catalog.item.", 9, item{ID: 9})
	require.NoError(t, err)

	ok, err := p.Remove("catalog.item.", 9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, store.snapshot())
}

func TestProxyPrepareSnapshotsValue(t *testing.T) {
	store := newMapStore()
	p := NewProxy(store)
	items := []item{{ID: 1, Title: "before"}}

	w, err := p.Prepare("catalog.items.", 0, items)
	require.NoError(t, err)
	assert.Equal(t, "catalog.items.0", w.Key)
	assert.Zero(t, store.puts, "nothing is stored before Commit")

	items[0].Title = "after"
	require.True(t, w.Commit())

	var got []item
	found, err := p.Get("catalog.items.", &got, 0)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "before", got[0].Title)
}

func TestProxyPrepareErrors(t *testing.T) {
	p := NewProxy(newMapStore())
	_, err := p.Prepare("")
	assert.ErrorIs(t, err, ErrKeyDerivation)
	_, err = p.Prepare("bad.", make(chan int))
	assert.ErrorIs(t, err, ErrEncode)
	assert.False(t, PendingWrite{}.Commit())
}
