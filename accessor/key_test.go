package accessor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadKeyConcatenatesArgs(t *testing.T) {
	key, err := ReadKey("catalog.items.page.", 0, ".", 10)
	require.NoError(t, err)
	assert.Equal(t, "catalog.items.page.0.10", key)

	key, err = ReadKey("catalog.item.", int64(42))
	require.NoError(t, err)
	assert.Equal(t, "catalog.item.42", key)

	key, err = ReadKey("settings.theme")
	require.NoError(t, err)
	assert.Equal(t, "settings.theme", key)
}

func TestReadKeyEmptyPrefix(t *testing.T) {
	_, err := ReadKey("", 1)
	assert.ErrorIs(t, err, ErrKeyDerivation)
}

func TestWriteKeyDropsValue(t *testing.T) {
	key, value, err := WriteKey("catalog.item.", int64(42), "payload")
	require.NoError(t, err)
	assert.Equal(t, "catalog.item.42", key)
	assert.Equal(t, "payload", value)

	readKey, err := ReadKey("catalog.item.", int64(42))
	require.NoError(t, err)
	assert.Equal(t, readKey, key, "write and read keys for the same arguments match")
}

func TestWriteKeyValueOnly(t *testing.T) {
	key, value, err := WriteKey("settings.theme", "dark")
	require.NoError(t, err)
	assert.Equal(t, "settings.theme", key)
	assert.Equal(t, "dark", value)
}

func TestWriteKeyErrors(t *testing.T) {
	_, _, err := WriteKey("", 1, "v")
	assert.ErrorIs(t, err, ErrKeyDerivation)

	_, _, err = WriteKey("catalog.item.")
	assert.ErrorIs(t, err, ErrKeyDerivation)
}

func FuzzReadKeyDeterministic(f *testing.F) {
	f.Add("catalog.item.", int64(42), "x")
	f.Add("p", int64(-1), "")
	f.Fuzz(func(t *testing.T, prefix string, id int64, tail string) {
		first, err1 := ReadKey(prefix, id, tail)
		second, err2 := ReadKey(prefix, id, tail)
		if prefix == "" {
			if err1 == nil || err2 == nil {
				t.Fatalf("expected error for empty prefix")
			}
			return
		}
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected errors: %v %v", err1, err2)
		}
		if first != second {
			t.Fatalf("keys differ: %q vs %q", first, second)
		}
		writeKey, _, err := WriteKey(prefix, id, tail, "value")
		if err != nil {
			t.Fatalf("WriteKey error: %v", err)
		}
		if writeKey != first {
			t.Fatalf("write key %q != read key %q", writeKey, first)
		}
	})
}
