package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(ctx, "waveshop:cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "waveshop:cart", []byte(`{"a":1}`)))
	data, err := store.Get(ctx, "waveshop:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), data)

	require.NoError(t, store.Set(ctx, "waveshop:cart", []byte(`{"a":2}`)))
	data, err = store.Get(ctx, "waveshop:cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":2}`), data)

	require.NoError(t, store.Delete(ctx, "waveshop:cart"))
	_, err = store.Get(ctx, "waveshop:cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// deleting a missing key is not an error
	require.NoError(t, store.Delete(ctx, "waveshop:cart"))
}

func TestFileStore_KeyMapsToSafeFileName(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "waveshop:cart", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "waveshop_cart.json", entries[0].Name())
	assert.NotContains(t, entries[0].Name(), string(filepath.Separator))
}

func TestNewFileStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
