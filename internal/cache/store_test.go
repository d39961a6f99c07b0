package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cache"
)

func newTestStore(t *testing.T) *cache.BlobStore {
	t.Helper()
	store, err := cache.NewBlobStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return store
}

// TestNewBlobStore verifies directory creation and validation.
func TestNewBlobStore(t *testing.T) {
	t.Run("creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "cache")
		store, err := cache.NewBlobStore(dir)
		require.NoError(t, err)
		require.NotNil(t, store)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty directory rejected", func(t *testing.T) {
		store, err := cache.NewBlobStore("")
		require.Error(t, err)
		assert.Nil(t, store)
	})
}

// TestBlobStore_PutGetRoundTrip verifies compression round-trips payloads.
func TestBlobStore_PutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	payload := map[string]any{
		"sector":  "technology",
		"summary": "multi-source aggregated analysis",
		"sources": []any{"quotes", "filings", "search"},
	}

	size, compressedSize, err := store.Put(ctx, "abc123", payload)
	require.NoError(t, err)
	assert.Positive(t, size)
	assert.Positive(t, compressedSize)

	data, err := store.Get(ctx, "abc123")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "technology", got["sector"])
	assert.Equal(t, "multi-source aggregated analysis", got["summary"])
}

// TestBlobStore_PutOverwrites verifies a second Put replaces the blob.
func TestBlobStore_PutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Put(ctx, "key1", map[string]string{"v": "first"})
	require.NoError(t, err)
	_, _, err = store.Put(ctx, "key1", map[string]string{"v": "second"})
	require.NoError(t, err)

	data, err := store.Get(ctx, "key1")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "second", got["v"])
}

// TestBlobStore_CompressionShrinksRepetitivePayloads verifies that a
// compressible payload stores smaller than its raw form.
func TestBlobStore_CompressionShrinksRepetitivePayloads(t *testing.T) {
	store := newTestStore(t)

	entries := make([]string, 200)
	for i := range entries {
		entries[i] = "the same market commentary repeated many times over"
	}

	size, compressedSize, err := store.Put(context.Background(), "big", entries)
	require.NoError(t, err)
	assert.Less(t, compressedSize, size)
}

// TestBlobStore_GetMissing verifies ErrNotFound for absent keys.
func TestBlobStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	data, err := store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, cache.ErrNotFound)
	assert.Nil(t, data)
}

// TestBlobStore_GetCorrupt verifies ErrCorrupt for undecodable blobs.
func TestBlobStore_GetCorrupt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Put(ctx, "borked", map[string]string{"k": "v"})
	require.NoError(t, err)

	// Truncate the blob to simulate a partial write.
	path := filepath.Join(store.Directory(), "borked.json.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip data"), 0600))

	data, err := store.Get(ctx, "borked")
	require.ErrorIs(t, err, cache.ErrCorrupt)
	assert.Nil(t, data)
}

// TestBlobStore_PutUnserializable verifies a StorageError for payloads JSON
// cannot encode, with no file left behind.
func TestBlobStore_PutUnserializable(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Put(context.Background(), "chan", make(chan int))
	require.Error(t, err)

	var storageErr *cache.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "marshal", storageErr.Op)

	assert.False(t, store.Has("chan"))
}

// TestBlobStore_DeleteIdempotent verifies deleting an absent blob is fine.
func TestBlobStore_DeleteIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, err := store.Put(ctx, "gone", "payload")
	require.NoError(t, err)

	require.NoError(t, store.Delete("gone"))
	require.NoError(t, store.Delete("gone"))
	assert.False(t, store.Has("gone"))
}

// TestBlobStore_ClearAndKeys verifies Clear empties the directory.
func TestBlobStore_ClearAndKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"k1", "k2", "k3"} {
		_, _, err := store.Put(ctx, key, key)
		require.NoError(t, err)
	}

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k1", "k2", "k3"}, keys)

	require.NoError(t, store.Clear())

	keys, err = store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Clearing an empty store is not an error.
	require.NoError(t, store.Clear())
}
