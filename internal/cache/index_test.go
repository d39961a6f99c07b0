package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cache"
)

func testMetadata(key string, createdAt time.Time, ttl time.Duration) cache.Metadata {
	return cache.Metadata{
		Key:                 key,
		CreatedAt:           createdAt,
		ExpiresAt:           createdAt.Add(ttl),
		SizeBytes:           100,
		CompressedSizeBytes: 40,
		LastAccessed:        createdAt,
	}
}

// TestIndex_RecordLookup verifies insert, replace, and lookup.
func TestIndex_RecordLookup(t *testing.T) {
	ix := cache.NewIndex(filepath.Join(t.TempDir(), "index.json"))
	now := time.Now()

	require.NoError(t, ix.Record(testMetadata("key1", now, time.Hour)))

	m, ok := ix.Lookup("key1")
	require.True(t, ok)
	assert.Equal(t, "key1", m.Key)
	assert.Equal(t, int64(100), m.SizeBytes)

	// Replacement overwrites the old record.
	replacement := testMetadata("key1", now, time.Hour)
	replacement.SizeBytes = 999
	require.NoError(t, ix.Record(replacement))

	m, ok = ix.Lookup("key1")
	require.True(t, ok)
	assert.Equal(t, int64(999), m.SizeBytes)
	assert.Equal(t, 1, ix.Len())

	_, ok = ix.Lookup("absent")
	assert.False(t, ok)
}

// TestIndex_RecordPersistsImmediately verifies the document is written
// before Record returns.
func TestIndex_RecordPersistsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	ix := cache.NewIndex(path)

	require.NoError(t, ix.Record(testMetadata("key1", time.Now(), time.Hour)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "key1")
}

// TestIndex_LoadReconciliation verifies the startup algorithm: keep only
// unexpired records with a present blob.
func TestIndex_LoadReconciliation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	now := time.Now()

	writer := cache.NewIndex(path)
	require.NoError(t, writer.Record(testMetadata("live", now, time.Hour)))
	require.NoError(t, writer.Record(testMetadata("expired", now.Add(-2*time.Hour), time.Hour)))
	require.NoError(t, writer.Record(testMetadata("blobless", now, time.Hour)))

	blobs := map[string]bool{"live": true, "expired": true}

	ix := cache.NewIndex(path)
	report := ix.Load(func(key string) bool { return blobs[key] }, now)

	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, 1, report.DroppedExpired)
	assert.Equal(t, 1, report.DroppedMissing)
	assert.False(t, report.Recovered)

	assert.True(t, ix.Has("live"))
	assert.False(t, ix.Has("expired"))
	assert.False(t, ix.Has("blobless"))
}

// TestIndex_LoadMissingDocument verifies a missing index starts empty.
func TestIndex_LoadMissingDocument(t *testing.T) {
	ix := cache.NewIndex(filepath.Join(t.TempDir(), "index.json"))

	report := ix.Load(func(string) bool { return true }, time.Now())

	assert.Zero(t, report.Loaded)
	assert.False(t, report.Recovered)
	assert.Zero(t, ix.Len())
}

// TestIndex_LoadCorruptDocument verifies an unparsable index recovers to
// empty instead of failing startup.
func TestIndex_LoadCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{ not json"), 0600))

	ix := cache.NewIndex(path)
	report := ix.Load(func(string) bool { return true }, time.Now())

	assert.True(t, report.Recovered)
	assert.Zero(t, ix.Len())
}

// TestIndex_Touch verifies hit accounting.
func TestIndex_Touch(t *testing.T) {
	ix := cache.NewIndex(filepath.Join(t.TempDir(), "index.json"))
	created := time.Now().Add(-time.Minute)
	require.NoError(t, ix.Record(testMetadata("key1", created, time.Hour)))

	accessTime := time.Now()
	m, ok := ix.Touch("key1", accessTime)
	require.True(t, ok)
	assert.Equal(t, int64(1), m.HitCount)
	assert.Equal(t, accessTime, m.LastAccessed)

	m, ok = ix.Touch("key1", accessTime.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, int64(2), m.HitCount)

	_, ok = ix.Touch("absent", accessTime)
	assert.False(t, ok)
}

// TestIndex_Remove verifies removal and its idempotence.
func TestIndex_Remove(t *testing.T) {
	ix := cache.NewIndex(filepath.Join(t.TempDir(), "index.json"))
	require.NoError(t, ix.Record(testMetadata("key1", time.Now(), time.Hour)))

	removed, err := ix.Remove("key1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = ix.Remove("key1")
	require.NoError(t, err)
	assert.False(t, removed)
}

// TestIndex_ClearPersistsEmptyDocument verifies Clear leaves a valid,
// zero-entry index file behind.
func TestIndex_ClearPersistsEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	ix := cache.NewIndex(path)
	require.NoError(t, ix.Record(testMetadata("key1", time.Now(), time.Hour)))
	require.NoError(t, ix.Record(testMetadata("key2", time.Now(), time.Hour)))

	require.NoError(t, ix.Clear())
	assert.Zero(t, ix.Len())

	reloaded := cache.NewIndex(path)
	report := reloaded.Load(func(string) bool { return true }, time.Now())
	assert.Zero(t, report.Loaded)
	assert.False(t, report.Recovered)
}

// TestIndex_SnapshotOrdered verifies deterministic snapshot ordering.
func TestIndex_SnapshotOrdered(t *testing.T) {
	ix := cache.NewIndex(filepath.Join(t.TempDir(), "index.json"))
	for _, key := range []string{"zz", "aa", "mm"} {
		require.NoError(t, ix.Record(testMetadata(key, time.Now(), time.Hour)))
	}

	snap := ix.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "aa", snap[0].Key)
	assert.Equal(t, "mm", snap[1].Key)
	assert.Equal(t, "zz", snap[2].Key)
}
