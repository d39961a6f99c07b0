package cache

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Default engine settings.
const (
	// DefaultTTL is how long a stored report stays live.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultCleanupInterval is the background sweep period.
	DefaultCleanupInterval = 24 * time.Hour

	// warmupConcurrency bounds parallel blob probes during Warmup.
	warmupConcurrency = 8
)

// Options configures a Cache. Directory is required; everything else has a
// sensible default.
type Options struct {
	// Directory is the storage root for blobs and the index document. It
	// must be owned by exactly one Cache instance per process.
	Directory string

	// TTL is the entry time-to-live. Defaults to DefaultTTL.
	TTL time.Duration

	// CleanupInterval is the reaper period. Defaults to
	// DefaultCleanupInterval.
	CleanupInterval time.Duration

	// MaxSizeBytes is the advisory size cap for compressed blobs on disk.
	// Zero means uncapped.
	MaxSizeBytes int64

	// EnforceMaxSize enables LRU eviction on Set when MaxSizeBytes is
	// exceeded. When false the cap is advisory only.
	EnforceMaxSize bool

	// Logger receives engine and reaper logs. Nil disables logging.
	Logger *zerolog.Logger

	// Clock overrides the time source, for tests. Defaults to time.Now.
	Clock func() time.Time
}

// Cache is the facade over the blob store and the index. It is safe for
// concurrent use; overlapping operations on the same key are serialized
// through a per-key lock table.
type Cache struct {
	store *BlobStore
	index *Index
	locks *keyLocks

	ttl            time.Duration
	maxSizeBytes   int64
	enforceMaxSize bool

	now func() time.Time
	log zerolog.Logger

	reaper *reaper
}

// CleanupResult reports the outcome of an expiration sweep.
type CleanupResult struct {
	// DeletedCount is the number of expired entries removed.
	DeletedCount int `json:"deleted_count"`

	// FreedBytes is the compressed on-disk bytes reclaimed.
	FreedBytes int64 `json:"freed_bytes"`

	// OrphansRemoved counts blob files deleted because no live index
	// record referenced them.
	OrphansRemoved int `json:"orphans_removed"`
}

// New opens (or creates) the cache rooted at opts.Directory, reconciles the
// persisted index against the blob files, and starts the background reaper.
// The reaper runs one sweep immediately so stale entries from a long
// downtime are purged without waiting a full interval.
func New(opts Options) (*Cache, error) {
	store, err := NewBlobStore(opts.Directory)
	if err != nil {
		return nil, err
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	interval := opts.CleanupInterval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	c := &Cache{
		store:          store,
		index:          NewIndex(filepath.Join(store.Directory(), indexFileName)),
		locks:          newKeyLocks(),
		ttl:            ttl,
		maxSizeBytes:   opts.MaxSizeBytes,
		enforceMaxSize: opts.EnforceMaxSize,
		now:            now,
		log:            log,
	}

	report := c.index.Load(store.Has, now())
	if report.Recovered {
		log.Warn().
			Str("directory", store.Directory()).
			Msg("index document missing or unreadable, starting with empty index")
	}
	log.Debug().
		Int("loaded", report.Loaded).
		Int("dropped_expired", report.DroppedExpired).
		Int("dropped_missing", report.DroppedMissing).
		Msg("index reconciled")

	c.reaper = newReaper(c, interval)
	c.reaper.start()

	return c, nil
}

// Close stops the reaper and flushes the index document. The Cache must not
// be used afterwards.
func (c *Cache) Close() error {
	c.reaper.stop()
	return c.index.Flush()
}

// Directory returns the cache storage root.
func (c *Cache) Directory() string {
	return c.store.Directory()
}

// Set computes the key for query, compresses and persists the payload, and
// records fresh metadata with expiry now+TTL. Overwrites any previous entry
// for the same key. Failures surface as *StorageError and leave the index
// untouched.
func (c *Cache) Set(ctx context.Context, query string, payload any) error {
	key := DeriveKey(query)
	unlock := c.locks.lock(key)
	defer unlock()

	size, compressedSize, err := c.store.Put(ctx, key, payload)
	if err != nil {
		return err
	}

	now := c.now()
	m := Metadata{
		Key:                 key,
		CreatedAt:           now,
		ExpiresAt:           now.Add(c.ttl),
		SizeBytes:           size,
		CompressedSizeBytes: compressedSize,
		LastAccessed:        now,
	}
	if err := c.index.Record(m); err != nil {
		return &StorageError{Op: "record", Key: key, Err: err}
	}

	c.log.Debug().
		Str("key", key).
		Int64("size_bytes", size).
		Int64("compressed_bytes", compressedSize).
		Msg("cache entry stored")

	if c.enforceMaxSize && c.maxSizeBytes > 0 {
		c.evictOverBudget(key)
	}
	return nil
}

// Get looks up query. A live entry is read, decompressed, and counted as a
// hit. Absent, expired, missing, or corrupt entries all report a miss with
// a nil error; expired and broken entries are pruned on the way out.
func (c *Cache) Get(ctx context.Context, query string) (*Result, error) {
	key := DeriveKey(query)
	unlock := c.locks.lock(key)
	defer unlock()

	m, ok := c.index.Lookup(key)
	if !ok {
		return &Result{}, nil
	}

	now := c.now()
	if m.IsExpired(now) {
		c.removeLocked(key)
		c.log.Debug().Str("key", key).Msg("cache entry expired on read")
		return &Result{}, nil
	}

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Missing or corrupt blob while the index claims liveness:
		// prune the record and report a miss.
		c.removeLocked(key)
		c.log.Warn().Str("key", key).Err(err).Msg("pruned unreadable cache entry")
		return &Result{}, nil
	}

	touched, _ := c.index.Touch(key, now)
	return &Result{
		Data:      data,
		FromCache: true,
		Age:       m.Age(now),
		HitCount:  touched.HitCount,
		SizeBytes: m.SizeBytes,
	}, nil
}

// Has reports whether a live, unexpired entry exists for query. Pure
// in-memory check; it never mutates state.
func (c *Cache) Has(query string) bool {
	m, ok := c.index.Lookup(DeriveKey(query))
	return ok && !m.IsExpired(c.now())
}

// Delete removes the entry for query if present, reporting whether anything
// was removed. Deleting an absent entry is not an error.
func (c *Cache) Delete(ctx context.Context, query string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := DeriveKey(query)
	unlock := c.locks.lock(key)
	defer unlock()

	removed, err := c.index.Remove(key)
	if err != nil {
		return removed, err
	}
	if err := c.store.Delete(key); err != nil {
		return removed, err
	}
	return removed, nil
}

// Clear removes every entry and blob. An already-empty cache is not an
// error; the index file remains but describes zero entries.
func (c *Cache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.index.Clear(); err != nil {
		return err
	}
	return c.store.Clear()
}

// Cleanup runs one expiration sweep synchronously, removing expired entries
// and orphaned blob files, and reports what was reclaimed.
func (c *Cache) Cleanup(ctx context.Context) (CleanupResult, error) {
	return c.sweep(ctx)
}

// Warmup probes which of the given queries are absent from the cache,
// verifying that live index records still have a readable blob on disk.
// The returned slice preserves the input order. Warmup never computes or
// stores anything; it exists for pre-fetch orchestration by the caller.
func (c *Cache) Warmup(ctx context.Context, queries []string) ([]string, error) {
	absent := make([]bool, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupConcurrency)
	for i, query := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := DeriveKey(query)
			m, ok := c.index.Lookup(key)
			if !ok || m.IsExpired(c.now()) || !c.store.Has(key) {
				absent[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []string
	for i, query := range queries {
		if absent[i] {
			missing = append(missing, query)
		}
	}
	return missing, nil
}

// sweep removes every expired entry and every orphaned blob. It is shared
// by Cleanup and the background reaper.
func (c *Cache) sweep(ctx context.Context) (CleanupResult, error) {
	var res CleanupResult
	now := c.now()

	for _, m := range c.index.Snapshot() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !m.IsExpired(now) {
			continue
		}
		unlock := c.locks.lock(m.Key)
		// Re-check under the key lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.index.Lookup(m.Key); ok && cur.IsExpired(now) {
			c.removeLocked(m.Key)
			res.DeletedCount++
			res.FreedBytes += cur.CompressedSizeBytes
		}
		unlock()
	}

	keys, err := c.store.Keys()
	if err != nil {
		return res, err
	}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if c.index.Has(key) {
			continue
		}
		unlock := c.locks.lock(key)
		if !c.index.Has(key) {
			if err := c.store.Delete(key); err == nil {
				res.OrphansRemoved++
			}
		}
		unlock()
	}

	return res, nil
}

// removeLocked deletes the index record and blob for key. The caller must
// hold the key lock. Best-effort: removal failures are logged, not returned,
// since pruning happens on paths that must degrade to a miss.
func (c *Cache) removeLocked(key string) {
	if _, err := c.index.Remove(key); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("failed to persist index after prune")
	}
	if err := c.store.Delete(key); err != nil {
		c.log.Warn().Str("key", key).Err(err).Msg("failed to delete blob")
	}
}

// evictOverBudget removes least-recently-accessed entries until compressed
// disk usage fits the configured cap. The just-written key is never evicted.
func (c *Cache) evictOverBudget(keep string) {
	for {
		snap := c.index.Snapshot()
		var total int64
		victim := ""
		var victimAccess time.Time
		var victimSize int64
		for _, m := range snap {
			total += m.CompressedSizeBytes
			if m.Key == keep {
				continue
			}
			if victim == "" || m.LastAccessed.Before(victimAccess) {
				victim = m.Key
				victimAccess = m.LastAccessed
				victimSize = m.CompressedSizeBytes
			}
		}
		if total <= c.maxSizeBytes || victim == "" {
			return
		}

		unlock := c.locks.lock(victim)
		if cur, ok := c.index.Lookup(victim); ok && cur.LastAccessed.Equal(victimAccess) {
			c.removeLocked(victim)
			c.log.Info().
				Str("key", victim).
				Int64("freed_bytes", victimSize).
				Msg("evicted entry over size budget")
		}
		unlock()
	}
}
