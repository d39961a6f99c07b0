package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// indexFileName is the name of the persisted index document inside the
// cache directory.
const indexFileName = "index.json"

// indexFormatVersion identifies the on-disk index layout. No compatibility
// across versions is promised; an unknown version is discarded and the
// engine starts with an empty index.
const indexFormatVersion = 1

// indexDocument is the serialized form of the full index.
type indexDocument struct {
	Version   int        `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
	Entries   []Metadata `json:"entries"`
}

// LoadReport summarizes startup reconciliation of the persisted index
// against the blob files on disk.
type LoadReport struct {
	// Loaded is the number of records kept.
	Loaded int

	// DroppedExpired counts records discarded because their TTL elapsed.
	DroppedExpired int

	// DroppedMissing counts records whose blob file no longer exists.
	DroppedMissing int

	// Recovered is true when the index document was missing or unparsable
	// and the engine started with an empty index.
	Recovered bool
}

// Index is the in-memory mapping from cache key to entry metadata, mirrored
// to a single persisted document. It is the source of truth for liveness.
// The engine is its sole writer.
type Index struct {
	path string

	mu      sync.RWMutex
	entries map[string]*Metadata

	// writeMu serializes index document writes so concurrent persists
	// cannot interleave on the temp file.
	writeMu        sync.Mutex
	persistPending atomic.Bool
}

// NewIndex creates an empty index persisted at path.
func NewIndex(path string) *Index {
	return &Index{
		path:    path,
		entries: make(map[string]*Metadata),
	}
}

// Load reads the persisted index and reconciles it against disk state: a
// record survives only if its blob exists and it has not expired. A missing
// or unparsable document yields an empty index, never an error; the cache
// must not be a startup failure point.
func (ix *Index) Load(blobExists func(key string) bool, now time.Time) LoadReport {
	var report LoadReport

	data, err := os.ReadFile(ix.path)
	if err != nil {
		report.Recovered = !errors.Is(err, fs.ErrNotExist)
		return report
	}

	var doc indexDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version != indexFormatVersion {
		report.Recovered = true
		return report
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i := range doc.Entries {
		m := doc.Entries[i]
		if m.Key == "" {
			continue
		}
		if m.IsExpired(now) {
			report.DroppedExpired++
			continue
		}
		if !blobExists(m.Key) {
			report.DroppedMissing++
			continue
		}
		ix.entries[m.Key] = &m
		report.Loaded++
	}
	return report
}

// Record inserts or replaces the metadata for a key and persists the full
// index before returning. A crash after the blob write but before Record
// only ever costs a cache-hit opportunity, never a corrupt read.
func (ix *Index) Record(m Metadata) error {
	if m.Key == "" {
		return ErrInvalidKey
	}

	ix.mu.Lock()
	entry := m
	ix.entries[m.Key] = &entry
	ix.mu.Unlock()

	return ix.persist()
}

// Lookup returns a copy of the metadata for key, if present. Pure in-memory
// read; expiry is the caller's decision.
func (ix *Index) Lookup(key string) (Metadata, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	m, ok := ix.entries[key]
	if !ok {
		return Metadata{}, false
	}
	return *m, true
}

// Touch increments the hit counter and refreshes the last-access time,
// returning the updated metadata. The index document is persisted
// asynchronously: losing a few hit-count increments across a crash is
// acceptable.
func (ix *Index) Touch(key string, now time.Time) (Metadata, bool) {
	ix.mu.Lock()
	m, ok := ix.entries[key]
	if !ok {
		ix.mu.Unlock()
		return Metadata{}, false
	}
	m.HitCount++
	m.LastAccessed = now
	updated := *m
	ix.mu.Unlock()

	ix.schedulePersist()
	return updated, true
}

// Remove deletes the record for key and persists the index. It reports
// whether a record was present.
func (ix *Index) Remove(key string) (bool, error) {
	ix.mu.Lock()
	_, ok := ix.entries[key]
	delete(ix.entries, key)
	ix.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, ix.persist()
}

// Clear drops every record and persists the now-empty index document.
func (ix *Index) Clear() error {
	ix.mu.Lock()
	ix.entries = make(map[string]*Metadata)
	ix.mu.Unlock()

	return ix.persist()
}

// Has reports whether a record exists for key.
func (ix *Index) Has(key string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.entries[key]
	return ok
}

// Len returns the number of records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Snapshot returns a copy of every record, ordered by key for deterministic
// iteration.
func (ix *Index) Snapshot() []Metadata {
	ix.mu.RLock()
	out := make([]Metadata, 0, len(ix.entries))
	for _, m := range ix.entries {
		out = append(out, *m)
	}
	ix.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Flush forces a synchronous persist of the current index state.
func (ix *Index) Flush() error {
	return ix.persist()
}

// persist writes the full index document atomically (temp file + rename).
func (ix *Index) persist() error {
	doc := indexDocument{
		Version:   indexFormatVersion,
		UpdatedAt: time.Now().UTC(),
		Entries:   ix.Snapshot(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	tempPath := ix.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	if err := os.Rename(tempPath, ix.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename index file: %w", err)
	}
	return nil
}

// schedulePersist triggers an asynchronous persist, coalescing bursts of
// touches into a single write.
func (ix *Index) schedulePersist() {
	if !ix.persistPending.CompareAndSwap(false, true) {
		return
	}
	go func() {
		ix.persistPending.Store(false)
		_ = ix.persist()
	}()
}
