package cache

import (
	"encoding/json"
	"time"
)

// Metadata describes one live (or recently live) cache entry. It is held in
// the in-memory index and mirrored to the persisted index document.
type Metadata struct {
	// Key is the derived cache key (see DeriveKey).
	Key string `json:"key"`

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is CreatedAt plus the configured TTL.
	ExpiresAt time.Time `json:"expires_at"`

	// SizeBytes is the size of the uncompressed payload.
	SizeBytes int64 `json:"size_bytes"`

	// CompressedSizeBytes is the size of the stored blob on disk.
	CompressedSizeBytes int64 `json:"compressed_size_bytes"`

	// HitCount counts successful reads of this entry.
	HitCount int64 `json:"hit_count"`

	// LastAccessed is the time of the most recent successful read.
	// Initialized to CreatedAt so LRU ordering is defined for entries
	// that have never been read.
	LastAccessed time.Time `json:"last_accessed"`
}

// IsExpired reports whether the entry is expired at the given instant.
// An entry whose ExpiresAt equals now counts as expired.
func (m *Metadata) IsExpired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// Age returns how long ago the entry was created.
func (m *Metadata) Age(now time.Time) time.Duration {
	return now.Sub(m.CreatedAt)
}

// Result is the outcome of a Get. On a miss Data is nil and FromCache is
// false; the remaining fields are only meaningful on a hit.
type Result struct {
	Data      json.RawMessage `json:"data"`
	FromCache bool            `json:"from_cache"`
	Age       time.Duration   `json:"age"`
	HitCount  int64           `json:"hit_count"`
	SizeBytes int64           `json:"size_bytes"`
}

// DecodeInto unmarshals the cached payload into v. It is a convenience for
// callers that know the concrete payload type.
func (r *Result) DecodeInto(v any) error {
	return json.Unmarshal(r.Data, v)
}
