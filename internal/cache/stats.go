package cache

import "time"

// entryOverheadBytes approximates the in-memory cost of one index record:
// the Metadata struct, the map bucket share, and the interned key string.
const entryOverheadBytes = 176

// Stats aggregates the live index for the administrative status surface.
type Stats struct {
	// TotalEntries is the number of live index records.
	TotalEntries int `json:"total_entries"`

	// TotalSizeBytes sums the uncompressed payload sizes.
	TotalSizeBytes int64 `json:"total_size_bytes"`

	// TotalCompressedBytes sums the on-disk blob sizes.
	TotalCompressedBytes int64 `json:"total_compressed_bytes"`

	// TotalHits sums hit counters across entries.
	TotalHits int64 `json:"total_hits"`

	// HitRate is hits / (hits + entries). This mirrors the dashboard's
	// historical metric: entry count stands in for misses, so the value
	// is an approximation, not a true request ratio.
	HitRate float64 `json:"hit_rate"`

	// OldestEntry and NewestEntry are the extreme creation timestamps,
	// nil when the cache is empty.
	OldestEntry *time.Time `json:"oldest_entry"`
	NewestEntry *time.Time `json:"newest_entry"`

	// MemoryBytes estimates the in-memory footprint of the index.
	MemoryBytes int64 `json:"memory_bytes"`
}

// CompressionStats summarizes how well payloads compress on disk.
type CompressionStats struct {
	TotalSizeBytes       int64 `json:"total_size_bytes"`
	TotalCompressedBytes int64 `json:"total_compressed_bytes"`

	// SavedBytes is the disk space saved by compression. Tiny or
	// incompressible payloads can make this negative.
	SavedBytes int64 `json:"saved_bytes"`

	// Ratio is 1 - compressed/uncompressed, zero for an empty cache.
	Ratio float64 `json:"ratio"`
}

// Stats computes aggregate statistics over the live index.
func (c *Cache) Stats() Stats {
	snap := c.index.Snapshot()

	stats := Stats{TotalEntries: len(snap)}
	for _, m := range snap {
		stats.TotalSizeBytes += m.SizeBytes
		stats.TotalCompressedBytes += m.CompressedSizeBytes
		stats.TotalHits += m.HitCount
		stats.MemoryBytes += entryOverheadBytes + int64(len(m.Key))

		created := m.CreatedAt
		if stats.OldestEntry == nil || created.Before(*stats.OldestEntry) {
			c := created
			stats.OldestEntry = &c
		}
		if stats.NewestEntry == nil || created.After(*stats.NewestEntry) {
			c := created
			stats.NewestEntry = &c
		}
	}

	if denom := stats.TotalHits + int64(stats.TotalEntries); denom > 0 {
		stats.HitRate = float64(stats.TotalHits) / float64(denom)
	}
	return stats
}

// CompressionStats computes the aggregate compression ratio over the live
// index.
func (c *Cache) CompressionStats() CompressionStats {
	snap := c.index.Snapshot()

	var stats CompressionStats
	for _, m := range snap {
		stats.TotalSizeBytes += m.SizeBytes
		stats.TotalCompressedBytes += m.CompressedSizeBytes
	}
	stats.SavedBytes = stats.TotalSizeBytes - stats.TotalCompressedBytes
	if stats.TotalSizeBytes > 0 {
		stats.Ratio = 1 - float64(stats.TotalCompressedBytes)/float64(stats.TotalSizeBytes)
	}
	return stats
}
