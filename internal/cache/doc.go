// Package cache implements the compressed, TTL-based persistent cache that
// backs the analytics dashboard's expensive report queries.
//
// A query string is normalized and hashed into a fixed-length key. Payloads
// are stored one gzip-compressed JSON blob per key under a dedicated cache
// directory, with a single index document tracking per-entry metadata
// (creation/expiry times, sizes, hit counters). The index is the source of
// truth for liveness and is reconciled against the blob files at startup; a
// background reaper sweeps expired entries and orphaned blobs on a fixed
// interval.
//
// Read-path failures (missing or corrupt blobs, decompression errors) are
// normalized to cache misses so callers can always fall back to recomputing
// the report. Write-path failures surface as *StorageError.
//
// A cache directory is owned by exactly one Cache instance per process; no
// cross-process file locking is implemented.
package cache
