package cache

import (
	"errors"
	"fmt"
)

// Common cache errors.
var (
	// ErrNotFound indicates the blob file for a key does not exist. The
	// engine treats this as a miss, never surfacing it to callers.
	ErrNotFound = errors.New("cache entry not found")

	// ErrCorrupt indicates a blob file exists but could not be
	// decompressed or decoded. Handled identically to ErrNotFound.
	ErrCorrupt = errors.New("cache entry corrupt")

	// ErrInvalidKey indicates an empty or unusable cache key.
	ErrInvalidKey = errors.New("cache key cannot be empty")
)

// StorageError wraps a write-path failure (serialization, compression, or
// filesystem write). Unlike read-path errors it is surfaced to the caller so
// it can decide whether to retry or proceed uncached.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cache storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache storage %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
