package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// blobExtension is the file extension for compressed payload blobs.
const blobExtension = ".json.gz"

// BlobStore is the on-disk repository of compressed payload blobs, one file
// per key inside a dedicated cache directory. It knows nothing about TTLs or
// metadata; liveness decisions belong to the Index.
type BlobStore struct {
	directory string
}

// NewBlobStore creates the blob store rooted at directory, creating the
// directory if it does not exist.
func NewBlobStore(directory string) (*BlobStore, error) {
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	abs, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &BlobStore{directory: abs}, nil
}

// Directory returns the storage root.
func (s *BlobStore) Directory() string {
	return s.directory
}

// Put serializes payload to canonical JSON, compresses it, and atomically
// writes it to the key's blob file, overwriting any previous blob. It
// returns the uncompressed and compressed sizes. Failures abort without
// leaving a partial blob and are reported as *StorageError.
func (s *BlobStore) Put(ctx context.Context, key string, payload any) (size, compressedSize int64, err error) {
	if key == "" {
		return 0, 0, &StorageError{Op: "put", Err: ErrInvalidKey}
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, &StorageError{Op: "put", Key: key, Err: err}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, 0, &StorageError{Op: "marshal", Key: key, Err: err}
	}

	compressed, err := compress(raw)
	if err != nil {
		return 0, 0, &StorageError{Op: "compress", Key: key, Err: err}
	}

	filePath := s.blobPath(key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, compressed, 0600); writeErr != nil {
		return 0, 0, &StorageError{Op: "write", Key: key, Err: writeErr}
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return 0, 0, &StorageError{Op: "rename", Key: key, Err: renameErr}
	}

	return int64(len(raw)), int64(len(compressed)), nil
}

// Get reads and decompresses the blob for key. A missing file yields
// ErrNotFound; a blob that cannot be decompressed or does not contain valid
// JSON yields ErrCorrupt. Callers must treat both as a miss.
func (s *BlobStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.blobPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	raw, err := decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrCorrupt)
	}

	return json.RawMessage(raw), nil
}

// Has reports whether a blob file exists for the key.
func (s *BlobStore) Has(key string) bool {
	info, err := os.Stat(s.blobPath(key))
	return err == nil && !info.IsDir()
}

// Delete removes the blob for key. Absence is not an error.
func (s *BlobStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := os.Remove(s.blobPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob for key %s: %w", key, err)
	}
	return nil
}

// Clear removes every blob file in the cache directory. An already-empty
// directory is not an error.
func (s *BlobStore) Clear() error {
	keys, err := s.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the keys of all blob files currently on disk, including ones
// with no index record (orphans from an unclean shutdown).
func (s *BlobStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, blobExtension) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, blobExtension))
	}
	return keys, nil
}

// blobPath maps a key to its blob file path.
func (s *BlobStore) blobPath(key string) string {
	return filepath.Join(s.directory, key+blobExtension)
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzipWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	zr, err := gzipReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
