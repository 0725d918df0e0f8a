package sharded

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Store writes downloaded binaries into a bucket using the sharded layout.
// It is safe for concurrent use; the underlying bucket handles "create if
// absent" directory races idempotently.
type Store struct {
	bucket *blob.Bucket
}

// NewStore wraps an open bucket.
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// OpenStore opens a bucket by URL (file://..., mem://) and wraps it.
func OpenStore(ctx context.Context, urlstr string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, urlstr)
	if err != nil {
		return nil, fmt.Errorf("sharded: open bucket %s: %w", urlstr, err)
	}
	return &Store{bucket: bucket}, nil
}

// Close releases the underlying bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// Exists reports whether key holds a non-empty blob.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		if isNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return attrs.Size > 0, nil
}

// Write streams r into key, returning the hex SHA-256 digest and the byte
// count of the data actually written. On failure any partial blob is deleted
// best-effort so a later run sees the key as missing.
func (s *Store) Write(ctx context.Context, key string, r io.Reader) (string, int64, error) {
	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create writer for %s: %w", key, err)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(w, h), r)
	if err != nil {
		w.Close()
		s.bucket.Delete(ctx, key) // best effort
		return "", 0, fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		s.bucket.Delete(ctx, key) // best effort
		return "", 0, fmt.Errorf("commit %s: %w", key, err)
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Rehash streams an existing blob through SHA-256. Used on resume to record
// files downloaded by a previous run without refetching them.
func (s *Store) Rehash(ctx context.Context, key string) (string, int64, error) {
	rd, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", key, err)
	}
	defer rd.Close()

	h := sha256.New()
	n, err := io.Copy(h, rd)
	if err != nil {
		return "", 0, fmt.Errorf("read %s: %w", key, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// isNotExist returns true if the error indicates the object doesn't exist.
func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
