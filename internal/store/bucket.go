package store

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// BucketStore writes into a gocloud bucket. Objects become visible only when
// their writer is closed, so writes are always atomic.
type BucketStore struct {
	bucket   *blob.Bucket
	location string
	owned    bool
}

// OpenBucket opens the bucket at url. A "prefix" query parameter scopes the
// store to a key prefix, e.g. "s3://maps?prefix=data/".
func OpenBucket(ctx context.Context, url string) (*BucketStore, error) {
	bkt, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("store: open bucket: %w", err)
	}
	return &BucketStore{bucket: bkt, location: url, owned: true}, nil
}

// NewBucketStore wraps an already open bucket. Close does not close it.
func NewBucketStore(bucket *blob.Bucket, location string) *BucketStore {
	return &BucketStore{bucket: bucket, location: location}
}

// Exists implements Store.
func (s *BucketStore) Exists(ctx context.Context, name string) (bool, error) {
	return s.bucket.Exists(ctx, name)
}

// Create implements Store.
func (s *BucketStore) Create(ctx context.Context, name string) (Writer, error) {
	wctx, cancel := context.WithCancel(ctx)
	w, err := s.bucket.NewWriter(wctx, name, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("store: create writer %s: %w", name, err)
	}
	return &blobWriter{store: s, ctx: ctx, name: name, w: w, cancel: cancel}, nil
}

// List implements Store.
func (s *BucketStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	iter := s.bucket.List(&blob.ListOptions{Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		if obj.IsDir {
			continue
		}
		entries = append(entries, Entry{Name: obj.Key, Size: obj.Size})
	}
	return entries, nil
}

// Remove implements Store.
func (s *BucketStore) Remove(ctx context.Context, name string) error {
	if err := s.bucket.Delete(ctx, name); err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

// Location implements Store.
func (s *BucketStore) Location() string { return s.location }

// Close implements Store.
func (s *BucketStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.bucket.Close()
}

type blobWriter struct {
	store  *BucketStore
	ctx    context.Context
	name   string
	w      *blob.Writer
	cancel context.CancelFunc
	done   bool
}

func (w *blobWriter) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Commit closes the blob writer. Buckets have no portable create-if-absent,
// so the existence check right before the close is best effort.
func (w *blobWriter) Commit() error {
	if w.done {
		return fmt.Errorf("store: writer already finished")
	}
	w.done = true
	defer w.cancel()

	exists, err := w.store.bucket.Exists(w.ctx, w.name)
	if err != nil {
		w.abort()
		return fmt.Errorf("store: commit %s: %w", w.name, err)
	}
	if exists {
		w.abort()
		return fmt.Errorf("%w: %s", ErrExists, w.name)
	}

	if err := w.w.Close(); err != nil {
		return fmt.Errorf("store: commit %s: %w", w.name, err)
	}
	return nil
}

func (w *blobWriter) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.abort()
}

// abort cancels the write context before closing, which discards the
// upload instead of committing it.
func (w *blobWriter) abort() {
	w.cancel()
	w.w.Close()
}

// isNotExist returns true if the error indicates the object doesn't exist.
func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
