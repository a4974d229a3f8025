package store

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrExists is returned by Writer.Commit when the target name appeared
// while the data was being written.
var ErrExists = errors.New("store: target already exists")

// PartSuffix marks temporary objects written before a commit.
const PartSuffix = ".part"

// Store is an output location that objects are fetched into.
type Store interface {
	// Exists reports whether name is present. Any size counts.
	Exists(ctx context.Context, name string) (bool, error)

	// Create opens name for exclusive writing.
	Create(ctx context.Context, name string) (Writer, error)

	// List returns every entry with its size, temporary parts included.
	List(ctx context.Context) ([]Entry, error)

	// Remove deletes name. A missing name is not an error.
	Remove(ctx context.Context, name string) error

	// Location describes the store for display.
	Location() string

	Close() error
}

// Writer receives the content of one object. Exactly one of Commit or Abort
// must be called.
type Writer interface {
	io.Writer

	// Commit makes the written data visible under the target name.
	Commit() error

	// Abort discards the written data. Safe to call after Commit.
	Abort()
}

// Entry describes one object in a store.
type Entry struct {
	Name string
	Size int64
}

// IsPart reports whether name is a temporary object left by an
// interrupted write.
func IsPart(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, PartSuffix)
}

// Options configures Open.
type Options struct {
	// Atomic writes go to a temporary part and are renamed on commit.
	// Without it a local write streams into the final name, and an
	// interrupted write leaves a truncated file behind.
	// Buckets are always atomic.
	Atomic bool

	// Lock takes an exclusive advisory lock on a local directory for the
	// lifetime of the store.
	Lock bool

	// MinFreeSpace fails Open when the local filesystem has fewer free
	// bytes. Zero disables the check.
	MinFreeSpace int64
}

// Open returns a store for location. A location containing "://" is a
// gocloud bucket URL (mem://, file:///..., s3://..., gs://...); anything else
// is a local directory path, created with its parents if absent.
func Open(ctx context.Context, location string, opts Options) (Store, error) {
	if strings.Contains(location, "://") {
		return OpenBucket(ctx, location)
	}
	return OpenDir(location, opts)
}
