package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/tharvik/flock"
)

// LockName is the advisory lock file taken in a locked directory.
const LockName = ".skyfetch.lock"

// ErrLocked is returned by OpenDir when another process holds the lock.
var ErrLocked = errors.New("store: directory is locked by another run")

// ErrLowDiskSpace is returned by OpenDir when the free-space check fails.
var ErrLowDiskSpace = errors.New("store: not enough free disk space")

// DirStore writes into a local directory.
type DirStore struct {
	dir    string
	atomic bool
	lock   *flock.Flock
}

// OpenDir creates dir (with parents) if needed and returns a store on it.
func OpenDir(dir string, opts Options) (*DirStore, error) {
	if dir == "" {
		return nil, errors.New("store: empty directory path")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	if opts.MinFreeSpace > 0 {
		usage, err := disk.Usage(dir)
		if err != nil {
			return nil, fmt.Errorf("store: disk usage %s: %w", dir, err)
		}
		if usage.Free < uint64(opts.MinFreeSpace) {
			return nil, fmt.Errorf("%w: %d bytes free in %s, need %d",
				ErrLowDiskSpace, usage.Free, dir, opts.MinFreeSpace)
		}
	}

	s := &DirStore{dir: dir, atomic: opts.Atomic}

	if opts.Lock {
		fileLock := flock.New(filepath.Join(dir, LockName))
		locked, err := fileLock.TryLock()
		if err != nil {
			fileLock.Close()
			return nil, fmt.Errorf("store: lock %s: %w", dir, err)
		}
		if !locked {
			fileLock.Close()
			return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
		}
		s.lock = fileLock
	}

	return s, nil
}

// Exists implements Store.
func (s *DirStore) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create implements Store. The file is opened with O_EXCL; in atomic mode
// that file is a uniquely named part next to the target.
func (s *DirStore) Create(_ context.Context, name string) (Writer, error) {
	target := s.path(name)
	path := target
	if s.atomic {
		path = s.path(partName(name))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrExists, name)
		}
		return nil, err
	}

	return &fileWriter{f: f, path: path, target: target, atomic: s.atomic}, nil
}

// List implements Store. The lock file is not listed.
func (s *DirStore) List(_ context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || de.Name() == LockName {
			continue
		}
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		entries = append(entries, Entry{Name: de.Name(), Size: info.Size()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Remove implements Store.
func (s *DirStore) Remove(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Location implements Store.
func (s *DirStore) Location() string { return s.dir }

// Close releases the directory lock, if held.
func (s *DirStore) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock.Close()
	s.lock = nil
	return err
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// maxPartStem bounds how much of the target name goes into a part name, so
// that any name the filesystem accepts as a target also fits as a part.
const maxPartStem = 128

// partName returns a unique temporary name for target: the target (cut to
// maxPartStem bytes on a rune boundary), a uuid and PartSuffix.
func partName(target string) string {
	stem := target
	if len(stem) > maxPartStem {
		stem = stem[:maxPartStem]
		for len(stem) > 0 && !utf8.RuneStart(target[len(stem)]) {
			stem = stem[:len(stem)-1]
		}
	}
	return "." + stem + "." + uuid.NewString() + PartSuffix
}

type fileWriter struct {
	f      *os.File
	path   string
	target string
	atomic bool
	done   bool
}

func (w *fileWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *fileWriter) Commit() error {
	if w.done {
		return errors.New("store: writer already finished")
	}
	w.done = true

	if err := w.f.Close(); err != nil {
		os.Remove(w.path)
		return err
	}
	if !w.atomic {
		return nil
	}

	// os.Link fails if the target exists, which keeps the first completed
	// write and reports the later one as a duplicate.
	err := os.Link(w.path, w.target)
	switch {
	case err == nil:
		return os.Remove(w.path)
	case errors.Is(err, fs.ErrExist):
		os.Remove(w.path)
		return fmt.Errorf("%w: %s", ErrExists, filepath.Base(w.target))
	}

	// No hard links on this filesystem.
	if _, statErr := os.Stat(w.target); statErr == nil {
		os.Remove(w.path)
		return fmt.Errorf("%w: %s", ErrExists, filepath.Base(w.target))
	}
	if err := os.Rename(w.path, w.target); err != nil {
		os.Remove(w.path)
		return fmt.Errorf("store: commit %s: %w", w.target, err)
	}
	return nil
}

// Abort discards the temporary part. Without atomic writes the truncated
// destination file is left in place.
func (w *fileWriter) Abort() {
	if w.done {
		return
	}
	w.done = true
	w.f.Close()
	if w.atomic {
		os.Remove(w.path)
	}
}
