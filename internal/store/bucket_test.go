package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
)

func openMemBucket(t *testing.T) (*blob.Bucket, *BucketStore) {
	t.Helper()
	bkt, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bkt.Close() })
	return bkt, NewBucketStore(bkt, "mem://")
}

func TestBucketCommit(t *testing.T) {
	bkt, s := openMemBucket(t)
	ctx := context.Background()

	w, err := s.Create(ctx, "map.fits")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	data, err := bkt.ReadAll(ctx, "map.fits")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	ok, err := s.Exists(ctx, "map.fits")
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "map.fits", Size: 5}}, entries)
}

func TestBucketAbort(t *testing.T) {
	_, s := openMemBucket(t)
	ctx := context.Background()

	w, err := s.Create(ctx, "map.fits")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	w.Abort()

	ok, err := s.Exists(ctx, "map.fits")
	require.NoError(t, err)
	assert.False(t, ok, "aborted write must not be visible")
}

func TestBucketCommitTargetAppeared(t *testing.T) {
	bkt, s := openMemBucket(t)
	ctx := context.Background()

	w, err := s.Create(ctx, "map.fits")
	require.NoError(t, err)
	_, err = w.Write([]byte("late"))
	require.NoError(t, err)

	require.NoError(t, bkt.WriteAll(ctx, "map.fits", []byte("early"), nil))

	err = w.Commit()
	assert.True(t, errors.Is(err, ErrExists), "got %v", err)

	data, err := bkt.ReadAll(ctx, "map.fits")
	require.NoError(t, err)
	assert.Equal(t, "early", string(data))
}

func TestBucketRemove(t *testing.T) {
	bkt, s := openMemBucket(t)
	ctx := context.Background()
	require.NoError(t, bkt.WriteAll(ctx, "a.fits", []byte("x"), nil))

	require.NoError(t, s.Remove(ctx, "a.fits"))
	require.NoError(t, s.Remove(ctx, "a.fits"))

	ok, err := s.Exists(ctx, "a.fits")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBucketPrefix(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBucket(ctx, "mem://?prefix=data/")
	require.NoError(t, err)
	defer s.Close()

	w, err := s.Create(ctx, "map.fits")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Name: "map.fits", Size: 1}}, entries)
}
