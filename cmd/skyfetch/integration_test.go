//go:build integration

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligustah/skyfetch/internal/testutils"
)

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	files := []testutils.TestFile{
		{Name: "haslam408.fits", Data: testutils.GenerateTestData(t, 1024*1024)},
		{Name: "dirbe_3_256.fits", Data: testutils.GenerateTestData(t, 512*1024)},
	}

	t.Log("Starting HTTP test server...")
	server := testutils.StartFileServer(t, files)

	t.Log("Starting Minio container...")
	minio := testutils.StartMinioContainer(t, ctx, "cli-test-bucket")
	defer func() {
		if err := minio.Close(ctx); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	}()

	list := writeList(t, server.URL(files[0].Name), server.URL(files[1].Name))

	t.Run("fetch", func(t *testing.T) {
		require.Equal(t, ExitSuccess, run([]string{"fetch", "-i", list, "-o", minio.BucketURL, "-q"}))
	})

	t.Run("verify", func(t *testing.T) {
		bkt, err := minio.OpenBucket(ctx)
		require.NoError(t, err)
		defer bkt.Close()

		for _, f := range files {
			data, err := bkt.ReadAll(ctx, f.Name)
			require.NoError(t, err, "read %s", f.Name)
			assert.Equal(t, f.Data, data, f.Name)
		}
	})

	t.Run("status", func(t *testing.T) {
		assert.Equal(t, ExitSuccess, run([]string{"status", "-i", list, "-o", minio.BucketURL}))
	})

	t.Run("refetch_skips", func(t *testing.T) {
		before := server.Requests()
		require.Equal(t, ExitSuccess, run([]string{"fetch", "-i", list, "-o", minio.BucketURL, "-q"}))
		assert.Equal(t, before, server.Requests(), "no new requests on refetch")
	})
}
