//go:build integration

package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob"
)

const (
	minioImage    = "minio/minio:latest"
	minioMCImage  = "minio/mc:latest"
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

// MinioEnv is a running MinIO server with one empty bucket.
type MinioEnv struct {
	// BucketURL opens the bucket through gocloud's s3blob driver.
	BucketURL string

	container testcontainers.Container
}

// Close terminates the MinIO container.
func (e *MinioEnv) Close(ctx context.Context) error {
	return e.container.Terminate(ctx)
}

// OpenBucket opens the test bucket.
func (e *MinioEnv) OpenBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, e.BucketURL)
}

// StartMinioContainer starts MinIO, creates bucket with the mc client on a
// shared network and points the AWS credential variables at the server for
// the rest of the test.
func StartMinioContainer(t *testing.T, ctx context.Context, bucket string) *MinioEnv {
	t.Helper()

	netName := fmt.Sprintf("skyfetch-minio-%d", time.Now().UnixNano())
	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{Name: netName},
	})
	require.NoError(t, err, "create network")
	t.Cleanup(func() { network.Remove(context.Background()) })

	server, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          minioImage,
			ExposedPorts:   []string{"9000/tcp"},
			Networks:       []string{netName},
			NetworkAliases: map[string][]string{netName: {"minio"}},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
		},
		Started: true,
	})
	require.NoError(t, err, "start minio")

	mc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      minioMCImage,
			Networks:   []string{netName},
			Entrypoint: []string{"/bin/sh", "-c"},
			Cmd: []string{fmt.Sprintf("mc alias set local http://minio:9000 %s %s && mc mb --ignore-existing local/%s",
				minioUser, minioPassword, bucket)},
			WaitingFor: wait.ForExit(),
		},
		Started: true,
	})
	require.NoError(t, err, "create bucket %s", bucket)
	state, err := mc.State(ctx)
	require.NoError(t, err)
	require.Zero(t, state.ExitCode, "mc mb %s", bucket)
	mc.Terminate(ctx)

	host, err := server.Host(ctx)
	require.NoError(t, err)
	port, err := server.MappedPort(ctx, "9000")
	require.NoError(t, err)

	t.Setenv("AWS_ACCESS_KEY_ID", minioUser)
	t.Setenv("AWS_SECRET_ACCESS_KEY", minioPassword)

	return &MinioEnv{
		BucketURL: fmt.Sprintf("s3://%s?endpoint=http://%s:%s&use_path_style=true&disable_https=true&region=us-east-1",
			bucket, host, port.Port()),
		container: server,
	}
}
