//go:build integration

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/config"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
	"github.com/mrzscan/mrzscan-backend/pkg/testutil"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestRedisStore(t *testing.T) {
	testutil.SkipIfShort(t)
	ctx := testutil.DefaultTestContext(t)
	client, err := NewRedisClient(ctx, &config.RedisConfig{Addr: startRedis(t)})
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, "test:job:", time.Minute)
	assert.Equal(t, "up", store.Health(ctx)["status"])

	job := &domain.ScanJob{JobID: GenerateJobID(), Status: domain.StatusPending, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, job))

	err = store.Update(ctx, job.JobID, func(j *domain.ScanJob) {
		j.Status = domain.StatusCompleted
		j.Result = &domain.ScanResult{
			Accuracy: domain.AccuracyHigh,
			Document: mrz.Document{MRZType: "TD3", Number: "L898902C3", ValidScore: 100},
		}
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, job.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "L898902C3", got.Result.Document.Number)

	ttl, err := client.TTL(ctx, "test:job:"+job.JobID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, job.JobID))
	_, err = store.Get(ctx, job.JobID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
