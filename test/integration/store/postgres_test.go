//go:build integration

// Package store_test exercises GORMStore against a real PostgreSQL
// instance, the backend production deployments use (§ store's SQLite path
// is covered by the package's own :memory: unit tests everywhere else).
package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
)

// startPostgres brings up a disposable postgres:16-alpine container and
// returns a store.PostgresConfig pointed at it. The container is torn down when the
// test completes.
func startPostgres(t *testing.T) store.PostgresConfig {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("accessreq_it"),
		postgres.WithUsername("accessreq_it"),
		postgres.WithPassword("accessreq_it"),
		testcontainers.WithWaitStrategyAndDeadline(2*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return store.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "accessreq_it",
		User:     "accessreq_it",
		Password: "accessreq_it",
		SSLMode:  "disable",
	}
}

func TestGORMStore_Postgres_AutoMigratesAndRoundTripsUser(t *testing.T) {
	pgCfg := startPostgres(t)

	s, err := store.New(&store.Config{Type: store.DatabaseTypePostgres, Postgres: pgCfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	u := &models.User{Username: "alice", Email: "alice@example.com", Active: true}
	id, err := s.CreateUser(context.Background(), u)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got.Email)
}

func TestGORMStore_Postgres_ReadyRespectsStatusAfterClaim(t *testing.T) {
	pgCfg := startPostgres(t)

	s, err := store.New(&store.Config{Type: store.DatabaseTypePostgres, Postgres: pgCfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	reqID := "req-1"
	task := &models.Task{
		Kind:                models.TaskKindWorkflow,
		Status:              models.TaskPending,
		PermissionRequestID: &reqID,
	}
	id, err := s.CreateTask(context.Background(), task)
	require.NoError(t, err)

	ready, err := s.Ready(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ready, 1, "pending task must be claimable via the Postgres FOR UPDATE SKIP LOCKED path")
	require.Equal(t, id, ready[0].ID)

	ready[0].Status = models.TaskRunning
	require.NoError(t, s.UpdateTask(context.Background(), ready[0]))

	stillReady, err := s.Ready(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, stillReady, "a running task must not be re-claimed by a later Ready() sweep")
}
