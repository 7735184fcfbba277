//go:build integration

package storage

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("docker not available")
	}
}

func TestPostgresStorage(t *testing.T) {
	skipIfNoDocker(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("taskmarket"),
		postgres.WithUsername("taskmarket"),
		postgres.WithPassword("taskmarket"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	runBackendSuite(t, func(t *testing.T) Backend {
		s, err := OpenPostgres(ctx, url, 4)
		require.NoError(t, err)
		_, err = s.db.exec(ctx, `TRUNCATE user_behaviors, user_interests, task_properties, tasks, properties, profiles, users`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}
