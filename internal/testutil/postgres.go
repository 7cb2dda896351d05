package testutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/andreasstove999/tableorder/internal/db"
)

const (
	dbUser     = "tableorder"
	dbPassword = "tableorder"
	dbName     = "tableorder"
)

// StartPostgres launches a Postgres container, applies the embedded
// migrations and returns its DSN. The container is terminated on cleanup.
func StartPostgres(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	req := testcontainers.ContainerRequest{
		Image: "postgres:16-alpine",
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		_ = container.Terminate(cleanupCtx)
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPassword, host, mappedPort.Port(), dbName)
	migrate(ctx, t, dsn)
	return dsn
}

func migrate(ctx context.Context, t *testing.T, dsn string) {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	deadline := time.Now().Add(30 * time.Second)
	for {
		err := db.RunMigrations(dsn, logger)
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("migrate postgres: %v", err)
		}

		select {
		case <-ctx.Done():
			t.Fatalf("context cancelled migrating postgres: %v", ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
}
