package testutil

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/nkiryanov/bankledger/internal/db"
)

const postgresImage = "postgres:17-alpine"

// PostgresContainer is a migrated database shared by tests of one package.
// Tests isolate from each other with InTx.
type PostgresContainer struct {
	Pool *pgxpool.Pool
	DSN  string

	// Terminate closes the pool and removes the container
	Terminate func()
}

func StartPostgresContainer(t *testing.T) PostgresContainer {
	t.Helper()
	requireDocker(t)

	// Host port is picked by docker
	container, err := postgres.Run(t.Context(),
		postgresImage,
		postgres.WithDatabase("bankledger"),
		postgres.WithUsername("bankledger"),
		postgres.WithPassword("bankledger"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "postgres container did not start")

	dsn, err := container.ConnectionString(t.Context(), "sslmode=disable")
	require.NoError(t, err)
	t.Logf("postgres ready at %s", dsn)

	pool, err := db.ConnectAndMigrate(t.Context(), dsn)
	require.NoError(t, err, "schema migration failed")

	return PostgresContainer{
		Pool: pool,
		DSN:  dsn,
		Terminate: func() {
			pool.Close()
			if err := testcontainers.TerminateContainer(container); err != nil {
				t.Errorf("postgres container not removed: %v", err)
			}
		},
	}
}

// Database tests fail loudly without docker, skipping would hide them in CI
func requireDocker(t *testing.T) {
	t.Helper()

	provider, err := testcontainers.NewDockerProvider()
	require.NoError(t, err, "docker client not configured")
	defer provider.Close() // nolint:errcheck

	require.NoError(t, provider.Health(t.Context()), "docker daemon is not reachable")
}
