//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts a container and returns host:port for the given port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host, mapped.Port()
}

// exerciseSQLBackend imports the dataset, predicts with caching and tracking on
// the same database, then inspects and exports the stored runs.
func exerciseSQLBackend(t *testing.T, backend, connStr string) {
	data := writeLeagueCSV(t, 2012, 2023)
	env := []string{
		"LEAGUERANK_DATA_BACKEND=" + backend,
		"LEAGUERANK_DATA_DB_CONNECT=" + connStr,
		"LEAGUERANK_CACHE_BACKEND=" + backend,
		"LEAGUERANK_CACHE_DB_CONNECT=" + connStr,
		"LEAGUERANK_RUNS_BACKEND=" + backend,
		"LEAGUERANK_RUNS_DB_CONNECT=" + connStr,
	}

	steps := [][]string{
		{"cache", "clear"},
		{"runs", "clear"},
		{"runs", "migrate"},
		{"data", "import", data, "--replace"},
		{"predict", "--year", "2023", "--bootstrap", "20", "--trees", "10"},
		{"predict", "--year", "2023", "--bootstrap", "20", "--trees", "10"},
		{"cache", "status"},
		{"runs", "status"},
	}
	for _, args := range steps {
		_, err := runLeaguerank(t, env, args...)
		require.NoError(t, err, "leaguerank %v", args)
	}

	out, err := runLeaguerank(t, env, "runs", "list", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "2023")

	export := filepath.Join(t.TempDir(), "league")
	out, err = runLeaguerank(t, env, "runs", "export", "--output-file", export)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 prediction runs")
}

// TestLeaguerankWithMySQL tests the leaguerank CLI with a MySQL backend.
func TestLeaguerankWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "leaguerank",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/leaguerank?parseTime=true", host, port)
	exerciseSQLBackend(t, "mysql", connStr)
}

// TestLeaguerankWithPostgres tests the leaguerank CLI with a PostgreSQL backend.
func TestLeaguerankWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432")

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port)
	exerciseSQLBackend(t, "postgresql", connStr)
}

// TestLeaguerankWithRedisCache tests the interval cache on Redis with a CSV dataset.
func TestLeaguerankWithRedisCache(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	data := writeLeagueCSV(t, 2012, 2023)
	env := []string{
		"LEAGUERANK_CACHE_BACKEND=redis",
		fmt.Sprintf("LEAGUERANK_CACHE_DB_CONNECT=redis://%s:%s/0", host, port),
	}

	_, err := runLeaguerank(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runLeaguerank(t, env, "predict", "--data", data, "--year", "2023", "--bootstrap", "20", "--trees", "10")
	require.NoError(t, err)

	out, err := runLeaguerank(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache Backend: redis")
	assert.Contains(t, out, fmt.Sprintf("Total Entries: %d", len(leagueTeams)))
}
