package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/iocache"
	"github.com/huangsam/leaguerank/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsConfig reads and validates the run store settings.
func runsConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}
	backend := storeBackend("runs-backend")
	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
// This is used by commands that need run access without full shared setup.
func runsSetup() error {
	backend, connStr, err := runsConfig()
	if err != nil {
		return err
	}

	// No interval caching for runs commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads the run store settings without opening the store,
// so migrations can run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend {
		connStr = sqliteFile(connStr, contract.GetRunsDBFilePath())
	}
	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	return nil
}

// runsCmd focused on prediction run tracking.
//
// Note: Runs subcommands skip sharedSetup so a missing dataset or bad
// model flags never block maintenance of stored runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored prediction runs and exports",
	Long: `Manage the history of prediction runs.

When enabled with --runs-backend, every predict run stores:
- Run metadata (season, configuration, duration, accuracy)
- Per-team predicted, adjusted and actual positions
- Per-team confidence intervals

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show run tracking statistics
  list    - List the most recent runs
  export  - Export runs to Parquet for analytics
  clear   - Remove all stored runs
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  leaguerank runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  leaguerank runs export --runs-backend sqlite --output-file league`,
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about stored prediction runs.

Displays:
- Backend type and connection status
- Total number of runs and team predictions
- Last and oldest run timestamps
- Row counts per table

Examples:
  leaguerank runs status --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is disabled (set --runs-backend)"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsListCmd lists recent runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent prediction runs",
	Long: `Print stored prediction runs as a table, newest first.

Examples:
  leaguerank runs list --runs-backend sqlite --limit 5`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to list runs", fmt.Errorf("run tracking is disabled (set --runs-backend)"))
		}
		runs, err := store.ListRuns(viper.GetInt("limit"))
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if err := iocache.PrintRuns(os.Stdout, runs); err != nil {
			contract.LogFatal("Failed to print runs", err)
		}
	},
}

// runsExportCmd exports runs to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to Parquet for BI tools and analytics",
	Long: `Export all stored prediction runs to Parquet format.

Writes two files next to --output-file:
- <output-file>.prediction_runs.parquet  - one row per run
- <output-file>.team_predictions.parquet - one row per team per run

Requires: --output-file parameter

Examples:
  leaguerank runs export --runs-backend sqlite --output-file league
  duckdb -c "SELECT * FROM read_parquet('league.team_predictions.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportRuns(iocache.Manager.GetRunStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export runs", err)
		}
	},
}

// runsClearCmd removes all stored runs.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored prediction runs",
	Long: `Delete all stored prediction runs and team predictions.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run tables and migration history

Examples:
  leaguerank runs export --runs-backend sqlite --output-file backup
  leaguerank runs clear --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before its file is removed
		iocache.CloseCaching()
		dbFile := sqliteFile(cfg.RunsDBConnect, contract.GetRunsDBFilePath())
		if err := iocache.ClearRuns(cfg.RunsBackend, dbFile, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear runs", err)
		}
		fmt.Println("Prediction runs cleared successfully.")
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  leaguerank runs migrate --runs-backend sqlite

  # Migrate to specific version
  leaguerank runs migrate --runs-backend sqlite --target-version 2

  # Roll back every migration
  leaguerank runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
