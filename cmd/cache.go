package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := storeBackend("cache-backend")
	connStr := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No run tracking for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands skip sharedSetup so a missing dataset or bad
// model flags never block cache maintenance.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the confidence interval cache (improves performance)",
	Long: `Manage the cache of bootstrap confidence intervals.

Bootstrap intervals refit the rank model hundreds of times per run. Leaguerank
caches each team's interval keyed by the dataset, season, sample count,
confidence level and model options, so repeated runs skip the resampling.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached intervals

Examples:
  # Check cache status
  leaguerank cache status

  # Clear the cache after editing the dataset in place
  leaguerank cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached confidence intervals",
	Long: `Delete all cached confidence intervals from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes every key under the cache prefix

Examples:
  # Clear SQLite cache (default)
  leaguerank cache clear

  # Clear a Redis cache
  LEAGUERANK_CACHE_BACKEND=redis LEAGUERANK_CACHE_DB_CONNECT="redis://localhost:6379/0" leaguerank cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before its file is removed
		iocache.CloseCaching()
		dbFile := sqliteFile(cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(cfg.CacheBackend, dbFile, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the confidence interval cache.

Displays:
- Backend type and connection status
- Total number of cached intervals
- Last and oldest cache entry timestamps
- Cache storage size

Examples:
  # Check cache status
  leaguerank cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetIntervalStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
