// Package cmd defines the command-line interface for leaguerank.
package cmd

import (
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	dataCmd.AddCommand(dataImportCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.String("data", contract.DefaultDataPath, "Path to the season table (CSV or XLSX)")
	flags.String("data-backend", string(schema.CSVData), "Dataset source: csv or sqlite or mysql or postgresql")
	flags.String("data-db-connect", "", "Connection string (or SQLite file) for a database dataset")
	flags.String("data-table", contract.DefaultDataTable, "Table holding the season rows for a database dataset")
	flags.IntP("year", "y", 0, "Season end year to predict (0 = season after the latest one)")
	flags.StringP("teams", "t", "", "Comma-separated list of teams (default: the season's teams)")
	flags.String("outcomes", "", "Optional CSV of team,position actual outcomes")
	flags.Int("bootstrap", contract.DefaultBootstrap, "Bootstrap iterations for confidence intervals (0 disables)")
	flags.Float64("confidence", contract.DefaultConfidenceLevel, "Confidence level for intervals, strictly between 0 and 1")
	flags.Int("trees", contract.DefaultTrees, "Number of trees in the rank model")
	flags.Int64("seed", contract.DefaultSeed, "Random seed for the rank model")
	flags.Int("max-depth", 0, "Maximum tree depth (0 = unlimited)")
	flags.Int("min-leaf", contract.DefaultMinLeaf, "Minimum samples per tree leaf")
	flags.String("folds", contract.DefaultFolds, "Validation folds as train_end:test_start-test_end, comma-separated")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	flags.String("timeout", contract.DefaultTimeout.String(), "Deadline for a whole run (0 = none)")
	flags.StringP("output", "o", string(schema.TextOut), "Output format: text or csv or json or parquet or xlsx or html")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("cache-backend", string(schema.SQLiteBackend), "Interval cache backend: sqlite or mysql or postgresql or redis or none")
	flags.String("cache-db-connect", "", "Connection string for the interval cache (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("runs-backend", "", "Prediction run tracking backend: sqlite or mysql or postgresql or none")
	flags.String("runs-db-connect", "", "Connection string for run tracking (must differ from cache-db-connect)")
	flags.String("log-level", "info", "Log level: debug or info or warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	predictCmd.Flags().Bool("validate", false, "Also run temporal cross-validation and report its score")
	if err := viper.BindPFlags(predictCmd.Flags()); err != nil {
		contract.LogFatal("Error binding predict flags", err)
	}

	dataImportCmd.Flags().Bool("replace", false, "Delete existing rows before importing")
	if err := viper.BindPFlags(dataImportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding data import flags", err)
	}

	serveCmd.Flags().String("addr", contract.DefaultAddr, "Address for the HTTP API to listen on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	runsListCmd.Flags().Int("limit", 20, "Number of runs to list (0 = all)")
	if err := viper.BindPFlags(runsListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs list flags", err)
	}

	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
