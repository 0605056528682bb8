package cmd

import (
	"context"
	"fmt"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/dataset"
	"github.com/huangsam/leaguerank/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dataCmd groups dataset management commands.
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage the historical season dataset",
	Long: `Manage where leaguerank reads its historical league tables from.

Subcommands:
  import - Load a CSV or XLSX season table into a database table`,
}

// dataImportCmd copies a season file into a SQL table.
var dataImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a CSV or XLSX season table into a database",
	Long: `Read a season table file and insert its rows into the configured dataset
table, creating it if needed. Later runs can read the table with the same
--data-backend and --data-db-connect settings.

Examples:
  # Import into a SQLite file
  leaguerank data import pl-tables-1993-2023.csv --data-backend sqlite --data-db-connect league.db

  # Replace the rows of a PostgreSQL table
  LEAGUERANK_DATA_DB_CONNECT="host=localhost dbname=league" \
    leaguerank data import pl-tables-1993-2023.csv --data-backend postgresql --replace`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = rootCtx
		}
		if err := importSeasons(ctx, args[0], viper.GetBool("replace")); err != nil {
			contract.LogFatal("Cannot import data", err)
		}
	},
}

// importSeasons loads path and writes its rows into the configured dataset table.
func importSeasons(ctx context.Context, path string, replace bool) error {
	if cfg.DataBackend == schema.CSVData {
		return fmt.Errorf("data-backend must be sqlite, mysql or postgresql")
	}

	src := &dataset.FileSource{Path: path}
	records, err := src.Load(ctx)
	if err != nil {
		return err
	}

	backend := cfg.DataBackend.DatabaseFor()
	db, err := dataset.Open(ctx, backend, cfg.DataDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := dataset.Import(ctx, db, backend, cfg.DataTable, records, replace); err != nil {
		return err
	}
	first, last := records.Span()
	fmt.Printf("Imported %d rows (%d-%d) into %s table %s.\n", len(records), first, last, backend, cfg.DataTable)
	return nil
}
