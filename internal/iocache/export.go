package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/parquet"
)

// ExportRuns writes every stored run and team prediction to two Parquet files
// named after outputFile.
func ExportRuns(store contract.RunStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled (set --runs-backend)")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no prediction runs found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total prediction runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total team predictions: %d\n", status.TotalPredictions)

	runs, err := store.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve prediction runs: %w", err)
	}
	teams, err := store.ListTeamPredictions("")
	if err != nil {
		return fmt.Errorf("failed to retrieve team predictions: %w", err)
	}

	runsFile := outputFile + ".prediction_runs.parquet"
	if err := parquet.WritePredictionRunsParquet(parquet.ConvertPredictionRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write prediction runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d prediction runs to: %s\n", len(runs), runsFile)

	teamsFile := outputFile + ".team_predictions.parquet"
	if err := parquet.WriteTeamPredictionsParquet(parquet.ConvertTeamPredictionRecords(teams), teamsFile); err != nil {
		return fmt.Errorf("failed to write team predictions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d team predictions to: %s\n", len(teams), teamsFile)
	return nil
}
