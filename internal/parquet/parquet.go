// Package parquet provides data structures and functions for exporting leaguerank
// predictions and stored runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/leaguerank/schema"
	"github.com/parquet-go/parquet-go"
)

// PredictionRun maps to the leaguerank_prediction_runs database table.
type PredictionRun struct {
	RunID          string `parquet:"run_id,snappy"`
	PredictionYear int32  `parquet:"prediction_year,snappy"`

	// StartTime is stored as TIMESTAMP with nanosecond precision
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs   *int64   `parquet:"run_duration_ms,optional,snappy"`
	TotalTeams      int32    `parquet:"total_teams,snappy"`
	FailedTeams     int32    `parquet:"failed_teams,snappy"`
	Bootstrap       int32    `parquet:"bootstrap,snappy"`
	ConfidenceLevel float64  `parquet:"confidence_level,snappy"`
	RSquared        *float64 `parquet:"r_squared,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// TeamPrediction maps to the leaguerank_team_predictions database table.
type TeamPrediction struct {
	RunID            string   `parquet:"run_id,snappy"`
	Team             string   `parquet:"team,snappy"`
	PredictedRank    int32    `parquet:"predicted_rank,snappy"`
	RawPosition      float64  `parquet:"raw_position,snappy"`
	AdjustedPosition float64  `parquet:"adjusted_position,snappy"`
	RecentForm       float64  `parquet:"recent_form_score,snappy"`
	CILower          *float64 `parquet:"ci_lower,optional,snappy"`
	CIUpper          *float64 `parquet:"ci_upper,optional,snappy"`
	CIMean           *float64 `parquet:"ci_mean,optional,snappy"`
	StandardError    *float64 `parquet:"standard_error,optional,snappy"`
	ActualRank       *int32   `parquet:"actual_rank,optional,snappy"`
}

// ComparisonRow is one team of a prediction report. Actual and interval
// columns are null when unknown.
type ComparisonRow struct {
	PredictionYear   int32    `parquet:"prediction_year,snappy"`
	Team             string   `parquet:"team,snappy"`
	PredictedRank    int32    `parquet:"predicted_rank,snappy"`
	ActualRank       *int32   `parquet:"actual_rank,optional,snappy"`
	Difference       *int32   `parquet:"difference,optional,snappy"`
	RawPosition      float64  `parquet:"raw_position,snappy"`
	AdjustedPosition float64  `parquet:"adjusted_position,snappy"`
	RecentForm       float64  `parquet:"recent_form_score,snappy"`
	CILower          *float64 `parquet:"ci_lower,optional,snappy"`
	CIUpper          *float64 `parquet:"ci_upper,optional,snappy"`
	CIMean           *float64 `parquet:"ci_mean,optional,snappy"`
	StandardError    *float64 `parquet:"standard_error,optional,snappy"`
}

// ValidationFold is one scored fold of a temporal cross-validation.
type ValidationFold struct {
	TrainEnd    int32    `parquet:"train_end,snappy"`
	TestStart   int32    `parquet:"test_start,snappy"`
	TestEnd     int32    `parquet:"test_end,snappy"`
	TrainRows   int32    `parquet:"train_rows,snappy"`
	TestRows    int32    `parquet:"test_rows,snappy"`
	Predictions int32    `parquet:"predictions,snappy"`
	Score       *float64 `parquet:"score,optional,snappy"`
}

// WriteRows writes records to w using the schema inferred from T's struct tags.
func WriteRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return writer.Close()
}

// WriteFile creates outputPath and writes records to it.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WritePredictionRunsParquet writes stored runs to a Parquet file.
func WritePredictionRunsParquet(data []PredictionRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteTeamPredictionsParquet writes stored team predictions to a Parquet file.
func WriteTeamPredictionsParquet(data []TeamPrediction, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertPredictionRunRecords converts schema.PredictionRunRecord to PredictionRun for Parquet export.
func ConvertPredictionRunRecords(records []schema.PredictionRunRecord) []PredictionRun {
	result := make([]PredictionRun, len(records))
	for i, record := range records {
		result[i] = PredictionRun{
			RunID:           record.RunID,
			PredictionYear:  int32(record.PredictionYear),
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			RunDurationMs:   record.RunDurationMs,
			TotalTeams:      int32(record.TotalTeams),
			FailedTeams:     int32(record.FailedTeams),
			Bootstrap:       int32(record.Bootstrap),
			ConfidenceLevel: record.ConfidenceLevel,
			RSquared:        record.RSquared,
			ConfigParams:    record.ConfigParams,
		}
	}
	return result
}

// ConvertTeamPredictionRecords converts schema.TeamPredictionRecord to TeamPrediction for Parquet export.
func ConvertTeamPredictionRecords(records []schema.TeamPredictionRecord) []TeamPrediction {
	result := make([]TeamPrediction, len(records))
	for i, record := range records {
		result[i] = TeamPrediction{
			RunID:            record.RunID,
			Team:             record.Team,
			PredictedRank:    int32(record.PredictedRank),
			RawPosition:      record.RawPosition,
			AdjustedPosition: record.AdjustedPosition,
			RecentForm:       record.RecentForm,
			CILower:          record.CILower,
			CIUpper:          record.CIUpper,
			CIMean:           record.CIMean,
			StandardError:    record.StandardError,
		}
		if record.ActualRank != nil {
			rank := int32(*record.ActualRank)
			result[i].ActualRank = &rank
		}
	}
	return result
}

// ConvertComparisonRows flattens a report's comparison rows for Parquet output.
func ConvertComparisonRows(year int, rows []schema.ComparisonRow) []ComparisonRow {
	result := make([]ComparisonRow, len(rows))
	for i, row := range rows {
		out := ComparisonRow{
			PredictionYear:   int32(year),
			Team:             row.Team,
			PredictedRank:    int32(row.PredictedRank),
			RawPosition:      row.RawPosition,
			AdjustedPosition: row.AdjustedPosition,
			RecentForm:       row.RecentForm,
		}
		if row.HasActual {
			actual, diff := int32(row.ActualRank), int32(row.Difference)
			out.ActualRank, out.Difference = &actual, &diff
		}
		if row.HasInterval {
			lower, upper, mean, se := row.CILower, row.CIUpper, row.CIMean, row.StandardError
			out.CILower, out.CIUpper, out.CIMean, out.StandardError = &lower, &upper, &mean, &se
		}
		result[i] = out
	}
	return result
}

// ConvertValidationFolds converts scored folds for Parquet output.
func ConvertValidationFolds(folds []schema.ValidationFold) []ValidationFold {
	result := make([]ValidationFold, len(folds))
	for i, f := range folds {
		result[i] = ValidationFold{
			TrainEnd:    int32(f.TrainEnd),
			TestStart:   int32(f.TestStart),
			TestEnd:     int32(f.TestEnd),
			TrainRows:   int32(f.TrainRows),
			TestRows:    int32(f.TestRows),
			Predictions: int32(f.Predictions),
			Score:       f.Score,
		}
	}
	return result
}
