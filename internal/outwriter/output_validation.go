package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/parquet"
	"github.com/huangsam/leaguerank/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintValidationReport outputs a cross-validation report in the configured format.
func PrintValidationReport(report schema.ValidationReport, cfg *contract.Config, duration time.Duration) error {
	_, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeValidationCSV(w, report, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertValidationFolds(report.Folds))
		}, "Wrote Parquet")
	case schema.XLSXOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeValidationWorkbook(w, report)
		}, "Wrote workbook")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHTML(w, "Temporal cross-validation", validationMarkdown(report))
		}, "Wrote HTML")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeValidationText(report, cfg, intFmt, duration, w)
		}, "Wrote table")
	}
}

// foldScore renders a fold score, or "n/a" when the fold was skipped.
func foldScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", *score)
}

func writeValidationCSV(w io.Writer, report schema.ValidationReport, intFmt string) error {
	header := []string{"train_end", "test_start", "test_end", "train_rows", "test_rows", "predictions", "score"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range report.Folds {
			score := ""
			if f.Score != nil {
				score = strconv.FormatFloat(*f.Score, 'f', 6, 64)
			}
			rec := []string{
				strconv.Itoa(f.TrainEnd),
				strconv.Itoa(f.TestStart),
				strconv.Itoa(f.TestEnd),
				fmt.Sprintf(intFmt, f.TrainRows),
				fmt.Sprintf(intFmt, f.TestRows),
				fmt.Sprintf(intFmt, f.Predictions),
				score,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeValidationText(report schema.ValidationReport, cfg *contract.Config, intFmt string, duration time.Duration, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Fold", "Train Rows", "Test Rows", "Predictions", "R²"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, f := range report.Folds {
		data = append(data, []string{
			f.String(),
			fmt.Sprintf(intFmt, f.TrainRows),
			fmt.Sprintf(intFmt, f.TestRows),
			fmt.Sprintf(intFmt, f.Predictions),
			foldScore(f.Score),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Cross-validation score: %.3f (%d of %d folds scored)\n",
		report.MeanScore, report.ScoredFolds, len(report.Folds)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Validation completed in %v with %d workers\n", duration, cfg.Workers); err != nil {
		return err
	}
	return nil
}
