package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/parquet"
	"github.com/huangsam/leaguerank/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// predictionCSVHeader mirrors the columns of the comparison export.
var predictionCSVHeader = []string{
	"Team",
	"Predicted Position",
	"Actual Position",
	"Position Difference",
	"Adjusted Position",
	"Raw Position",
	"Recent Form",
	"Lower Bound",
	"Upper Bound",
	"Point Estimate",
	"Standard Error",
	"Interval Width",
	"Within CI",
}

// PrintPredictionReport outputs a prediction report, dispatching based on the output format configured.
func PrintPredictionReport(report schema.PredictionReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionCSV(w, report.ComparisonRows(), fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertComparisonRows(report.PredictionYear, report.ComparisonRows()))
		}, "Wrote Parquet")
	case schema.XLSXOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionWorkbook(w, report)
		}, "Wrote workbook")
	case schema.HTMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHTML(w, fmt.Sprintf("%d predictions", report.PredictionYear), predictionMarkdown(report, fmtFloat))
		}, "Wrote HTML")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePredictionText(report, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
}

// writePredictionCSV writes one line per ranked team.
func writePredictionCSV(w io.Writer, rows []schema.ComparisonRow, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, predictionCSVHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				r.Team,
				strconv.Itoa(r.PredictedRank),
				optionalInt(r.ActualRank, r.HasActual),
				optionalInt(r.Difference, r.HasActual),
				fmtFloat(r.AdjustedPosition),
				fmtFloat(r.RawPosition),
				fmtFloat(r.RecentForm),
				optionalFloat(r.CILower, r.HasInterval, fmtFloat),
				optionalFloat(r.CIUpper, r.HasInterval, fmtFloat),
				optionalFloat(r.CIMean, r.HasInterval, fmtFloat),
				optionalFloat(r.StandardError, r.HasInterval, fmtFloat),
				optionalFloat(r.IntervalWidth, r.HasInterval, fmtFloat),
				strconv.FormatBool(r.WithinCI),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writePredictionText generates and writes the human-readable report.
func writePredictionText(report schema.PredictionReport, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, w io.Writer) error {
	level := report.ConfidenceLevel * 100
	hasIntervals := len(report.Intervals) > 0
	summary := report.Summary

	if _, err := fmt.Fprintf(w, "🏆 Predicted %d table (run %s)\n", report.PredictionYear, report.RunID); err != nil {
		return err
	}
	if summary.Matched >= 2 {
		if _, err := fmt.Fprintf(w, "Model accuracy (R²): %.3f over %d teams\n", summary.RSquared, summary.Matched); err != nil {
			return err
		}
	}
	if report.Validation != nil {
		if _, err := fmt.Fprintf(w, "Cross-validation score: %.3f (%d folds scored)\n", report.Validation.MeanScore, report.Validation.ScoredFolds); err != nil {
			return err
		}
	}
	if hasIntervals {
		if _, err := fmt.Fprintf(w, "Confidence level: %.0f%% (%d bootstrap samples)\n", level, report.Bootstrap); err != nil {
			return err
		}
	}

	// 1. Main prediction table
	table := tablewriter.NewWriter(w)
	headers := []string{"Rank", "Team", "Actual", "Diff", "Label", "Adjusted", "Form"}
	if hasIntervals {
		headers = append(headers, fmt.Sprintf("%.0f%% CI", level), "Width")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range report.ComparisonRows() {
		row := []string{
			fmt.Sprintf(intFmt, r.PredictedRank),
			contract.TruncateName(r.Team, nameWidth),
			optionalInt(r.ActualRank, r.HasActual),
			"",
			"",
			fmtFloat(r.AdjustedPosition),
			fmt.Sprintf("%+.2f", r.RecentForm),
		}
		if r.HasActual {
			row[3] = signedInt(r.Difference)
			row[4] = contract.GetColorLabel(r.Label)
		}
		if hasIntervals {
			if r.HasInterval {
				row = append(row, fmt.Sprintf("[%s, %s]", fmtFloat(r.CILower), fmtFloat(r.CIUpper)), fmtFloat(r.IntervalWidth))
			} else {
				row = append(row, "", "")
			}
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// 2. Recent form movers
	if len(summary.FormDetails) > 0 {
		if _, err := fmt.Fprintln(w, "\nRecent form analysis:"); err != nil {
			return err
		}
		for _, d := range summary.FormDetails {
			if _, err := fmt.Fprintf(w, "• %-20s Form score: %+.2f (%s) Adj: %+.2f\n",
				d.Team, d.FormScore, contract.GetColorDirection(d.Direction), d.Adjustment); err != nil {
				return err
			}
		}
	}

	// 3. Interval analysis
	if hasIntervals {
		if err := writeIntervalAnalysis(w, summary, level); err != nil {
			return err
		}
	}

	// 4. Biggest misses
	if len(summary.BiggestErrors) > 0 {
		if _, err := fmt.Fprintln(w, "\nBiggest prediction errors:"); err != nil {
			return err
		}
		for _, e := range summary.BiggestErrors {
			note := ""
			if hasIntervals {
				note = " (✗ outside CI)"
				if e.WithinInterval {
					note = " (✓ within CI)"
				}
			}
			if _, err := fmt.Fprintf(w, "• %-20s Off by %d positions%s\n", e.Team, absInt(e.Difference), note); err != nil {
				return err
			}
		}
	}

	if len(report.Ranking.Unmatched) > 0 {
		names := make([]string, len(report.Ranking.Unmatched))
		for i, u := range report.Ranking.Unmatched {
			names[i] = u.Team
		}
		if _, err := fmt.Fprintf(w, "\nNo actual outcome for: %s\n", strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	if err := writeFailures(w, report.Failures); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nPredicted %d teams from %d training rows in %v with %d workers. Cache backend: %s\n",
		len(report.Predictions), report.TrainingRows, duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeIntervalAnalysis prints the narrowest and widest intervals and the coverage summary.
func writeIntervalAnalysis(w io.Writer, summary schema.ReportSummary, level float64) error {
	sections := []struct {
		title string
		items []schema.IntervalWidth
	}{
		{"Most confident predictions (narrow intervals):", summary.Narrowest},
		{"Least confident predictions (wide intervals):", summary.Widest},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", s.title); err != nil {
			return err
		}
		for _, item := range s.items {
			if _, err := fmt.Fprintf(w, "• %-20s Width: %4.1f positions\n", item.Team, item.Width); err != nil {
				return err
			}
		}
	}
	if summary.Matched == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\nInterval coverage: %d/%d actual positions within %.0f%% CI (%.1f%%), average width %.1f positions\n",
		summary.WithinInterval, summary.Matched, level, summary.CoveragePercent, summary.AverageWidth)
	return err
}

// writeFailures lists teams that were skipped, if any.
func writeFailures(w io.Writer, failures []schema.TeamFailure) error {
	if len(failures) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n⚠️  %d team(s) skipped:\n", len(failures)); err != nil {
		return err
	}
	for _, f := range failures {
		if _, err := fmt.Fprintf(w, "• %-20s [%s] %s\n", f.Team, f.Stage, f.Reason); err != nil {
			return err
		}
	}
	return nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
