package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/huangsam/leaguerank/schema"
)

// writeHTML renders a markdown document as a complete HTML page.
func writeHTML(w io.Writer, title, md string) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	_, err := w.Write(markdown.ToHTML([]byte(md), p, renderer))
	return err
}

// mdTable appends a pipe table to sb.
func mdTable(sb *strings.Builder, header []string, rows [][]string) {
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range rows {
		escaped := make([]string, len(row))
		for i, cell := range row {
			escaped[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		sb.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

// predictionMarkdown builds the report document used by the html output mode.
func predictionMarkdown(report schema.PredictionReport, fmtFloat func(float64) string) string {
	var sb strings.Builder
	summary := report.Summary
	level := report.ConfidenceLevel * 100
	hasIntervals := len(report.Intervals) > 0

	fmt.Fprintf(&sb, "# Predicted %d table\n\n", report.PredictionYear)
	fmt.Fprintf(&sb, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&sb, "- Training rows: %d\n", report.TrainingRows)
	if summary.Matched >= 2 {
		fmt.Fprintf(&sb, "- R²: %.3f over %d teams\n", summary.RSquared, summary.Matched)
	}
	if report.Validation != nil {
		fmt.Fprintf(&sb, "- Cross-validation score: %.3f\n", report.Validation.MeanScore)
	}
	if hasIntervals {
		fmt.Fprintf(&sb, "- Confidence level: %.0f%% (%d bootstrap samples)\n", level, report.Bootstrap)
	}
	sb.WriteString("\n## Predictions\n\n")

	header := []string{"Rank", "Team", "Actual", "Diff", "Label", "Adjusted", "Form"}
	if hasIntervals {
		header = append(header, "Lower", "Upper", "Width")
	}
	var rows [][]string
	for _, r := range report.ComparisonRows() {
		row := []string{
			fmt.Sprint(r.PredictedRank),
			r.Team,
			optionalInt(r.ActualRank, r.HasActual),
			"",
			string(r.Label),
			fmtFloat(r.AdjustedPosition),
			fmt.Sprintf("%+.2f", r.RecentForm),
		}
		if r.HasActual {
			row[3] = signedInt(r.Difference)
		}
		if hasIntervals {
			row = append(row,
				optionalFloat(r.CILower, r.HasInterval, fmtFloat),
				optionalFloat(r.CIUpper, r.HasInterval, fmtFloat),
				optionalFloat(r.IntervalWidth, r.HasInterval, fmtFloat),
			)
		}
		rows = append(rows, row)
	}
	mdTable(&sb, header, rows)

	if len(summary.FormDetails) > 0 {
		sb.WriteString("## Recent form\n\n")
		var formRows [][]string
		for _, d := range summary.FormDetails {
			formRows = append(formRows, []string{d.Team, fmt.Sprintf("%+.2f", d.FormScore), string(d.Direction), fmt.Sprintf("%+.2f", d.Adjustment)})
		}
		mdTable(&sb, []string{"Team", "Form", "Direction", "Adjustment"}, formRows)
	}

	if hasIntervals && summary.Matched > 0 {
		sb.WriteString("## Interval coverage\n\n")
		fmt.Fprintf(&sb, "%d/%d actual positions within the %.0f%% interval (%.1f%%). Average width %.1f positions.\n\n",
			summary.WithinInterval, summary.Matched, level, summary.CoveragePercent, summary.AverageWidth)
	}

	if len(summary.BiggestErrors) > 0 {
		sb.WriteString("## Biggest errors\n\n")
		for _, e := range summary.BiggestErrors {
			fmt.Fprintf(&sb, "- %s: off by %d", e.Team, absInt(e.Difference))
			if hasIntervals && e.WithinInterval {
				sb.WriteString(" (within interval)")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if report.Validation != nil {
		sb.WriteString("## Cross-validation\n\n")
		writeFoldTable(&sb, *report.Validation)
	}

	if len(report.Failures) > 0 {
		sb.WriteString("## Skipped teams\n\n")
		var failRows [][]string
		for _, f := range report.Failures {
			failRows = append(failRows, []string{f.Team, f.Stage, f.Reason})
		}
		mdTable(&sb, []string{"Team", "Stage", "Reason"}, failRows)
	}
	return sb.String()
}

// validationMarkdown builds the cross-validation document.
func validationMarkdown(report schema.ValidationReport) string {
	var sb strings.Builder
	sb.WriteString("# Temporal cross-validation\n\n")
	writeFoldTable(&sb, report)
	return sb.String()
}

func writeFoldTable(sb *strings.Builder, report schema.ValidationReport) {
	var rows [][]string
	for _, f := range report.Folds {
		rows = append(rows, []string{f.String(), fmt.Sprint(f.TrainRows), fmt.Sprint(f.TestRows), fmt.Sprint(f.Predictions), foldScore(f.Score)})
	}
	mdTable(sb, []string{"Fold", "Train rows", "Test rows", "Predictions", "R²"}, rows)
	fmt.Fprintf(sb, "Mean score **%.3f** over %d scored folds.\n", report.MeanScore, report.ScoredFolds)
}
