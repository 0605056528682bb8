package core

import (
	"cmp"
	"math"
	"slices"

	"github.com/huangsam/leaguerank/core/algo"
	"github.com/huangsam/leaguerank/schema"
)

// Summary thresholds.
const (
	summaryTopN       = 3
	significantFormAt = 0.5 // |form| above this is called out
)

// Summarize computes the retrospective accuracy, interval coverage and form
// call-outs for a report whose ranking, predictions and intervals are filled in.
func Summarize(report schema.PredictionReport) schema.ReportSummary {
	summary := schema.ReportSummary{
		Narrowest:     []schema.IntervalWidth{},
		Widest:        []schema.IntervalWidth{},
		BiggestErrors: []schema.PredictionError{},
		FormDetails:   []schema.FormDetail{},
	}

	outcomes := report.Ranking.Outcomes
	summary.Matched = len(outcomes)

	predicted := make([]float64, len(outcomes))
	actual := make([]float64, len(outcomes))
	for i, o := range outcomes {
		predicted[i] = float64(o.PredictedRank)
		actual[i] = float64(o.ActualRank)
	}
	if r2, ok := algo.RSquared(actual, predicted); ok {
		summary.RSquared = r2
	}

	var widths []schema.IntervalWidth
	var withInterval int
	for _, o := range outcomes {
		ci, ok := report.Intervals[o.Team]
		if !ok {
			continue
		}
		withInterval++
		widths = append(widths, schema.IntervalWidth{Team: o.Team, Width: ci.Width()})
		if ci.Contains(float64(o.ActualRank)) {
			summary.WithinInterval++
		}
	}
	if withInterval > 0 {
		summary.CoveragePercent = float64(summary.WithinInterval) / float64(withInterval) * 100
		ws := make([]float64, len(widths))
		for i, w := range widths {
			ws[i] = w.Width
		}
		summary.AverageWidth = algo.Mean(ws)
	}

	byWidth := slices.Clone(widths)
	slices.SortStableFunc(byWidth, func(a, b schema.IntervalWidth) int { return cmp.Compare(a.Width, b.Width) })
	summary.Narrowest = append(summary.Narrowest, byWidth[:min(summaryTopN, len(byWidth))]...)
	slices.SortStableFunc(byWidth, func(a, b schema.IntervalWidth) int { return cmp.Compare(b.Width, a.Width) })
	summary.Widest = append(summary.Widest, byWidth[:min(summaryTopN, len(byWidth))]...)

	byError := slices.Clone(outcomes)
	slices.SortStableFunc(byError, func(a, b schema.RankedOutcome) int {
		return cmp.Compare(absInt(b.Difference), absInt(a.Difference))
	})
	for _, o := range byError[:min(summaryTopN, len(byError))] {
		ci, ok := report.Intervals[o.Team]
		summary.BiggestErrors = append(summary.BiggestErrors, schema.PredictionError{
			Team:           o.Team,
			Difference:     o.Difference,
			WithinInterval: ok && ci.Contains(float64(o.ActualRank)),
		})
	}

	for _, p := range report.Predictions {
		if math.Abs(p.RecentForm) <= significantFormAt {
			continue
		}
		summary.FormDetails = append(summary.FormDetails, schema.FormDetail{
			Team:       p.Team,
			FormScore:  p.RecentForm,
			Direction:  schema.GetFormDirection(p.RecentForm),
			Adjustment: p.Adjustment,
		})
	}
	return summary
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
