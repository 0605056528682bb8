package schema

// ComparisonRow is one team's line in the final prediction table.
type ComparisonRow struct {
	Team             string        `json:"team"`
	PredictedRank    int           `json:"predicted_rank"`
	HasActual        bool          `json:"has_actual"`
	ActualRank       int           `json:"actual_rank"`
	Difference       int           `json:"difference"`
	Label            AccuracyLabel `json:"label,omitempty"`
	RawPosition      float64       `json:"raw_position"`
	AdjustedPosition float64       `json:"adjusted_position"`
	RecentForm       float64       `json:"recent_form_score"`
	HasInterval      bool          `json:"has_interval"`
	CILower          float64       `json:"ci_lower"`
	CIUpper          float64       `json:"ci_upper"`
	CIMean           float64       `json:"ci_mean"`
	StandardError    float64       `json:"standard_error"`
	IntervalWidth    float64       `json:"interval_width"`
	WithinCI         bool          `json:"within_ci"`
}

// ComparisonRows joins the ranking, point predictions, intervals and actual
// outcomes into one row per ranked team, in rank order.
func (r PredictionReport) ComparisonRows() []ComparisonRow {
	points := make(map[string]PointPrediction, len(r.Predictions))
	for _, p := range r.Predictions {
		points[p.Team] = p
	}
	actuals := make(map[string]RankedOutcome, len(r.Ranking.Outcomes))
	for _, o := range r.Ranking.Outcomes {
		actuals[o.Team] = o
	}

	rows := make([]ComparisonRow, 0, len(r.Ranking.Ranked))
	for _, ranked := range r.Ranking.Ranked {
		row := ComparisonRow{
			Team:             ranked.Team,
			PredictedRank:    ranked.PredictedRank,
			AdjustedPosition: ranked.AdjustedPosition,
		}
		if p, ok := points[ranked.Team]; ok {
			row.RawPosition = p.RawPosition
			row.RecentForm = p.RecentForm
		}
		if o, ok := actuals[ranked.Team]; ok {
			row.HasActual = true
			row.ActualRank = o.ActualRank
			row.Difference = o.Difference
			row.Label = GetAccuracyLabel(o.Difference)
		}
		if ci, ok := r.Intervals[ranked.Team]; ok {
			row.HasInterval = true
			row.CILower = ci.LowerBound
			row.CIUpper = ci.UpperBound
			row.CIMean = ci.PointEstimate
			row.StandardError = ci.StandardError
			row.IntervalWidth = ci.Width()
			row.WithinCI = row.HasActual && ci.Contains(float64(row.ActualRank))
		}
		rows = append(rows, row)
	}
	return rows
}
