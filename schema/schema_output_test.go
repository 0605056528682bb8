package schema_test

import (
	"testing"

	"github.com/huangsam/leaguerank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccuracyLabel(t *testing.T) {
	tests := []struct {
		name       string
		difference int
		expected   schema.AccuracyLabel
	}{
		{"Exact", 0, schema.AccuracyClose},
		{"One Above", -1, schema.AccuracyClose},
		{"One Below", 1, schema.AccuracyClose},
		{"Two Below", 2, schema.AccuracyNear},
		{"Two Above", -2, schema.AccuracyNear},
		{"Three", 3, schema.AccuracyMiss},
		{"Far Above", -9, schema.AccuracyMiss},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetAccuracyLabel(tt.difference))
		})
	}
}

func TestComparisonRows(t *testing.T) {
	report := schema.PredictionReport{
		Predictions: []schema.PointPrediction{
			{Team: "Arsenal", RawPosition: 2.4, AdjustedPosition: 2.3, RecentForm: 2},
			{Team: "Luton", RawPosition: 18.1, AdjustedPosition: 18.2, RecentForm: -2},
		},
		Intervals: map[string]schema.ConfidenceInterval{
			"Arsenal": {Team: "Arsenal", PointEstimate: 2.5, LowerBound: 1.5, UpperBound: 3.5, StandardError: 0.4},
		},
		Ranking: schema.RankingResult{
			Ranked: []schema.RankedPrediction{
				{Team: "Arsenal", PredictedRank: 1, AdjustedPosition: 2.3},
				{Team: "Luton", PredictedRank: 2, AdjustedPosition: 18.2},
			},
			Outcomes: []schema.RankedOutcome{
				{RankedPrediction: schema.RankedPrediction{Team: "Arsenal", PredictedRank: 1, AdjustedPosition: 2.3}, ActualRank: 2, Difference: -1},
			},
			Unmatched: []schema.RankedPrediction{{Team: "Luton", PredictedRank: 2, AdjustedPosition: 18.2}},
		},
	}

	rows := report.ComparisonRows()
	require.Len(t, rows, 2)

	arsenal := rows[0]
	assert.Equal(t, "Arsenal", arsenal.Team)
	assert.True(t, arsenal.HasActual)
	assert.Equal(t, 2, arsenal.ActualRank)
	assert.Equal(t, -1, arsenal.Difference)
	assert.Equal(t, schema.AccuracyClose, arsenal.Label)
	assert.True(t, arsenal.HasInterval)
	assert.InDelta(t, 2.0, arsenal.IntervalWidth, 1e-9)
	assert.True(t, arsenal.WithinCI, "actual rank 2 lies in [1.5, 3.5]")
	assert.InDelta(t, 2.4, arsenal.RawPosition, 1e-9)

	luton := rows[1]
	assert.False(t, luton.HasActual)
	assert.False(t, luton.HasInterval)
	assert.False(t, luton.WithinCI)
	assert.Empty(t, luton.Label)
	assert.InDelta(t, -2.0, luton.RecentForm, 1e-9)
}
