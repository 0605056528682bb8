package core

import (
	"fmt"
	"math"

	"github.com/huangsam/leaguerank/core/algo"
	"github.com/huangsam/leaguerank/schema"
)

// DecayConstant controls how fast older seasons lose weight.
const DecayConstant = 1.05

// RecencyWeight returns exp(-(referenceYear-seasonYear)/DecayConstant).
func RecencyWeight(referenceYear, seasonYear int) float64 {
	return math.Exp(-float64(referenceYear-seasonYear) / DecayConstant)
}

// AggregateFeatures builds a team's recency-weighted feature vector for referenceYear.
// Rows from referenceYear onward are ignored. The team is taken from the rows, which
// must all belong to one team. Repeated rows count once per occurrence.
func AggregateFeatures(rows schema.Seasons, referenceYear int) (schema.WeightedFeatureVector, error) {
	history := rows.Before(referenceYear)
	if len(history) == 0 {
		team := ""
		if len(rows) > 0 {
			team = rows[0].Team
		}
		return schema.WeightedFeatureVector{}, fmt.Errorf("%w: team %q has no seasons before %d", ErrInsufficientHistory, team, referenceYear)
	}

	weights := make([]float64, len(history))
	for i, r := range history {
		weights[i] = RecencyWeight(referenceYear, r.SeasonEndYear)
	}

	stats := make(map[schema.StatKey]float64, len(schema.BaseStats))
	values := make([]float64, len(history))
	for _, key := range schema.BaseStats {
		for i, r := range history {
			values[i] = r.Stat(key)
		}
		mean, ok := algo.WeightedMean(values, weights)
		if !ok {
			return schema.WeightedFeatureVector{}, fmt.Errorf("%w: team %q has degenerate weights", ErrInsufficientHistory, history[0].Team)
		}
		stats[key] = mean
	}

	trend := EstimateTrend(history, referenceYear)
	stats[schema.StatForm] = trend.Score()

	return schema.WeightedFeatureVector{
		Team:          history[0].Team,
		ReferenceYear: referenceYear,
		Seasons:       len(history),
		Stats:         stats,
		RecentForm:    trend.Score(),
		Trend:         trend,
	}, nil
}
