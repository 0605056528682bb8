package core

import (
	"github.com/huangsam/leaguerank/core/algo"
	"github.com/huangsam/leaguerank/schema"
)

// AssembleRankings sorts predictions by adjusted position and assigns ranks 1..K.
// Equal positions keep their input order. Teams with an actual outcome are merged
// into Outcomes with difference = predicted - actual; the rest go to Unmatched.
// When an outcome team is listed twice the first entry wins.
func AssembleRankings(predictions []schema.PointPrediction, outcomes []schema.ActualOutcome) schema.RankingResult {
	positions := make([]float64, len(predictions))
	for i, p := range predictions {
		positions[i] = p.AdjustedPosition
	}

	actual := make(map[string]int, len(outcomes))
	for _, o := range outcomes {
		if _, seen := actual[o.Team]; !seen {
			actual[o.Team] = o.Position
		}
	}

	result := schema.RankingResult{
		Ranked:    make([]schema.RankedPrediction, 0, len(predictions)),
		Outcomes:  []schema.RankedOutcome{},
		Unmatched: []schema.RankedPrediction{},
	}
	for rank, idx := range algo.RankAscending(positions) {
		ranked := schema.RankedPrediction{
			Team:             predictions[idx].Team,
			PredictedRank:    rank + 1,
			AdjustedPosition: predictions[idx].AdjustedPosition,
		}
		result.Ranked = append(result.Ranked, ranked)

		pos, ok := actual[ranked.Team]
		if !ok {
			result.Unmatched = append(result.Unmatched, ranked)
			continue
		}
		result.Outcomes = append(result.Outcomes, schema.RankedOutcome{
			RankedPrediction: ranked,
			ActualRank:       pos,
			Difference:       ranked.PredictedRank - pos,
		})
	}
	return result
}
