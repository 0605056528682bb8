package core

import (
	"slices"

	"github.com/huangsam/leaguerank/core/algo"
	"github.com/huangsam/leaguerank/schema"
)

// Trend fit constants.
const (
	RecentSeasons  = 3   // look-back window relative to the reference year
	PointsScale    = 5.0 // points slope divisor
	PositionScale  = 2.0 // position slope divisor
	PointsWeight   = 0.6
	PositionWeight = 0.4
	FormLimit      = 3.0 // |form| never exceeds this
)

// EstimateTrend fits points and position against season year over the seasons
// ending in [referenceYear-RecentSeasons, referenceYear). The trend is undefined
// with fewer than two such rows or when every row shares one year.
func EstimateTrend(rows schema.Seasons, referenceYear int) schema.FormTrend {
	recent := rows.Between(referenceYear-RecentSeasons, referenceYear-1)
	trend := schema.FormTrend{Observations: len(recent)}
	if len(recent) < 2 {
		return trend
	}

	slices.SortStableFunc(recent, func(a, b schema.SeasonRecord) int {
		return a.SeasonEndYear - b.SeasonEndYear
	})

	first := recent[0].SeasonEndYear
	years := make([]float64, len(recent))
	points := make([]float64, len(recent))
	positions := make([]float64, len(recent))
	for i, r := range recent {
		years[i] = float64(r.SeasonEndYear - first)
		points[i] = r.Points
		positions[i] = float64(r.Position)
	}

	pointsSlope, ok := algo.Slope(years, points)
	if !ok {
		return trend
	}
	positionSlope, ok := algo.Slope(years, positions)
	if !ok {
		return trend
	}

	// A falling position number means the team is climbing the table.
	positionSlope = -positionSlope

	form := PointsWeight*(pointsSlope/PointsScale) + PositionWeight*(positionSlope/PositionScale)
	trend.Defined = true
	trend.PointsSlope = pointsSlope
	trend.PositionSlope = positionSlope
	trend.Value = algo.Clamp(form, -FormLimit, FormLimit)
	return trend
}
