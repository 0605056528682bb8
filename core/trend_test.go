package core

import (
	"testing"

	"github.com/huangsam/leaguerank/schema"
	"github.com/stretchr/testify/assert"
)

func TestEstimateTrend(t *testing.T) {
	tests := []struct {
		name    string
		rows    schema.Seasons
		defined bool
		want    float64
	}{
		{
			name: "no rows",
		},
		{
			name: "single row in window",
			rows: schema.Seasons{trendRow(2021, 5, 60)},
		},
		{
			name: "rows outside the window are ignored",
			rows: schema.Seasons{trendRow(2015, 1, 90), trendRow(2016, 20, 20), trendRow(2021, 5, 60)},
		},
		{
			name:    "improving team",
			rows:    schema.Seasons{trendRow(2019, 10, 50), trendRow(2020, 8, 60), trendRow(2021, 6, 70)},
			defined: true,
			want:    0.6*(10.0/5) + 0.4*(2.0/2),
		},
		{
			name:    "declining team",
			rows:    schema.Seasons{trendRow(2020, 4, 70), trendRow(2021, 8, 55)},
			defined: true,
			want:    0.6*(-15.0/5) + 0.4*(-4.0/2),
		},
		{
			name:    "flat team",
			rows:    schema.Seasons{trendRow(2019, 7, 55), trendRow(2020, 7, 55), trendRow(2021, 7, 55)},
			defined: true,
			want:    0,
		},
		{
			name:    "steep rise is clamped",
			rows:    schema.Seasons{trendRow(2020, 18, 20), trendRow(2021, 1, 95)},
			defined: true,
			want:    FormLimit,
		},
		{
			name:    "steep fall is clamped",
			rows:    schema.Seasons{trendRow(2020, 1, 95), trendRow(2021, 18, 20)},
			defined: true,
			want:    -FormLimit,
		},
		{
			name: "duplicate year is singular",
			rows: schema.Seasons{trendRow(2021, 3, 70), trendRow(2021, 9, 50)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := EstimateTrend(tt.rows, 2022)
			assert.Equal(t, tt.defined, trend.Defined)
			assert.InDelta(t, tt.want, trend.Score(), 1e-9)
			assert.LessOrEqual(t, trend.Score(), FormLimit)
			assert.GreaterOrEqual(t, trend.Score(), -FormLimit)
		})
	}
}

func TestEstimateTrendWindow(t *testing.T) {
	rows := schema.Seasons{trendRow(2018, 10, 40), trendRow(2019, 9, 50), trendRow(2020, 8, 60), trendRow(2021, 7, 70)}
	trend := EstimateTrend(rows, 2022)
	assert.Equal(t, 3, trend.Observations)
	assert.InDelta(t, 10, trend.PointsSlope, 1e-9)
	assert.InDelta(t, 1, trend.PositionSlope, 1e-9)

	// The reference year itself is outside the window
	trend = EstimateTrend(rows, 2020)
	assert.Equal(t, 2, trend.Observations)
}
