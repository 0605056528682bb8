package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSeasons() Seasons {
	return Seasons{
		{Team: "Arsenal", SeasonEndYear: 2021, Position: 8, Points: 61},
		{Team: "Chelsea", SeasonEndYear: 2021, Position: 4, Points: 67},
		{Team: "Arsenal", SeasonEndYear: 2022, Position: 5, Points: 69},
		{Team: "Brentford", SeasonEndYear: 2022, Position: 13, Points: 46},
		{Team: "Arsenal", SeasonEndYear: 2023, Position: 2, Points: 84},
	}
}

func TestSeasonsFilters(t *testing.T) {
	s := sampleSeasons()

	assert.Len(t, s.Before(2022), 2, "Before should be strict")
	assert.Len(t, s.Through(2022), 4, "Through should include the boundary year")
	assert.Len(t, s.Between(2022, 2023), 3)
	assert.Len(t, s.Season(2023), 1)
	assert.Len(t, s.ForTeam("Arsenal"), 3)
	assert.Empty(t, s.ForTeam("Luton"))
	assert.True(t, s.HasTeam("Brentford"))
	assert.False(t, s.HasTeam("brentford"), "team matching is exact")
	assert.Len(t, s, 5, "filters must not mutate the receiver")
}

func TestSeasonsTeamsAndSpan(t *testing.T) {
	s := sampleSeasons()
	assert.Equal(t, []string{"Arsenal", "Chelsea", "Brentford"}, s.Teams())

	first, last := s.Span()
	assert.Equal(t, 2021, first)
	assert.Equal(t, 2023, last)

	first, last = Seasons{}.Span()
	assert.Zero(t, first)
	assert.Zero(t, last)
}

func TestSeasonRecordFeatures(t *testing.T) {
	r := SeasonRecord{Points: 84, GoalsFor: 88, GoalsAgainst: 43, GoalDifference: 45, Won: 26, Drawn: 6, Lost: 6}
	assert.Equal(t, []float64{84, 88, 43, 45, 26, 6, 6}, r.Features())
	assert.Zero(t, r.Stat(StatForm), "form is never read from a raw record")
}

func TestNormalizeTeam(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Arsenal", "Arsenal"},
		{"  Manchester   United ", "Manchester United"},
		{"\tSpurs\n", "Spurs"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTeam(tt.name))
		})
	}
}

func TestTeamsEqual(t *testing.T) {
	a := []string{"Arsenal", "Chelsea", "Everton"}
	b := []string{"Everton", "Arsenal", "Chelsea"}
	assert.True(t, TeamsEqual(a, b), "TeamsEqual should be order-insensitive")
	assert.False(t, TeamsEqual(a, []string{"Arsenal", "Chelsea"}))
	assert.Equal(t, []string{"Arsenal", "Chelsea", "Everton"}, a, "inputs must stay unsorted")
}

func TestGetFormDirection(t *testing.T) {
	assert.Equal(t, FormImproving, GetFormDirection(1.2))
	assert.Equal(t, FormDeclining, GetFormDirection(-0.7))
	assert.Equal(t, FormStable, GetFormDirection(0))
}

func TestFormTrendScore(t *testing.T) {
	assert.Zero(t, FormTrend{Defined: false, Value: 2}.Score(), "undefined trends score 0")
	assert.Equal(t, 1.5, FormTrend{Defined: true, Value: 1.5}.Score())
}

func TestConfidenceIntervalHelpers(t *testing.T) {
	ci := ConfidenceInterval{LowerBound: 3, UpperBound: 6}
	assert.Equal(t, 3.0, ci.Width())
	assert.True(t, ci.Contains(3))
	assert.True(t, ci.Contains(6))
	assert.False(t, ci.Contains(6.01))
}

func TestFoldDefinitionString(t *testing.T) {
	assert.Equal(t, "2019:2020-2023", FoldDefinition{TrainEnd: 2019, TestStart: 2020, TestEnd: 2023}.String())
}

func TestBackendMappings(t *testing.T) {
	assert.Equal(t, "sqlite", SQLiteBackend.DriverName())
	assert.Equal(t, "mysql", MySQLBackend.DriverName())
	assert.Equal(t, "pgx", PostgreSQLBackend.DriverName())
	assert.Empty(t, RedisBackend.DriverName())
	assert.Empty(t, NoneBackend.DriverName())

	assert.Equal(t, PostgreSQLBackend, PostgreSQLData.DatabaseFor())
	assert.Equal(t, NoneBackend, CSVData.DatabaseFor())
}
