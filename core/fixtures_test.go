package core

import (
	"github.com/huangsam/leaguerank/schema"
)

// fixtureTeams finish in this order every season of leagueFixture.
var fixtureTeams = []string{"Arsenal", "Chelsea", "Everton", "Fulham", "Leeds United", "Tottenham"}

// leagueFixture builds a league where every team repeats the same finish each
// season and every statistic moves monotonically with position.
func leagueFixture(first, last int) schema.Seasons {
	var rows schema.Seasons
	for year := first; year <= last; year++ {
		for i, team := range fixtureTeams {
			rows = append(rows, seasonRow(team, year, i+1))
		}
	}
	return rows
}

// seasonRow derives a plausible 38-game table row from a finishing position.
func seasonRow(team string, year, position int) schema.SeasonRecord {
	won := float64(26 - 3*(position-1))
	drawn := 6.0
	lost := 38 - won - drawn
	gf := float64(84 - 8*(position-1))
	ga := float64(28 + 6*(position-1))
	return schema.SeasonRecord{
		Team:           team,
		SeasonEndYear:  year,
		Position:       position,
		Played:         38,
		Won:            won,
		Drawn:          drawn,
		Lost:           lost,
		GoalsFor:       gf,
		GoalsAgainst:   ga,
		GoalDifference: gf - ga,
		Points:         3*won + drawn,
	}
}

// trendRow is a row that only matters for the trend fit.
func trendRow(year, position int, points float64) schema.SeasonRecord {
	return schema.SeasonRecord{Team: "Trend FC", SeasonEndYear: year, Position: position, Points: points}
}

// fastModel keeps test forests small.
func fastModel() ModelOptions {
	opts := DefaultModelOptions()
	opts.Trees = 15
	return opts
}
