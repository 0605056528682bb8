package schema

import (
	"sort"
	"strings"
)

// Seasons is an ordered slice of season records with filtering helpers.
// Every helper returns a fresh slice and leaves the receiver untouched.
type Seasons []SeasonRecord

func (s Seasons) filter(keep func(SeasonRecord) bool) Seasons {
	out := make(Seasons, 0, len(s))
	for _, r := range s {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Before returns records whose season ended strictly before year.
func (s Seasons) Before(year int) Seasons {
	return s.filter(func(r SeasonRecord) bool { return r.SeasonEndYear < year })
}

// Through returns records whose season ended at or before year.
func (s Seasons) Through(year int) Seasons {
	return s.filter(func(r SeasonRecord) bool { return r.SeasonEndYear <= year })
}

// Between returns records with start <= season_end_year <= end.
func (s Seasons) Between(start, end int) Seasons {
	return s.filter(func(r SeasonRecord) bool {
		return r.SeasonEndYear >= start && r.SeasonEndYear <= end
	})
}

// Season returns the records of a single season.
func (s Seasons) Season(year int) Seasons {
	return s.Between(year, year)
}

// ForTeam returns the records of one team.
func (s Seasons) ForTeam(team string) Seasons {
	return s.filter(func(r SeasonRecord) bool { return r.Team == team })
}

// HasTeam reports whether the team appears at least once.
func (s Seasons) HasTeam(team string) bool {
	for _, r := range s {
		if r.Team == team {
			return true
		}
	}
	return false
}

// Teams returns the distinct team names in first-appearance order.
func (s Seasons) Teams() []string {
	seen := make(map[string]struct{}, len(s))
	var teams []string
	for _, r := range s {
		if _, ok := seen[r.Team]; ok {
			continue
		}
		seen[r.Team] = struct{}{}
		teams = append(teams, r.Team)
	}
	return teams
}

// Span returns the earliest and latest season end years. Both are 0 when empty.
func (s Seasons) Span() (first, last int) {
	for i, r := range s {
		if i == 0 || r.SeasonEndYear < first {
			first = r.SeasonEndYear
		}
		if i == 0 || r.SeasonEndYear > last {
			last = r.SeasonEndYear
		}
	}
	return first, last
}

// NormalizeTeam trims a team name and collapses inner whitespace.
func NormalizeTeam(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// TeamsEqual compares two team lists regardless of order.
func TeamsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	aSorted := append([]string(nil), a...)
	sort.Strings(aSorted)
	bSorted := append([]string(nil), b...)
	sort.Strings(bSorted)

	for i := range aSorted {
		if aSorted[i] != bSorted[i] {
			return false
		}
	}
	return true
}

// GetAccuracyLabel buckets the absolute rank difference.
func GetAccuracyLabel(difference int) AccuracyLabel {
	d := difference
	if d < 0 {
		d = -d
	}
	switch {
	case d <= 1:
		return AccuracyClose
	case d <= 2:
		return AccuracyNear
	default:
		return AccuracyMiss
	}
}

// GetFormDirection maps a form score to its direction.
func GetFormDirection(score float64) FormDirection {
	switch {
	case score > 0:
		return FormImproving
	case score < 0:
		return FormDeclining
	default:
		return FormStable
	}
}
