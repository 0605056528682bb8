package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/leaguerank/schema"
)

// Dataset column names, matching the pl-tables layout.
const (
	colYear     = "season_end_year"
	colTeam     = "team"
	colPosition = "position"
	colPlayed   = "played"
	colWon      = "won"
	colDrawn    = "drawn"
	colLost     = "lost"
	colGF       = "gf"
	colGA       = "ga"
	colGD       = "gd"
	colPoints   = "points"
	colNotes    = "notes"
)

// Columns lists every dataset column in export order.
var Columns = []string{colYear, colTeam, colPosition, colPlayed, colWon, colDrawn, colLost, colGF, colGA, colGD, colPoints, colNotes}

var requiredColumns = []string{colYear, colTeam, colPosition, colWon, colDrawn, colLost, colGF, colGA, colGD, colPoints}

// Position bounds accepted from a league table.
const (
	minPosition = 1
	maxPosition = 20
)

// normalizeHeader lowercases a header and folds spaces and dashes into underscores.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// headerIndex maps normalized header names to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

// parseTable converts a header row plus data rows into season records.
// Line numbers in errors are 1-based and count the header.
func parseTable(rows [][]string) (schema.Seasons, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	idx := headerIndex(rows[0])
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("dataset is missing required column %q", col)
		}
	}

	records := make(schema.Seasons, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		rec, err := parseRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(row []string, idx map[string]int) (schema.SeasonRecord, error) {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var err error
	intField := func(col string) int {
		if err != nil {
			return 0
		}
		var v int
		if v, err = strconv.Atoi(field(col)); err != nil {
			err = fmt.Errorf("column %s: %w", col, err)
		}
		return v
	}
	floatField := func(col string) float64 {
		if err != nil {
			return 0
		}
		var v float64
		if v, err = strconv.ParseFloat(field(col), 64); err != nil {
			err = fmt.Errorf("column %s: %w", col, err)
		}
		return v
	}

	rec := schema.SeasonRecord{
		Team:           schema.NormalizeTeam(field(colTeam)),
		SeasonEndYear:  intField(colYear),
		Position:       intField(colPosition),
		Won:            floatField(colWon),
		Drawn:          floatField(colDrawn),
		Lost:           floatField(colLost),
		GoalsFor:       floatField(colGF),
		GoalsAgainst:   floatField(colGA),
		GoalDifference: floatField(colGD),
		Points:         floatField(colPoints),
		Notes:          field(colNotes),
	}
	if err != nil {
		return rec, err
	}
	if played := field(colPlayed); played != "" {
		if rec.Played, err = strconv.Atoi(played); err != nil {
			return rec, fmt.Errorf("column %s: %w", colPlayed, err)
		}
	}
	if rec.Team == "" {
		return rec, fmt.Errorf("column %s is empty", colTeam)
	}
	if rec.Position < minPosition || rec.Position > maxPosition {
		return rec, fmt.Errorf("column %s: %d is outside %d-%d", colPosition, rec.Position, minPosition, maxPosition)
	}
	return rec, nil
}

// recordRow renders a record in Columns order.
func recordRow(r schema.SeasonRecord) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.Itoa(r.SeasonEndYear), r.Team, strconv.Itoa(r.Position), strconv.Itoa(r.Played),
		f(r.Won), f(r.Drawn), f(r.Lost), f(r.GoalsFor), f(r.GoalsAgainst), f(r.GoalDifference), f(r.Points), r.Notes,
	}
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
