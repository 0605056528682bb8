package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/leaguerank/schema"
)

// Accepted header names for the outcomes file.
var positionHeaders = []string{"position", "actual_position", "actual_rank", "actual"}

// LoadOutcomes reads team,position pairs with a header row.
func LoadOutcomes(r io.Reader) ([]schema.ActualOutcome, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read outcomes: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("outcomes file is empty")
	}

	idx := headerIndex(rows[0])
	teamCol, ok := idx[colTeam]
	if !ok {
		return nil, fmt.Errorf("outcomes file is missing a team column")
	}
	posCol := -1
	for _, h := range positionHeaders {
		if i, ok := idx[h]; ok {
			posCol = i
			break
		}
	}
	if posCol < 0 {
		return nil, fmt.Errorf("outcomes file is missing a position column (one of %s)", strings.Join(positionHeaders, ", "))
	}

	outcomes := make([]schema.ActualOutcome, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if teamCol >= len(row) || posCol >= len(row) {
			return nil, fmt.Errorf("line %d: expected team and position", i+2)
		}
		pos, err := strconv.Atoi(strings.TrimSpace(row[posCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad position: %w", i+2, err)
		}
		if pos < minPosition || pos > maxPosition {
			return nil, fmt.Errorf("line %d: position %d is outside %d-%d", i+2, pos, minPosition, maxPosition)
		}
		outcomes = append(outcomes, schema.ActualOutcome{Team: schema.NormalizeTeam(row[teamCol]), Position: pos})
	}
	return outcomes, nil
}

// LoadOutcomesFile reads outcomes from a CSV file.
func LoadOutcomesFile(path string) ([]schema.ActualOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open outcomes: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadOutcomes(f)
}
