package dataset

import (
	"fmt"

	"github.com/huangsam/leaguerank/schema"
	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads season records from the first sheet of a workbook.
func LoadXLSX(path string) (schema.Seasons, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return parseTable(rows)
}
