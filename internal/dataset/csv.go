package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/leaguerank/schema"
)

// LoadCSV reads season records from a CSV stream with a header row.
// Column order is free; played and notes are optional and unknown columns are ignored.
func LoadCSV(r io.Reader) (schema.Seasons, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return parseTable(rows)
}

// WriteCSV writes records in Columns order with a header row.
func WriteCSV(w io.Writer, records schema.Seasons) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(recordRow(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
