package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/leaguerank/schema"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// workbook wraps an excelize file that gains one sheet per table.
type workbook struct {
	f     *excelize.File
	first bool
}

func newWorkbook() *workbook {
	return &workbook{f: excelize.NewFile(), first: true}
}

// addSheet writes header and rows to a new sheet. The first call reuses the default sheet.
func (b *workbook) addSheet(name string, header []any, rows [][]any) error {
	if b.first {
		if err := b.f.SetSheetName(defaultSheet, name); err != nil {
			return err
		}
		b.first = false
	} else if _, err := b.f.NewSheet(name); err != nil {
		return err
	}

	if err := b.f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := b.f.SetSheetRow(name, cell, &rows[i]); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

// writeTo streams the workbook and releases it.
func (b *workbook) writeTo(w io.Writer) error {
	defer func() { _ = b.f.Close() }()
	b.f.SetActiveSheet(0)
	return b.f.Write(w)
}

// nullable returns v, or nil so the cell stays empty.
func nullable[T any](v T, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// writePredictionWorkbook writes Predictions, and when present Validation and Failures sheets.
func writePredictionWorkbook(w io.Writer, report schema.PredictionReport) error {
	b := newWorkbook()
	header := make([]any, len(predictionCSVHeader))
	for i, h := range predictionCSVHeader {
		header[i] = h
	}
	var rows [][]any
	for _, r := range report.ComparisonRows() {
		rows = append(rows, []any{
			r.Team,
			r.PredictedRank,
			nullable(r.ActualRank, r.HasActual),
			nullable(r.Difference, r.HasActual),
			r.AdjustedPosition,
			r.RawPosition,
			r.RecentForm,
			nullable(r.CILower, r.HasInterval),
			nullable(r.CIUpper, r.HasInterval),
			nullable(r.CIMean, r.HasInterval),
			nullable(r.StandardError, r.HasInterval),
			nullable(r.IntervalWidth, r.HasInterval),
			r.WithinCI,
		})
	}
	if err := b.addSheet("Predictions", header, rows); err != nil {
		return err
	}

	if report.Validation != nil {
		if err := addValidationSheet(b, *report.Validation); err != nil {
			return err
		}
	}

	if len(report.Failures) > 0 {
		var failures [][]any
		for _, f := range report.Failures {
			failures = append(failures, []any{f.Team, f.Stage, f.Reason})
		}
		if err := b.addSheet("Failures", []any{"Team", "Stage", "Reason"}, failures); err != nil {
			return err
		}
	}
	return b.writeTo(w)
}

// writeValidationWorkbook writes a single Validation sheet.
func writeValidationWorkbook(w io.Writer, report schema.ValidationReport) error {
	b := newWorkbook()
	if err := addValidationSheet(b, report); err != nil {
		return err
	}
	return b.writeTo(w)
}

func addValidationSheet(b *workbook, report schema.ValidationReport) error {
	var rows [][]any
	for _, f := range report.Folds {
		var score any
		if f.Score != nil {
			score = *f.Score
		}
		rows = append(rows, []any{f.String(), f.TrainRows, f.TestRows, f.Predictions, score})
	}
	rows = append(rows, []any{"mean", nil, nil, nil, report.MeanScore})
	return b.addSheet("Validation", []any{"Fold", "Train Rows", "Test Rows", "Predictions", "R²"}, rows)
}
