package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTeamForms outputs the weighted profile of each team. Only text, csv and json are supported.
func PrintTeamForms(forms []schema.TeamForm, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, forms)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFormsCSV(w, forms)
		}, "Wrote CSV")
	case schema.TextOut, "":
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFormsText(forms, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	default:
		return unsupportedMode("team form", cfg.Output)
	}
}

func formsHeader() []string {
	header := []string{"team", "reference_year", "seasons"}
	for _, key := range schema.BaseStats {
		header = append(header, string(key))
	}
	return append(header, "recent_form_score", "trend_defined", "points_slope", "position_slope", "trend_observations")
}

func writeFormsCSV(w io.Writer, forms []schema.TeamForm) error {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	return writeCSVWithHeader(w, formsHeader(), func(cw *csv.Writer) error {
		for _, f := range forms {
			v := f.Vector
			rec := []string{v.Team, strconv.Itoa(v.ReferenceYear), strconv.Itoa(v.Seasons)}
			for _, key := range schema.BaseStats {
				rec = append(rec, format(v.Stats[key]))
			}
			rec = append(rec,
				format(v.RecentForm),
				strconv.FormatBool(f.Trend.Defined),
				format(f.Trend.PointsSlope),
				format(f.Trend.PositionSlope),
				strconv.Itoa(f.Trend.Observations),
			)
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFormsText(forms []schema.TeamForm, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	headers := []string{"Team", "Year", "Seasons", "Pts", "GF", "GA", "GD", "W", "D", "L", "Form", "Direction"}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, f := range forms {
		v := f.Vector
		row := []string{
			contract.TruncateName(v.Team, nameWidth),
			fmt.Sprintf(intFmt, v.ReferenceYear),
			fmt.Sprintf(intFmt, v.Seasons),
		}
		for _, key := range schema.BaseStats {
			row = append(row, fmtFloat(v.Stats[key]))
		}
		row = append(row,
			fmt.Sprintf("%+.2f", v.RecentForm),
			contract.GetColorDirection(schema.GetFormDirection(v.RecentForm)),
		)
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, f := range forms {
		if !f.Trend.Defined {
			if _, err := fmt.Fprintf(w, "• %-20s trend undefined (%d recent seasons)\n", f.Vector.Team, f.Trend.Observations); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "• %-20s points %+.2f/season, places gained %+.2f/season over %d seasons\n",
			f.Vector.Team, f.Trend.PointsSlope, f.Trend.PositionSlope, f.Trend.Observations); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Profiles built in %v\n", duration)
	return err
}
