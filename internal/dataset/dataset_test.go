package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `season_end_year,team,position,played,won,drawn,lost,gf,ga,gd,points,notes
2022,Manchester City,1,38,29,6,3,99,26,73,93,
2022,Liverpool,2,38,28,8,2,94,26,68,92,
2023,Arsenal ,2,38,26,6,6,88,43,45,84,→ Champions League
`

func sampleRecords() schema.Seasons {
	return schema.Seasons{
		{Team: "Manchester City", SeasonEndYear: 2022, Position: 1, Played: 38, Won: 29, Drawn: 6, Lost: 3, GoalsFor: 99, GoalsAgainst: 26, GoalDifference: 73, Points: 93},
		{Team: "Liverpool", SeasonEndYear: 2022, Position: 2, Played: 38, Won: 28, Drawn: 8, Lost: 2, GoalsFor: 94, GoalsAgainst: 26, GoalDifference: 68, Points: 92},
		{Team: "Arsenal", SeasonEndYear: 2023, Position: 2, Played: 38, Won: 26, Drawn: 6, Lost: 6, GoalsFor: 88, GoalsAgainst: 43, GoalDifference: 45, Points: 84, Notes: "→ Champions League"},
	}
}

func TestLoadCSV(t *testing.T) {
	t.Run("full table", func(t *testing.T) {
		records, err := LoadCSV(strings.NewReader(sampleCSV))
		require.NoError(t, err)
		assert.Equal(t, sampleRecords(), records)
	})

	t.Run("reordered headers without optional columns", func(t *testing.T) {
		data := "Team,Points,Season End Year,Position,W,Won,Drawn,Lost,GF,GA,GD\n" +
			"Everton,40,2020,12,x,10,10,18,40,50,-10\n"
		records, err := LoadCSV(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Everton", records[0].Team)
		assert.Equal(t, 2020, records[0].SeasonEndYear)
		assert.Equal(t, 0, records[0].Played)
		assert.InDelta(t, -10.0, records[0].GoalDifference, 1e-9)
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		data := "season_end_year,team,position,won,drawn,lost,gf,ga,gd,points\n" +
			",,,,,,,,,\n" +
			"2020,Leeds United,9,14,8,16,62,66,-4,50\n"
		records, err := LoadCSV(strings.NewReader(data))
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("byte order mark before the header", func(t *testing.T) {
		records, err := LoadCSV(strings.NewReader("\ufeff" + sampleCSV))
		require.NoError(t, err)
		assert.Equal(t, sampleRecords(), records)
	})

	errorCases := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"empty", "", "empty"},
		{"missing column", "team,position\nArsenal,1\n", "season_end_year"},
		{"bad number", "season_end_year,team,position,won,drawn,lost,gf,ga,gd,points\n2020,Arsenal,1,x,1,1,1,1,0,1\n", "line 2: column won"},
		{"position out of range", "season_end_year,team,position,won,drawn,lost,gf,ga,gd,points\n2020,Arsenal,21,1,1,1,1,1,0,1\n", "outside 1-20"},
		{"empty team", "season_end_year,team,position,won,drawn,lost,gf,ga,gd,points\n2020, ,1,1,1,1,1,1,0,1\n", "team is empty"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tc.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))
	records, err := LoadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), records)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"season_end_year", "team", "position", "won", "drawn", "lost", "gf", "ga", "gd", "points"},
		{2021, "Chelsea", 4, 19, 10, 9, 58, 36, 22, 67},
		{2021, "Fulham", 18, 5, 13, 20, 27, 53, -26, 28},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Chelsea", records[0].Team)
	assert.Equal(t, 18, records[1].Position)
	assert.InDelta(t, -26.0, records[1].GoalDifference, 1e-9)

	src := &FileSource{Path: path}
	loaded, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestLoadOutcomes(t *testing.T) {
	t.Run("comparison file headers", func(t *testing.T) {
		data := "Team,Actual Position\nArsenal,2\n Manchester  City ,1\n"
		outcomes, err := LoadOutcomes(strings.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, []schema.ActualOutcome{{Team: "Arsenal", Position: 2}, {Team: "Manchester City", Position: 1}}, outcomes)
	})

	t.Run("plain headers", func(t *testing.T) {
		outcomes, err := LoadOutcomes(strings.NewReader("team,position\nFulham,13\n"))
		require.NoError(t, err)
		assert.Equal(t, []schema.ActualOutcome{{Team: "Fulham", Position: 13}}, outcomes)
	})

	errorCases := map[string]string{
		"":                        "empty",
		"club,position\nA,1\n":    "team column",
		"team,points\nA,1\n":      "position column",
		"team,position\nA,zero\n": "bad position",
		"team,position\nA,0\n":    "outside",
	}
	for data, wantErr := range errorCases {
		_, err := LoadOutcomes(strings.NewReader(data))
		require.Error(t, err, data)
		assert.Contains(t, err.Error(), wantErr)
	}
}

func TestLoadOutcomesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outcomes.csv")
	require.NoError(t, os.WriteFile(path, []byte("team,position\nArsenal,2\n"), 0o600))
	outcomes, err := LoadOutcomesFile(path)
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)

	_, err = LoadOutcomesFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(&contract.Config{DataBackend: schema.CSVData, DataPath: "tables.csv"})
	require.NoError(t, err)
	assert.Equal(t, "file tables.csv", src.Describe())

	src, err = NewSource(&contract.Config{DataBackend: schema.PostgreSQLData, DataTable: "seasons"})
	require.NoError(t, err)
	assert.Equal(t, "postgresql table seasons", src.Describe())

	_, err = NewSource(&contract.Config{DataBackend: "parquet"})
	assert.Error(t, err)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "missing.csv")}
	_, err := src.Load(context.Background())
	assert.Error(t, err)
}

func TestSQLiteImportAndLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seasons.db")

	db, err := Open(ctx, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, Import(ctx, db, schema.SQLiteBackend, "season_records", sampleRecords(), false))
	// Replacing clears the earlier import so the primary key does not collide
	require.NoError(t, Import(ctx, db, schema.SQLiteBackend, "season_records", sampleRecords(), true))
	require.NoError(t, db.Close())

	src := &SQLSource{Backend: schema.SQLiteBackend, ConnStr: path, Table: "season_records"}
	records, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), records)

	bad := &SQLSource{Backend: schema.SQLiteBackend, ConnStr: path, Table: "seasons;"}
	_, err = bad.Load(ctx)
	assert.Error(t, err)
}

func TestOpenUnsupportedBackend(t *testing.T) {
	_, err := Open(context.Background(), schema.RedisBackend, "redis://localhost")
	assert.Error(t, err)
}
