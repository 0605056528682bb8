package iocache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/leaguerank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPrintCacheStatus(t *testing.T) {
	t.Run("disconnected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
		assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())
	})

	t.Run("connected", func(t *testing.T) {
		var buf bytes.Buffer
		PrintCacheStatus(&buf, schema.CacheStatus{
			Backend: "sqlite", Connected: true, TotalEntries: 3,
			LastEntryTime: time.Now(), OldestEntryTime: time.Now(), TableSizeBytes: 4096,
		})
		out := buf.String()
		assert.Contains(t, out, "Total Entries: 3")
		assert.Contains(t, out, "Last Entry:")
		assert.Contains(t, out, "Table Size: 4096 bytes")
	})
}

func TestPrintRunStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintRunStatus(&buf, schema.RunStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 2, LastRunID: "abc",
		TotalPredictions: 40,
		TableSizes:       map[string]int64{teamPredictionsTable: 40, predictionRunsTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: abc")
	assert.Contains(t, out, "Total Team Predictions: 40")
	// Tables are listed alphabetically
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(predictionRunsTable)), bytes.Index(buf.Bytes(), []byte(teamPredictionsTable)))
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	ms := int64(1200)
	r2 := 0.5
	require.NoError(t, PrintRuns(&buf, []schema.PredictionRunRecord{
		{RunID: "run-a", PredictionYear: 2024, StartTime: time.Now(), RunDurationMs: &ms, TotalTeams: 20, RSquared: &r2},
		{RunID: "run-b", PredictionYear: 2023, StartTime: time.Now()},
	}))
	out := buf.String()
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "1200ms")
	assert.Contains(t, out, "0.500")
	assert.Contains(t, out, "run-b")
}

func TestExportRuns(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		assert.Error(t, ExportRuns(&MockRunStore{}, "", &bytes.Buffer{}))
	})

	t.Run("requires store", func(t *testing.T) {
		assert.Error(t, ExportRuns(nil, "out", &bytes.Buffer{}))
	})

	t.Run("empty store", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExportRuns(store, "out", &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no prediction runs")
	})

	t.Run("writes both files", func(t *testing.T) {
		store := &MockRunStore{}
		store.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true, TotalRuns: 1, TotalPredictions: 1}, nil)
		store.On("ListRuns", 0).Return([]schema.PredictionRunRecord{{RunID: "r", PredictionYear: 2024, StartTime: time.Now()}}, nil)
		store.On("ListTeamPredictions", mock.Anything).Return([]schema.TeamPredictionRecord{{RunID: "r", Team: "Arsenal", PredictedRank: 1}}, nil)

		base := filepath.Join(t.TempDir(), "export")
		var buf bytes.Buffer
		require.NoError(t, ExportRuns(store, base, &buf))
		assert.FileExists(t, base+".prediction_runs.parquet")
		assert.FileExists(t, base+".team_predictions.parquet")
		assert.Contains(t, buf.String(), "Exported 1 team predictions")
		store.AssertExpectations(t)
	})
}
