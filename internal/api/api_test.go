package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/leaguerank/core"
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/iocache"
	"github.com/huangsam/leaguerank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leagueTeams = []string{"Arsenal", "Chelsea", "Everton", "Fulham", "Leeds United", "Tottenham"}

// writeLeagueCSV writes a small league where every team repeats its finish each season.
func writeLeagueCSV(t *testing.T, first, last int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("season_end_year,team,position,played,won,drawn,lost,gf,ga,gd,points\n")
	for year := first; year <= last; year++ {
		for i, team := range leagueTeams {
			won := 26 - 3*i
			lost := 38 - won - 6
			gf, ga := 84-8*i, 28+6*i
			fmt.Fprintf(&sb, "%d,%s,%d,38,%d,6,%d,%d,%d,%d,%d\n", year, team, i+1, won, lost, gf, ga, gf-ga, 3*won+6)
		}
	}
	path := filepath.Join(t.TempDir(), "league.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func newTestServer(t *testing.T, mgr contract.CacheManager) *httptest.Server {
	t.Helper()
	cfg := &contract.Config{
		DataPath:        writeLeagueCSV(t, 2012, 2023),
		DataBackend:     schema.CSVData,
		ConfidenceLevel: 0.95,
		Bootstrap:       0,
		Trees:           10,
		Seed:            42,
		MinLeaf:         1,
		Workers:         2,
		Timeout:         time.Minute,
		Folds:           []schema.FoldDefinition{{TrainEnd: 2019, TestStart: 2020, TestEnd: 2023}},
	}
	ts := httptest.NewServer(NewServer(cfg, mgr).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	var body map[string]string
	assert.Equal(t, http.StatusOK, get(t, ts, "/healthz", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestPredictions(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("season with outcomes", func(t *testing.T) {
		var body struct {
			PredictionYear int                    `json:"prediction_year"`
			Rankings       []schema.ComparisonRow `json:"rankings"`
			Summary        schema.ReportSummary   `json:"summary"`
		}
		status := get(t, ts, "/api/v1/predictions?year=2023&bootstrap=0", &body)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2023, body.PredictionYear)
		require.Len(t, body.Rankings, len(leagueTeams))
		assert.Equal(t, len(leagueTeams), body.Summary.Matched)
	})

	t.Run("team subset", func(t *testing.T) {
		var body struct {
			Rankings []schema.ComparisonRow `json:"rankings"`
		}
		status := get(t, ts, "/api/v1/predictions?year=2024&teams=Arsenal,Tottenham", &body)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, body.Rankings, 2)
		assert.Equal(t, "Arsenal", body.Rankings[0].Team)
		assert.False(t, body.Rankings[0].HasActual, "2024 is not in the dataset")
	})

	tests := []struct {
		name     string
		query    string
		status   int
		expected string
	}{
		{"bad year", "year=abc", http.StatusBadRequest, "year must be an integer"},
		{"bad bootstrap", "bootstrap=x", http.StatusBadRequest, "bootstrap must be an integer"},
		{"bad confidence", "confidence=2", http.StatusBadRequest, "confidence must be strictly between"},
		{"no training rows", "year=2012", http.StatusUnprocessableEntity, "empty training set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			assert.Equal(t, tt.status, get(t, ts, "/api/v1/predictions?"+tt.query, &body))
			assert.Contains(t, body["error"], tt.expected)
		})
	}
}

func TestValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	var report schema.ValidationReport
	require.Equal(t, http.StatusOK, get(t, ts, "/api/v1/validation", &report))
	require.Len(t, report.Folds, 1)
	assert.Equal(t, 2019, report.Folds[0].TrainEnd)

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, get(t, ts, "/api/v1/validation?folds=2019:2018", &body))
	assert.Contains(t, body["error"], "invalid fold definitions")
}

func TestTeamForm(t *testing.T) {
	ts := newTestServer(t, nil)

	var form schema.TeamForm
	require.Equal(t, http.StatusOK, get(t, ts, "/api/v1/teams/Leeds%20United/form?year=2020", &form))
	assert.Equal(t, "Leeds United", form.Vector.Team)
	assert.Equal(t, 2020, form.Vector.ReferenceYear)
	assert.Equal(t, 8, form.Vector.Seasons)

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, get(t, ts, "/api/v1/teams/Luton/form", &body))
	assert.Contains(t, body["error"], "no form for Luton")
}

func TestRuns(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ts := newTestServer(t, nil)
		var body map[string]string
		assert.Equal(t, http.StatusNotFound, get(t, ts, "/api/v1/runs", &body))
	})

	t.Run("listed", func(t *testing.T) {
		store := &iocache.MockRunStore{}
		store.On("ListRuns", 3).Return([]schema.PredictionRunRecord{{RunID: "run-9", PredictionYear: 2024}}, nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRunStore").Return(store)

		ts := newTestServer(t, mgr)
		var runs []schema.PredictionRunRecord
		require.Equal(t, http.StatusOK, get(t, ts, "/api/v1/runs?limit=3", &runs))
		require.Len(t, runs, 1)
		assert.Equal(t, "run-9", runs[0].RunID)
	})

	t.Run("store error", func(t *testing.T) {
		store := &iocache.MockRunStore{}
		store.On("ListRuns", defaultRunLimit).Return(nil, errors.New("boom"))
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRunStore").Return(store)

		ts := newTestServer(t, mgr)
		var body map[string]string
		assert.Equal(t, http.StatusInternalServerError, get(t, ts, "/api/v1/runs", &body))
		assert.Contains(t, body["error"], "boom")
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(fmt.Errorf("wrap: %w", core.ErrEmptyTrainingSet)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("other")))
}

func TestListenAndServeShutsDown(t *testing.T) {
	s := NewServer(&contract.Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
