// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/leaguerank/schema"
)

// SeasonSource loads the historical season table.
// This allows the pipeline to be tested without a real file or database.
type SeasonSource interface {
	// Load returns every season record the source holds.
	Load(ctx context.Context) (schema.Seasons, error)

	// Describe returns a short human-readable identifier for logs and reports.
	Describe() string
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetIntervalStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking prediction runs and per-team results.
type RunStore interface {
	// BeginRun creates a new prediction run row
	BeginRun(runID string, startTime time.Time, predictionYear int, configParams map[string]any) error

	// RecordTeamPrediction stores one team's prediction for a run
	RecordTeamPrediction(record schema.TeamPredictionRecord) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalTeams, failedTeams int, rSquared *float64) error

	// ListRuns returns the most recent runs, newest first. A limit of 0 returns all runs.
	ListRuns(limit int) ([]schema.PredictionRunRecord, error)

	// ListTeamPredictions returns the stored team rows of a run in rank order,
	// or of every run when runID is empty
	ListTeamPredictions(runID string) ([]schema.TeamPredictionRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection
	Close() error
}
