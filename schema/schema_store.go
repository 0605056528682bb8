package schema

import "time"

// CacheStatus represents the status of the interval cache.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus represents the status of the prediction run store.
type RunStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalRuns        int              `json:"total_runs"`
	LastRunID        string           `json:"last_run_id"`
	LastRunTime      time.Time        `json:"last_run_time"`
	OldestRunTime    time.Time        `json:"oldest_run_time"`
	TotalPredictions int              `json:"total_predictions"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// PredictionRunRecord represents a row from the leaguerank_prediction_runs table.
type PredictionRunRecord struct {
	RunID           string     `json:"run_id"`
	PredictionYear  int        `json:"prediction_year"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	RunDurationMs   *int64     `json:"run_duration_ms,omitempty"`
	TotalTeams      int        `json:"total_teams"`
	FailedTeams     int        `json:"failed_teams"`
	Bootstrap       int        `json:"bootstrap"`
	ConfidenceLevel float64    `json:"confidence_level"`
	RSquared        *float64   `json:"r_squared,omitempty"`
	ConfigParams    *string    `json:"config_params,omitempty"`
}

// TeamPredictionRecord represents a row from the leaguerank_team_predictions table.
type TeamPredictionRecord struct {
	RunID            string   `json:"run_id"`
	Team             string   `json:"team"`
	PredictedRank    int      `json:"predicted_rank"`
	RawPosition      float64  `json:"raw_position"`
	AdjustedPosition float64  `json:"adjusted_position"`
	RecentForm       float64  `json:"recent_form_score"`
	CILower          *float64 `json:"ci_lower,omitempty"`
	CIUpper          *float64 `json:"ci_upper,omitempty"`
	CIMean           *float64 `json:"ci_mean,omitempty"`
	StandardError    *float64 `json:"standard_error,omitempty"`
	ActualRank       *int     `json:"actual_rank,omitempty"`
}
