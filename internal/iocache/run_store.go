package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
)

// Table names for run tracking.
const (
	predictionRunsTable  = "leaguerank_prediction_runs"
	teamPredictionsTable = "leaguerank_team_predictions"
)

// sqliteTimeLayout keeps SQLite timestamps sortable as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{predictionRunsTable, getCreatePredictionRunsQuery(backend)},
		{teamPredictionsTable, getCreateTeamPredictionsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreatePredictionRunsQuery returns the CREATE TABLE query for leaguerank_prediction_runs.
func getCreatePredictionRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := contract.QuoteTableName(predictionRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				prediction_year INT NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				total_teams INT NOT NULL DEFAULT 0,
				failed_teams INT NOT NULL DEFAULT 0,
				bootstrap INT NOT NULL DEFAULT 0,
				confidence_level DOUBLE NOT NULL DEFAULT 0,
				r_squared DOUBLE,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				prediction_year INTEGER NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				total_teams INTEGER NOT NULL DEFAULT 0,
				failed_teams INTEGER NOT NULL DEFAULT 0,
				bootstrap INTEGER NOT NULL DEFAULT 0,
				confidence_level DOUBLE PRECISION NOT NULL DEFAULT 0,
				r_squared DOUBLE PRECISION,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				prediction_year INTEGER NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_teams INTEGER NOT NULL DEFAULT 0,
				failed_teams INTEGER NOT NULL DEFAULT 0,
				bootstrap INTEGER NOT NULL DEFAULT 0,
				confidence_level REAL NOT NULL DEFAULT 0,
				r_squared REAL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateTeamPredictionsQuery returns the CREATE TABLE query for leaguerank_team_predictions.
func getCreateTeamPredictionsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := contract.QuoteTableName(teamPredictionsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				team VARCHAR(100) NOT NULL,
				predicted_rank INT NOT NULL,
				raw_position DOUBLE NOT NULL,
				adjusted_position DOUBLE NOT NULL,
				recent_form_score DOUBLE NOT NULL,
				ci_lower DOUBLE,
				ci_upper DOUBLE,
				ci_mean DOUBLE,
				standard_error DOUBLE,
				actual_rank INT,
				PRIMARY KEY (run_id, team)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				team TEXT NOT NULL,
				predicted_rank INTEGER NOT NULL,
				raw_position DOUBLE PRECISION NOT NULL,
				adjusted_position DOUBLE PRECISION NOT NULL,
				recent_form_score DOUBLE PRECISION NOT NULL,
				ci_lower DOUBLE PRECISION,
				ci_upper DOUBLE PRECISION,
				ci_mean DOUBLE PRECISION,
				standard_error DOUBLE PRECISION,
				actual_rank INTEGER,
				PRIMARY KEY (run_id, team)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				team TEXT NOT NULL,
				predicted_rank INTEGER NOT NULL,
				raw_position REAL NOT NULL,
				adjusted_position REAL NOT NULL,
				recent_form_score REAL NOT NULL,
				ci_lower REAL,
				ci_upper REAL,
				ci_mean REAL,
				standard_error REAL,
				actual_rank INTEGER,
				PRIMARY KEY (run_id, team)
			);
		`, quotedTableName)
	}
}

// BeginRun creates the run row. Bootstrap and confidence are lifted out of configParams.
func (rs *RunStoreImpl) BeginRun(runID string, startTime time.Time, predictionYear int, configParams map[string]any) error {
	if rs.db == nil {
		return nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, prediction_year, start_time, bootstrap, confidence_level, config_params) VALUES (%s)`,
		contract.QuoteTableName(predictionRunsTable, rs.backend), placeholders(rs.backend, 6))
	_, err = rs.db.Exec(query, runID, predictionYear, rs.formatTime(startTime),
		intParam(configParams["bootstrap"]), floatParam(configParams["confidence"]), string(configJSON))
	if err != nil {
		return fmt.Errorf("failed to insert prediction run: %w", err)
	}
	return nil
}

// RecordTeamPrediction stores one ranked team of a run.
func (rs *RunStoreImpl) RecordTeamPrediction(r schema.TeamPredictionRecord) error {
	if rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, team, predicted_rank, raw_position, adjusted_position, recent_form_score,
		                ci_lower, ci_upper, ci_mean, standard_error, actual_rank)
		VALUES (%s)
	`, contract.QuoteTableName(teamPredictionsTable, rs.backend), placeholders(rs.backend, 11))
	_, err := rs.db.Exec(query,
		r.RunID, r.Team, r.PredictedRank, r.RawPosition, r.AdjustedPosition, r.RecentForm,
		r.CILower, r.CIUpper, r.CIMean, r.StandardError, r.ActualRank,
	)
	if err != nil {
		return fmt.Errorf("failed to insert team prediction: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID string, endTime time.Time, totalTeams, failedTeams int, rSquared *float64) error {
	if rs.db == nil {
		return nil
	}

	quotedTableName := contract.QuoteTableName(predictionRunsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1)), runID)
	startTime, err := rs.scanTime(row.Scan)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	var updateQuery string
	if rs.backend == schema.PostgreSQLBackend {
		updateQuery = `UPDATE %s SET end_time = $1, run_duration_ms = $2, total_teams = $3, failed_teams = $4, r_squared = $5 WHERE run_id = $6`
	} else {
		updateQuery = `UPDATE %s SET end_time = ?, run_duration_ms = ?, total_teams = ?, failed_teams = ?, r_squared = ? WHERE run_id = ?`
	}
	_, err = rs.db.Exec(fmt.Sprintf(updateQuery, quotedTableName),
		rs.formatTime(endTime), endTime.Sub(startTime).Milliseconds(), totalTeams, failedTeams, rSquared, runID)
	if err != nil {
		return fmt.Errorf("failed to update prediction run: %w", err)
	}
	return nil
}

const runColumns = `run_id, prediction_year, start_time, end_time, run_duration_ms, total_teams, failed_teams,
	bootstrap, confidence_level, r_squared, config_params`

// ListRuns returns the most recent runs, newest first. A limit of 0 returns all runs.
func (rs *RunStoreImpl) ListRuns(limit int) ([]schema.PredictionRunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY start_time DESC, run_id",
		runColumns, contract.QuoteTableName(predictionRunsTable, rs.backend))
	var args []any
	if limit > 0 {
		query += " LIMIT " + placeholder(rs.backend, 1)
		args = append(args, limit)
	}

	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PredictionRunRecord
	for rows.Next() {
		record, err := rs.scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prediction runs: %w", err)
	}
	return results, nil
}

func (rs *RunStoreImpl) scanRun(rows *sql.Rows) (schema.PredictionRunRecord, error) {
	var record schema.PredictionRunRecord
	if rs.backend == schema.SQLiteBackend {
		var startStr string
		var endStr *string
		if err := rows.Scan(&record.RunID, &record.PredictionYear, &startStr, &endStr, &record.RunDurationMs,
			&record.TotalTeams, &record.FailedTeams, &record.Bootstrap, &record.ConfidenceLevel,
			&record.RSquared, &record.ConfigParams); err != nil {
			return record, fmt.Errorf("failed to scan prediction run: %w", err)
		}
		startTime, err := time.Parse(sqliteTimeLayout, startStr)
		if err != nil {
			return record, fmt.Errorf("failed to parse start_time: %w", err)
		}
		record.StartTime = startTime
		if endStr != nil {
			endTime, err := time.Parse(sqliteTimeLayout, *endStr)
			if err != nil {
				return record, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		return record, nil
	}

	// MySQL and PostgreSQL store native datetimes
	if err := rows.Scan(&record.RunID, &record.PredictionYear, &record.StartTime, &record.EndTime, &record.RunDurationMs,
		&record.TotalTeams, &record.FailedTeams, &record.Bootstrap, &record.ConfidenceLevel,
		&record.RSquared, &record.ConfigParams); err != nil {
		return record, fmt.Errorf("failed to scan prediction run: %w", err)
	}
	return record, nil
}

// ListTeamPredictions returns the team rows of one run, or of all runs when runID is empty.
func (rs *RunStoreImpl) ListTeamPredictions(runID string) ([]schema.TeamPredictionRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, team, predicted_rank, raw_position, adjusted_position, recent_form_score,
		ci_lower, ci_upper, ci_mean, standard_error, actual_rank FROM %s`,
		contract.QuoteTableName(teamPredictionsTable, rs.backend))
	var args []any
	if runID != "" {
		query += " WHERE run_id = " + placeholder(rs.backend, 1)
		args = append(args, runID)
	}
	query += " ORDER BY run_id, predicted_rank"

	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query team predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TeamPredictionRecord
	for rows.Next() {
		var r schema.TeamPredictionRecord
		if err := rows.Scan(&r.RunID, &r.Team, &r.PredictedRank, &r.RawPosition, &r.AdjustedPosition, &r.RecentForm,
			&r.CILower, &r.CIUpper, &r.CIMean, &r.StandardError, &r.ActualRank); err != nil {
			return nil, fmt.Errorf("failed to scan team prediction: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team predictions: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	runsTable := contract.QuoteTableName(predictionRunsTable, rs.backend)
	if err := rs.db.QueryRow("SELECT COUNT(*) FROM " + runsTable).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", runsTable))
		var err error
		status.LastRunTime, err = rs.scanTime(func(dest ...any) error {
			return row.Scan(append([]any{&status.LastRunID}, dest...)...)
		})
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runsTable))
		if status.OldestRunTime, err = rs.scanTime(row.Scan); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	for _, table := range []string{predictionRunsTable, teamPredictionsTable} {
		var count int64
		if err := rs.db.QueryRow("SELECT COUNT(*) FROM " + contract.QuoteTableName(table, rs.backend)).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalPredictions = int(status.TableSizes[teamPredictionsTable])
	return status, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func (rs *RunStoreImpl) formatTime(t time.Time) any {
	if rs.backend == schema.SQLiteBackend {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t
}

// scanTime reads one timestamp column through scan, parsing SQLite text.
func (rs *RunStoreImpl) scanTime(scan func(dest ...any) error) (time.Time, error) {
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := scan(&t)
		return t, err
	}
	var s string
	if err := scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(sqliteTimeLayout, strings.TrimSpace(s))
}

func intParam(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func floatParam(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
