package dataset

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLSource reads seasons from a table in a SQL database.
type SQLSource struct {
	Backend schema.DatabaseBackend
	ConnStr string
	Table   string
}

var _ contract.SeasonSource = &SQLSource{} // Compile-time check

// Describe implements the SeasonSource interface.
func (s *SQLSource) Describe() string {
	return fmt.Sprintf("%s table %s", s.Backend, s.Table)
}

// Load implements the SeasonSource interface.
func (s *SQLSource) Load(ctx context.Context) (schema.Seasons, error) {
	if err := contract.ValidateTableName(s.Table); err != nil {
		return nil, err
	}
	db, err := Open(ctx, s.Backend, s.ConnStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf(`SELECT team, season_end_year, position, COALESCE(played, 0) AS played,
		won, drawn, lost, gf, ga, gd, points, COALESCE(notes, '') AS notes
		FROM %s ORDER BY season_end_year, position`, contract.QuoteTableName(s.Table, s.Backend))

	var records schema.Seasons
	if err := db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.Table, err)
	}
	for i := range records {
		records[i].Team = schema.NormalizeTeam(records[i].Team)
	}
	return records, nil
}

// Open connects to a SQL backend. SQLite is limited to one connection.
func Open(ctx context.Context, backend schema.DatabaseBackend, connStr string) (*sqlx.DB, error) {
	driver := backend.DriverName()
	if driver == "" {
		return nil, fmt.Errorf("unsupported SQL backend: %s", backend)
	}
	db, err := sqlx.ConnectContext(ctx, driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// createTableQuery returns the DDL for the season table.
func createTableQuery(table string, backend schema.DatabaseBackend) string {
	quoted := contract.QuoteTableName(table, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				season_end_year INT NOT NULL,
				team VARCHAR(100) NOT NULL,
				position INT NOT NULL,
				played INT,
				won DOUBLE NOT NULL,
				drawn DOUBLE NOT NULL,
				lost DOUBLE NOT NULL,
				gf DOUBLE NOT NULL,
				ga DOUBLE NOT NULL,
				gd DOUBLE NOT NULL,
				points DOUBLE NOT NULL,
				notes TEXT,
				PRIMARY KEY (season_end_year, team)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				season_end_year INTEGER NOT NULL,
				team TEXT NOT NULL,
				position INTEGER NOT NULL,
				played INTEGER,
				won DOUBLE PRECISION NOT NULL,
				drawn DOUBLE PRECISION NOT NULL,
				lost DOUBLE PRECISION NOT NULL,
				gf DOUBLE PRECISION NOT NULL,
				ga DOUBLE PRECISION NOT NULL,
				gd DOUBLE PRECISION NOT NULL,
				points DOUBLE PRECISION NOT NULL,
				notes TEXT,
				PRIMARY KEY (season_end_year, team)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				season_end_year INTEGER NOT NULL,
				team TEXT NOT NULL,
				position INTEGER NOT NULL,
				played INTEGER,
				won REAL NOT NULL,
				drawn REAL NOT NULL,
				lost REAL NOT NULL,
				gf REAL NOT NULL,
				ga REAL NOT NULL,
				gd REAL NOT NULL,
				points REAL NOT NULL,
				notes TEXT,
				PRIMARY KEY (season_end_year, team)
			);
		`, quoted)
	}
}

// Import creates the season table if needed and inserts records in one
// transaction. With replace set, existing rows are deleted first.
func Import(ctx context.Context, db *sqlx.DB, backend schema.DatabaseBackend, table string, records schema.Seasons, replace bool) error {
	if err := contract.ValidateTableName(table); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, createTableQuery(table, backend)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	quoted := contract.QuoteTableName(table, backend)
	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoted); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	insert := fmt.Sprintf(`INSERT INTO %s (season_end_year, team, position, played, won, drawn, lost, gf, ga, gd, points, notes)
		VALUES (:season_end_year, :team, :position, :played, :won, :drawn, :lost, :gf, :ga, :gd, :points, :notes)`, quoted)
	for _, r := range records {
		if _, err := tx.NamedExecContext(ctx, insert, r); err != nil {
			return fmt.Errorf("failed to insert %s %d: %w", r.Team, r.SeasonEndYear, err)
		}
	}
	return tx.Commit()
}
