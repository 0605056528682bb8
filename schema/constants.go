package schema

// Custom string types for type safety.
type (
	// StatKey names one of the per-season summary statistics used as a model feature.
	StatKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// DataBackend represents where the historical season table is read from.
	DataBackend string

	// FormDirection describes the sign of a team's recent form.
	FormDirection string

	// AccuracyLabel buckets how far a predicted rank landed from the actual rank.
	AccuracyLabel string
)

// Base statistics fed to the rank model.
const (
	StatPoints StatKey = "points"
	StatGF     StatKey = "gf"
	StatGA     StatKey = "ga"
	StatGD     StatKey = "gd"
	StatWon    StatKey = "won"
	StatDrawn  StatKey = "drawn"
	StatLost   StatKey = "lost"
	StatForm   StatKey = "recent_form_score" // derived, never a model input
)

// BaseStats is the fixed feature order used for training and prediction.
var BaseStats = []StatKey{StatPoints, StatGF, StatGA, StatGD, StatWon, StatDrawn, StatLost}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	XLSXOut    OutputMode = "xlsx"
	HTMLOut    OutputMode = "html"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // interval cache only
	NoneBackend       DatabaseBackend = "none"
)

// All dataset sources supported.
const (
	CSVData        DataBackend = "csv" // default
	SQLiteData     DataBackend = "sqlite"
	MySQLData      DataBackend = "mysql"
	PostgreSQLData DataBackend = "postgresql"
)

// Form directions.
const (
	FormImproving FormDirection = "Improving"
	FormDeclining FormDirection = "Declining"
	FormStable    FormDirection = "Stable"
)

// Accuracy labels.
const (
	AccuracyClose AccuracyLabel = "Close" // within one place
	AccuracyNear  AccuracyLabel = "Near"  // within two places
	AccuracyMiss  AccuracyLabel = "Miss"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	XLSXOut:    {},
	HTMLOut:    {},
}

// ValidCacheBackends lists all valid interval cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidRunBackends lists all valid prediction-run store backends.
var ValidRunBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidDataBackends lists all valid dataset sources.
var ValidDataBackends = map[DataBackend]struct{}{
	CSVData:        {},
	SQLiteData:     {},
	MySQLData:      {},
	PostgreSQLData: {},
}

// DatabaseFor maps a SQL dataset source onto the storage backend with the same driver.
func (d DataBackend) DatabaseFor() DatabaseBackend {
	switch d {
	case SQLiteData:
		return SQLiteBackend
	case MySQLData:
		return MySQLBackend
	case PostgreSQLData:
		return PostgreSQLBackend
	default:
		return NoneBackend
	}
}

// DriverName returns the database/sql driver registered for the backend, or ""
// for backends that are not SQL databases.
func (b DatabaseBackend) DriverName() string {
	switch b {
	case SQLiteBackend:
		return "sqlite"
	case MySQLBackend:
		return "mysql"
	case PostgreSQLBackend:
		return "pgx"
	default:
		return ""
	}
}
