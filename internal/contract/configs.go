package contract

import (
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/leaguerank/schema"
)

// Default values for configuration.
const (
	DefaultDataPath        = "pl-tables-1993-2023.csv"
	DefaultDataTable       = "season_records"
	DefaultBootstrap       = 100
	MaxBootstrap           = 100000
	DefaultConfidenceLevel = 0.95
	DefaultTrees           = 100
	DefaultSeed            = 42
	DefaultMinLeaf         = 1
	DefaultPrecision       = 1
	DefaultTimeout         = 10 * time.Minute
	DefaultAddr            = ":8080"
	DefaultFolds           = "2013:2014-2016,2016:2017-2019,2019:2020-2023"

	minYear = 1870
	maxYear = 3000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a prediction run.
// This struct remains the "final, validated" config.
type Config struct {
	DataPath      string
	DataBackend   schema.DataBackend
	DataDBConnect string // Please use env var as this is plaintext
	DataTable     string

	PredictionYear int // 0 = season after the latest one in the dataset
	Teams          []string
	OutcomesPath   string

	Bootstrap       int // 0 disables interval estimation
	ConfidenceLevel float64
	Trees           int
	Seed            uint64
	MaxDepth        int
	MinLeaf         int
	Folds           []schema.FoldDefinition
	Validate        bool
	Workers         int
	Timeout         time.Duration // 0 = no deadline

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string
	Addr      string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Dataset ---
	Data          string `mapstructure:"data"`
	DataBackend   string `mapstructure:"data-backend"`
	DataDBConnect string `mapstructure:"data-db-connect"`
	DataTable     string `mapstructure:"data-table"`

	// --- Prediction target ---
	Year     int    `mapstructure:"year"`
	Teams    string `mapstructure:"teams"`
	Outcomes string `mapstructure:"outcomes"`

	// --- Model and resampling ---
	Bootstrap  int     `mapstructure:"bootstrap"`
	Confidence float64 `mapstructure:"confidence"`
	Trees      int     `mapstructure:"trees"`
	Seed       int64   `mapstructure:"seed"`
	MaxDepth   int     `mapstructure:"max-depth"`
	MinLeaf    int     `mapstructure:"min-leaf"`
	Folds      string  `mapstructure:"folds"`
	Validate   bool    `mapstructure:"validate"`
	Workers    int     `mapstructure:"workers"`
	Timeout    string  `mapstructure:"timeout"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`

	// --- Storage ---
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`

	// --- Logging and serving ---
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	Addr      string `mapstructure:"addr"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Teams = slices.Clone(c.Teams)
	clone.Folds = slices.Clone(c.Folds)
	return &clone
}

// ConfigParams returns the run parameters recorded alongside each stored run.
func (c *Config) ConfigParams() map[string]any {
	folds := make([]string, len(c.Folds))
	for i, f := range c.Folds {
		folds[i] = f.String()
	}
	return map[string]any{
		"data":        c.DataPath,
		"data_source": string(c.DataBackend),
		"year":        c.PredictionYear,
		"teams":       len(c.Teams),
		"bootstrap":   c.Bootstrap,
		"confidence":  c.ConfidenceLevel,
		"trees":       c.Trees,
		"seed":        c.Seed,
		"max_depth":   c.MaxDepth,
		"min_leaf":    c.MinLeaf,
		"folds":       strings.Join(folds, ","),
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateDataInputs(cfg, input); err != nil {
		return err
	}
	if err := validateModelInputs(cfg, input); err != nil {
		return err
	}
	if err := validateOutputInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := validateLogInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("redis connection string must start with redis:// or rediss://")
		}
	}
	return nil
}

// validateDataInputs processes the dataset source and prediction target.
func validateDataInputs(cfg *Config, input *ConfigRawInput) error {
	backend := input.DataBackend
	if backend == "" {
		backend = string(schema.CSVData)
	}
	cfg.DataBackend = schema.DataBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDataBackends[cfg.DataBackend]; !ok {
		return fmt.Errorf("invalid data backend '%s'. must be csv, sqlite, mysql, postgresql", input.DataBackend)
	}

	cfg.DataPath = strings.TrimSpace(input.Data)
	cfg.DataDBConnect = input.DataDBConnect
	cfg.DataTable = input.DataTable
	if cfg.DataTable == "" {
		cfg.DataTable = DefaultDataTable
	}

	switch cfg.DataBackend {
	case schema.CSVData:
		if cfg.DataPath == "" {
			return fmt.Errorf("data must point at a CSV file when data-backend is csv")
		}
	default:
		if err := ValidateTableName(cfg.DataTable); err != nil {
			return err
		}
		if cfg.DataBackend == schema.SQLiteData && cfg.DataDBConnect == "" {
			return fmt.Errorf("data-db-connect must name the SQLite file when data-backend is sqlite")
		}
		if err := ValidateDatabaseConnectionString(cfg.DataBackend.DatabaseFor(), cfg.DataDBConnect); err != nil {
			return fmt.Errorf("data-db-connect: %w", err)
		}
	}

	if input.Year != 0 && (input.Year < minYear || input.Year > maxYear) {
		return fmt.Errorf("year must be 0 or between %d and %d (received %d)", minYear, maxYear, input.Year)
	}
	cfg.PredictionYear = input.Year
	cfg.Teams = ParseTeams(input.Teams)
	cfg.OutcomesPath = strings.TrimSpace(input.Outcomes)
	return nil
}

// validateModelInputs processes the model, resampling and validation settings.
func validateModelInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Bootstrap < 0 || input.Bootstrap > MaxBootstrap {
		return fmt.Errorf("bootstrap must be between 0 and %d (received %d)", MaxBootstrap, input.Bootstrap)
	}
	cfg.Bootstrap = input.Bootstrap

	if input.Confidence <= 0 || input.Confidence >= 1 {
		return fmt.Errorf("confidence must be strictly between 0 and 1 (received %g)", input.Confidence)
	}
	cfg.ConfidenceLevel = input.Confidence

	if input.Trees <= 0 {
		return fmt.Errorf("trees must be greater than 0 (received %d)", input.Trees)
	}
	cfg.Trees = input.Trees

	if input.Seed < 0 {
		return fmt.Errorf("seed must not be negative (received %d)", input.Seed)
	}
	cfg.Seed = uint64(input.Seed)

	if input.MaxDepth < 0 {
		return fmt.Errorf("max-depth must be 0 (unlimited) or positive (received %d)", input.MaxDepth)
	}
	cfg.MaxDepth = input.MaxDepth

	if input.MinLeaf < 1 {
		return fmt.Errorf("min-leaf must be at least 1 (received %d)", input.MinLeaf)
	}
	cfg.MinLeaf = input.MinLeaf

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	foldSpec := input.Folds
	if strings.TrimSpace(foldSpec) == "" {
		foldSpec = DefaultFolds
	}
	folds, err := ParseFolds(foldSpec)
	if err != nil {
		return fmt.Errorf("invalid folds: %w", err)
	}
	cfg.Folds = folds
	cfg.Validate = input.Validate

	cfg.Timeout = 0
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("timeout must not be negative (received %s)", input.Timeout)
		}
		cfg.Timeout = d
	}
	return nil
}

// validateOutputInputs processes output format, file, precision and colors.
func validateOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx, html", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("output format %s is binary and requires --output-file", cfg.Output)
	}
	return nil
}

// validateBackendConfigs validates cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Runs Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return fmt.Errorf("runs-db-connect: %w", err)
	}

	// Cache and runs must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runsPath := cfg.RunsDBConnect
		if runsPath == "" {
			runsPath = GetRunsDBFilePath()
		}
		if cachePath == runsPath {
			return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateLogInputs checks log level and format without installing the logger.
func validateLogInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if cfg.LogFormat != "" && cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseTeams splits a comma-separated team list, normalizing whitespace and
// dropping empty and repeated names while preserving order.
func ParseTeams(s string) []string {
	var teams []string
	seen := make(map[string]struct{})
	for part := range strings.SplitSeq(s, ",") {
		team := schema.NormalizeTeam(part)
		if team == "" {
			continue
		}
		if _, ok := seen[team]; ok {
			continue
		}
		seen[team] = struct{}{}
		teams = append(teams, team)
	}
	return teams
}

// ParseFolds parses a comma-separated list of train_end:test_start-test_end folds.
// A fold written as train_end:year tests a single season.
func ParseFolds(s string) ([]schema.FoldDefinition, error) {
	var folds []schema.FoldDefinition
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		trainStr, window, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("fold %q must look like train_end:test_start-test_end", part)
		}
		trainEnd, err := strconv.Atoi(strings.TrimSpace(trainStr))
		if err != nil {
			return nil, fmt.Errorf("fold %q has a bad train_end: %w", part, err)
		}
		startStr, endStr, ranged := strings.Cut(window, "-")
		testStart, err := strconv.Atoi(strings.TrimSpace(startStr))
		if err != nil {
			return nil, fmt.Errorf("fold %q has a bad test_start: %w", part, err)
		}
		testEnd := testStart
		if ranged {
			testEnd, err = strconv.Atoi(strings.TrimSpace(endStr))
			if err != nil {
				return nil, fmt.Errorf("fold %q has a bad test_end: %w", part, err)
			}
		}
		folds = append(folds, schema.FoldDefinition{TrainEnd: trainEnd, TestStart: testStart, TestEnd: testEnd})
	}
	if len(folds) == 0 {
		return nil, fmt.Errorf("at least one fold is required")
	}
	return folds, nil
}

// RevalidatePrediction applies per-request overrides to a cloned config.
// year 0, empty teams, a negative bootstrap and a zero confidence keep the configured values.
func RevalidatePrediction(cfg *Config, year int, teams string, bootstrap int, confidence float64) error {
	if year != 0 {
		if year < minYear || year > maxYear {
			return fmt.Errorf("year must be between %d and %d (received %d)", minYear, maxYear, year)
		}
		cfg.PredictionYear = year
	}
	if parsed := ParseTeams(teams); len(parsed) > 0 {
		cfg.Teams = parsed
	}
	if bootstrap >= 0 {
		if bootstrap > MaxBootstrap {
			return fmt.Errorf("bootstrap must be between 0 and %d (received %d)", MaxBootstrap, bootstrap)
		}
		cfg.Bootstrap = bootstrap
	}
	if confidence != 0 {
		if confidence < 0 || confidence >= 1 {
			return fmt.Errorf("confidence must be strictly between 0 and 1 (received %g)", confidence)
		}
		cfg.ConfidenceLevel = confidence
	}
	return nil
}

// RevalidateFolds replaces the configured folds when spec is not blank.
func RevalidateFolds(cfg *Config, spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	folds, err := ParseFolds(spec)
	if err != nil {
		return fmt.Errorf("invalid folds: %w", err)
	}
	cfg.Folds = folds
	return nil
}
