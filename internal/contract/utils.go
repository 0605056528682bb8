package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/leaguerank/schema"
)

// Color variables for console output.
var (
	CloseColor     = color.New(color.FgGreen, color.Bold) // prediction within one place
	NearColor      = color.New(color.FgYellow)            // within two places
	MissColor      = color.New(color.FgRed, color.Bold)   // further off
	ImprovingColor = color.New(color.FgCyan)
	DecliningColor = color.New(color.FgMagenta)
)

// GetColorLabel returns a colored accuracy label for console output (table).
func GetColorLabel(label schema.AccuracyLabel) string {
	text := string(label)
	switch label {
	case schema.AccuracyClose:
		return CloseColor.Sprint(text)
	case schema.AccuracyNear:
		return NearColor.Sprint(text)
	case schema.AccuracyMiss:
		return MissColor.Sprint(text)
	default:
		return text
	}
}

// GetColorDirection returns a colored form direction for console output.
func GetColorDirection(direction schema.FormDirection) string {
	text := string(direction)
	switch direction {
	case schema.FormImproving:
		return ImprovingColor.Sprint(text)
	case schema.FormDeclining:
		return DecliningColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	Logger().WithError(err).Fatal(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	Logger().WithError(err).Warn(msg)
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the interval cache.
func GetCacheDBFilePath() string {
	return homeFile(".leaguerank_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for prediction run storage.
func GetRunsDBFilePath() string {
	return homeFile(".leaguerank_runs.db")
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateTableName rejects identifiers that cannot be safely interpolated into SQL.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s", name)
	}
	return nil
}

// QuoteTableName returns the table name quoted for the given backend.
func QuoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// TruncateName truncates a team name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
