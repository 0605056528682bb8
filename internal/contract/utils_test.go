package contract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/leaguerank/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		label schema.AccuracyLabel
	}{
		{"close", schema.AccuracyClose},
		{"near", schema.AccuracyNear},
		{"miss", schema.AccuracyMiss},
		{"unknown", schema.AccuracyLabel("Other")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColorLabel(tt.label)
			assert.Contains(t, result, string(tt.label))
		})
	}
}

func TestGetColorDirection(t *testing.T) {
	for _, d := range []schema.FormDirection{schema.FormImproving, schema.FormDeclining, schema.FormStable} {
		assert.Contains(t, GetColorDirection(d), string(d))
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("path creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		file, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.FileExists(t, path)
	})
}

func TestDBFilePaths(t *testing.T) {
	cache := GetCacheDBFilePath()
	runs := GetRunsDBFilePath()
	assert.True(t, strings.HasSuffix(cache, ".leaguerank_cache.db"))
	assert.True(t, strings.HasSuffix(runs, ".leaguerank_runs.db"))
	assert.NotEqual(t, cache, runs)
}

func TestValidateTableName(t *testing.T) {
	valid := []string{"season_records", "_tmp", "T1"}
	invalid := []string{"", "1abc", "seasons;", "a b", "a-b", `x"y`}
	for _, name := range valid {
		assert.NoError(t, ValidateTableName(name), name)
	}
	for _, name := range invalid {
		assert.Error(t, ValidateTableName(name), name)
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`runs`", QuoteTableName("runs", schema.MySQLBackend))
	assert.Equal(t, `"runs"`, QuoteTableName("runs", schema.PostgreSQLBackend))
	assert.Equal(t, `"runs"`, QuoteTableName("runs", schema.SQLiteBackend))
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"fits", "Arsenal", 10, "Arsenal"},
		{"exact", "Arsenal", 7, "Arsenal"},
		{"truncated", "Nottingham Forest", 10, "Notting..."},
		{"too narrow to truncate", "Nottingham Forest", 3, "Nottingham Forest"},
		{"unicode", "Málaga Club de Fútbol", 8, "Málag..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("perhaps")
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	log, err := InitLogger("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Same(t, log, Logger())

	log, err = InitLogger("", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	_, err = InitLogger("loud", "text")
	assert.Error(t, err)
	_, err = InitLogger("info", "xml")
	assert.Error(t, err)
}

func TestLogWarnAndWithRun(t *testing.T) {
	original := Logger()
	t.Cleanup(func() { SetLogger(original) })

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	SetLogger(log)

	LogWarn("cache write failed", errors.New("disk full"))
	WithRun("abc-123").Info("run started")

	out := buf.String()
	assert.Contains(t, out, `"msg":"cache write failed"`)
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"run_id":"abc-123"`)
}
