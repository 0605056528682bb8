package contract

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	logger   = newLogger()
	loggerMu sync.RWMutex
)

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return log
}

// InitLogger configures the process-wide logger. Output always goes to stderr
// so stdout stays reserved for reports and the MCP stdio transport.
func InitLogger(level, format string) (*logrus.Logger, error) {
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", level, err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(parsed)

	switch strings.ToLower(format) {
	case "", LogFormatText:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	case LogFormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		return nil, fmt.Errorf("invalid log format '%s'. must be text, json", format)
	}

	loggerMu.Lock()
	logger = log
	loggerMu.Unlock()
	return log, nil
}

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger swaps the process-wide logger. Tests use it to capture output.
func SetLogger(log *logrus.Logger) {
	loggerMu.Lock()
	logger = log
	loggerMu.Unlock()
}

// WithRun returns a log entry tagged with a run id.
func WithRun(runID string) *logrus.Entry {
	return Logger().WithField("run_id", runID)
}
