// Package dataset loads the historical league tables from files and SQL tables.
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
)

// FileSource reads seasons from a CSV or XLSX file chosen by extension.
type FileSource struct {
	Path string
}

var _ contract.SeasonSource = &FileSource{} // Compile-time check

// Load implements the SeasonSource interface.
func (s *FileSource) Load(ctx context.Context) (schema.Seasons, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if isWorkbook(s.Path) {
		return LoadXLSX(s.Path)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadCSV(f)
}

// Describe implements the SeasonSource interface.
func (s *FileSource) Describe() string {
	return "file " + s.Path
}

// NewSource returns the season source selected by the configuration.
func NewSource(cfg *contract.Config) (contract.SeasonSource, error) {
	switch cfg.DataBackend {
	case schema.CSVData, "":
		return &FileSource{Path: cfg.DataPath}, nil
	case schema.SQLiteData, schema.MySQLData, schema.PostgreSQLData:
		return &SQLSource{
			Backend: cfg.DataBackend.DatabaseFor(),
			ConnStr: cfg.DataDBConnect,
			Table:   cfg.DataTable,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}

func isWorkbook(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}
