// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WritePrediction prints a prediction report using the configured output format.
func (ow *OutWriter) WritePrediction(report schema.PredictionReport, cfg *contract.Config, duration time.Duration) error {
	return PrintPredictionReport(report, cfg, duration)
}

// WriteValidation prints a cross-validation report using the configured output format.
func (ow *OutWriter) WriteValidation(report schema.ValidationReport, cfg *contract.Config, duration time.Duration) error {
	return PrintValidationReport(report, cfg, duration)
}

// WriteForms prints team form profiles using the configured output format.
func (ow *OutWriter) WriteForms(forms []schema.TeamForm, cfg *contract.Config, duration time.Duration) error {
	return PrintTeamForms(forms, cfg, duration)
}

// GetMaxTableNameWidth calculates the maximum width for team names in table output
// based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Actual + Diff + Label + Adjusted + Form
	baseWidth := 60
	if cfg.Bootstrap > 0 {
		baseWidth += 30 // interval bounds and width
	}
	baseWidth += 20 // borders and padding

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 30 {
		return 30
	}
	return available
}
