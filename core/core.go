// Package core has the prediction pipeline: feature aggregation, trend
// estimation, rank prediction, bootstrap intervals, temporal validation and ranking.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/internal/dataset"
	"github.com/huangsam/leaguerank/internal/outwriter"
	"github.com/huangsam/leaguerank/schema"
)

// ExecutorFunc defines the function signature for the command entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecutePredict runs a batch prediction and prints the report.
// It serves as the main entry point for the 'predict' command.
func ExecutePredict(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	records, err := loadSeasons(ctx, cfg)
	if err != nil {
		return err
	}
	req := NewPredictionRequest(cfg)
	if cfg.OutcomesPath != "" {
		outcomes, err := dataset.LoadOutcomesFile(cfg.OutcomesPath)
		if err != nil {
			return err
		}
		req.Outcomes = outcomes
	}

	report, err := PredictSeason(ctx, records, req, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintPredictionReport(report, cfg, time.Since(start))
}

// ExecuteValidate runs temporal cross-validation over the configured folds.
func ExecuteValidate(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	records, err := loadSeasons(ctx, cfg)
	if err != nil {
		return err
	}
	folds := cfg.Folds
	if len(folds) == 0 {
		folds = DefaultFolds
	}
	req := NewPredictionRequest(cfg)
	report, err := CrossValidate(ctx, records, folds, req.Model, cfg.Workers)
	if err != nil {
		return err
	}
	return outwriter.PrintValidationReport(report, cfg, time.Since(start))
}

// ExecuteForm prints the weighted feature profile and trend of each configured team.
func ExecuteForm(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	start := time.Now()
	if len(cfg.Teams) == 0 {
		return fmt.Errorf("at least one team is required (use --teams)")
	}
	ctx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()

	records, err := loadSeasons(ctx, cfg)
	if err != nil {
		return err
	}
	forms := make([]schema.TeamForm, 0, len(cfg.Teams))
	for _, team := range cfg.Teams {
		form, err := TeamFormReport(records, team, cfg.PredictionYear)
		if err != nil {
			return err
		}
		forms = append(forms, form)
	}
	return outwriter.PrintTeamForms(forms, cfg, time.Since(start))
}

// LoadSeasons reads the configured dataset. Exported for the MCP and HTTP surfaces.
func LoadSeasons(ctx context.Context, cfg *contract.Config) (schema.Seasons, error) {
	return loadSeasons(ctx, cfg)
}

func loadSeasons(ctx context.Context, cfg *contract.Config) (schema.Seasons, error) {
	src, err := dataset.NewSource(cfg)
	if err != nil {
		return nil, err
	}
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", src.Describe(), err)
	}
	first, last := records.Span()
	contract.Logger().WithField("source", src.Describe()).
		WithField("rows", len(records)).
		Debugf("Loaded seasons %d-%d", first, last)
	return records, nil
}

// withTimeout applies the configured deadline; zero means none.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
