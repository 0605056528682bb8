package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"github.com/sirupsen/logrus"
)

// PredictionRequest describes one batch prediction run.
type PredictionRequest struct {
	Year       int      // 0 = the season after the latest one in the data
	Teams      []string // empty = teams of Year, else teams of Year-1
	Outcomes   []schema.ActualOutcome
	Confidence ConfidenceOptions // Bootstrap 0 disables intervals
	Model      ModelOptions
	Workers    int
	Validate   bool
	Folds      []schema.FoldDefinition // empty = DefaultFolds
	RunID      string
	Params     map[string]any // recorded with the run
}

// NewPredictionRequest builds a request from the validated configuration.
func NewPredictionRequest(cfg *contract.Config) PredictionRequest {
	model := ModelOptions{
		Trees:    cfg.Trees,
		Seed:     cfg.Seed,
		MaxDepth: cfg.MaxDepth,
		MinLeaf:  cfg.MinLeaf,
		Workers:  cfg.Workers,
	}
	return PredictionRequest{
		Year:  cfg.PredictionYear,
		Teams: cfg.Teams,
		Confidence: ConfidenceOptions{
			Bootstrap: cfg.Bootstrap,
			Level:     cfg.ConfidenceLevel,
			Model:     model,
			Workers:   cfg.Workers,
		},
		Model:    model,
		Workers:  cfg.Workers,
		Validate: cfg.Validate,
		Folds:    cfg.Folds,
		Params:   cfg.ConfigParams(),
	}
}

// ResolvePredictionYear returns year, or the season after the latest one in records.
func ResolvePredictionYear(records schema.Seasons, year int) int {
	if year != 0 {
		return year
	}
	_, last := records.Span()
	return last + 1
}

// ResolveTeams picks the teams to predict: the requested ones, else those that
// played in year, else those that played the season before.
func ResolveTeams(records schema.Seasons, year int, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	if teams := records.Season(year).Teams(); len(teams) > 0 {
		return teams
	}
	return records.Season(year - 1).Teams()
}

// ResolveOutcomes returns the requested outcomes, else the final table of year
// when the data already holds it.
func ResolveOutcomes(records schema.Seasons, year int, requested []schema.ActualOutcome) []schema.ActualOutcome {
	if len(requested) > 0 {
		return requested
	}
	season := records.Season(year)
	out := make([]schema.ActualOutcome, 0, len(season))
	for _, r := range season {
		out = append(out, schema.ActualOutcome{Team: r.Team, Position: r.Position})
	}
	return out
}

// PredictSeason runs the full batch pipeline: train, predict every team, bound
// each prediction with a bootstrap interval, rank, compare against outcomes and
// optionally cross-validate. Per-team problems are reported as failures; an
// empty training set or a cancelled context aborts the run.
func PredictSeason(ctx context.Context, records schema.Seasons, req PredictionRequest, mgr contract.CacheManager) (schema.PredictionReport, error) {
	start := time.Now()

	year := ResolvePredictionYear(records, req.Year)
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	// Add cache manager and run ID to context for use in worker goroutines
	ctx = contextWithCacheManager(ctx, mgr)
	ctx = withRunID(ctx, runID)
	log := contract.WithRun(runID).WithField("year", year)

	predictor, err := TrainPredictor(ctx, records, year, req.Model)
	if err != nil {
		return schema.PredictionReport{}, err
	}
	historical := records.Before(year)
	teams := ResolveTeams(records, year, req.Teams)
	outcomes := ResolveOutcomes(records, year, req.Outcomes)
	log.WithFields(logrus.Fields{
		"training_rows": predictor.TrainingRows(),
		"teams":         len(teams),
		"outcomes":      len(outcomes),
	}).Info("Starting prediction run")

	tracker := newRunTracker(mgr, runID)
	tracker.begin(start, year, req.Params)

	report := schema.PredictionReport{
		RunID:           runID,
		PredictionYear:  year,
		ConfidenceLevel: req.Confidence.Level,
		Bootstrap:       req.Confidence.Bootstrap,
		TrainingRows:    predictor.TrainingRows(),
		Predictions:     make([]schema.PointPrediction, 0, len(teams)),
		Intervals:       map[string]schema.ConfidenceInterval{},
		Failures:        []schema.TeamFailure{},
	}

	// --- 1. Point predictions ---
	for _, team := range teams {
		teamLog := log.WithField("team", team)
		vector, err := AggregateFeatures(historical.ForTeam(team), year)
		if err != nil {
			teamLog.WithError(err).Warn("Skipping team")
			report.Failures = append(report.Failures, teamFailure(team, StageFeatures, err))
			continue
		}
		pred, err := predictor.Predict(vector)
		if err != nil {
			teamLog.WithError(err).Warn("Skipping team")
			report.Failures = append(report.Failures, teamFailure(team, StagePredict, err))
			continue
		}
		teamLog.WithFields(logrus.Fields{
			"raw":      pred.RawPosition,
			"adjusted": pred.AdjustedPosition,
			"form":     pred.RecentForm,
		}).Debug("Predicted team")
		report.Predictions = append(report.Predictions, pred)
	}

	// --- 2. Confidence intervals ---
	if req.Confidence.Bootstrap > 0 && len(report.Predictions) > 0 {
		predicted := make([]string, len(report.Predictions))
		for i, p := range report.Predictions {
			predicted[i] = p.Team
		}
		intervals, failures, err := cachedConfidenceBatch(ctx, records, predicted, year, req.Confidence)
		if err != nil {
			return schema.PredictionReport{}, fmt.Errorf("confidence intervals: %w", err)
		}
		report.Intervals = intervals
		for _, team := range predicted {
			if ferr, ok := failures[team]; ok {
				log.WithField("team", team).WithError(ferr).Warn("No interval for team")
				report.Failures = append(report.Failures, teamFailure(team, StageConfidence, ferr))
			}
		}
	}

	// --- 3. Ranking and summary ---
	report.Ranking = AssembleRankings(report.Predictions, outcomes)
	report.Summary = Summarize(report)

	// --- 4. Optional temporal validation ---
	if req.Validate {
		folds := req.Folds
		if len(folds) == 0 {
			folds = DefaultFolds
		}
		validation, err := CrossValidate(ctx, records, folds, req.Model, req.Workers)
		if err != nil {
			return schema.PredictionReport{}, fmt.Errorf("cross validation: %w", err)
		}
		report.Validation = &validation
	}

	// --- 5. Run tracking ---
	tracker.recordReport(report)
	var r2 *float64
	if report.Summary.Matched >= 2 {
		v := report.Summary.RSquared
		r2 = &v
	}
	tracker.end(time.Now(), len(teams), len(teams)-len(report.Predictions), r2)

	report.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"predicted": len(report.Predictions),
		"failures":  len(report.Failures),
		"duration":  report.Duration.String(),
	}).Info("Finished prediction run")
	return report, nil
}

// TeamFormReport aggregates one team's profile for year from rows before it.
func TeamFormReport(records schema.Seasons, team string, year int) (schema.TeamForm, error) {
	year = ResolvePredictionYear(records, year)
	vector, err := AggregateFeatures(records.Before(year).ForTeam(schema.NormalizeTeam(team)), year)
	if err != nil {
		return schema.TeamForm{}, err
	}
	return schema.TeamForm{Vector: vector, Trend: vector.Trend}, nil
}

func teamFailure(team, stage string, err error) schema.TeamFailure {
	return schema.TeamFailure{Team: team, Stage: stage, Reason: err.Error()}
}
