package core

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/huangsam/leaguerank/core/algo"
	"github.com/huangsam/leaguerank/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Bootstrap defaults.
const (
	DefaultBootstrapSamples = 1000
	DefaultConfidenceLevel  = 0.95
)

// bootstrapStream is the PCG stream shared by all iterations; the seed is the iteration index.
const bootstrapStream = 0x9e3779b97f4a7c15

// ConfidenceOptions configures bootstrap interval estimation.
type ConfidenceOptions struct {
	Bootstrap int     // resampling iterations
	Level     float64 // confidence level in (0, 1)
	Model     ModelOptions
	Workers   int // iterations run concurrently
}

// DefaultConfidenceOptions returns 1000 iterations at 95% with the default model.
func DefaultConfidenceOptions() ConfidenceOptions {
	return ConfidenceOptions{
		Bootstrap: DefaultBootstrapSamples,
		Level:     DefaultConfidenceLevel,
		Model:     DefaultModelOptions(),
		Workers:   1,
	}
}

// EstimateConfidence produces a bootstrap interval for one team's adjusted position.
// Only rows before predictionYear take part in resampling.
func EstimateConfidence(ctx context.Context, records schema.Seasons, team string, predictionYear int, opts ConfidenceOptions) (schema.ConfidenceInterval, error) {
	intervals, failures, err := EstimateConfidenceBatch(ctx, records, []string{team}, predictionYear, opts)
	if err != nil {
		return schema.ConfidenceInterval{}, err
	}
	if err := failures[team]; err != nil {
		return schema.ConfidenceInterval{}, err
	}
	return intervals[team], nil
}

// EstimateConfidenceBatch runs the bootstrap once and reuses every iteration's
// private model for all teams. Each team's interval is identical to what
// EstimateConfidence returns for it alone. Teams that never appear in a resample
// are reported in the failure map instead of the interval map.
func EstimateConfidenceBatch(ctx context.Context, records schema.Seasons, teams []string, predictionYear int, opts ConfidenceOptions) (map[string]schema.ConfidenceInterval, map[string]error, error) {
	if opts.Bootstrap <= 0 {
		return nil, nil, fmt.Errorf("%w: bootstrap count is %d", ErrInsufficientBootstrapSamples, opts.Bootstrap)
	}
	if opts.Level <= 0 || opts.Level >= 1 {
		return nil, nil, fmt.Errorf("%w: got %g", ErrInvalidConfidenceLevel, opts.Level)
	}
	historical := records.Before(predictionYear)
	if len(historical) == 0 {
		return nil, nil, fmt.Errorf("%w: no seasons before %d", ErrEmptyTrainingSet, predictionYear)
	}

	// Parallelism lives at the iteration level.
	model := opts.Model
	model.Workers = 1

	log := loggerFromContext(ctx).WithFields(logrus.Fields{
		"year":       predictionYear,
		"teams":      len(teams),
		"iterations": opts.Bootstrap,
	})
	log.Debug("Starting bootstrap")

	samples := make([]map[string]float64, opts.Bootstrap)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	for i := range opts.Bootstrap {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			preds, err := bootstrapIteration(gctx, historical, teams, predictionYear, i, model)
			if err != nil {
				return fmt.Errorf("bootstrap iteration %d: %w", i, err)
			}
			samples[i] = preds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	intervals := make(map[string]schema.ConfidenceInterval, len(teams))
	failures := make(map[string]error)
	for _, team := range teams {
		var collected []float64
		for _, sample := range samples {
			if v, ok := sample[team]; ok {
				collected = append(collected, v)
			}
		}
		if len(collected) == 0 {
			failures[team] = fmt.Errorf("%w: team %q absent from all %d resamples", ErrInsufficientBootstrapSamples, team, opts.Bootstrap)
			continue
		}
		intervals[team] = summarizeBootstrap(team, collected, opts.Level, opts.Bootstrap)
	}
	log.WithField("failed", len(failures)).Debug("Finished bootstrap")
	return intervals, failures, nil
}

// bootstrapIteration draws one resample using only its own seed, fits a private
// model on it, and predicts every team that made it into the draw.
func bootstrapIteration(ctx context.Context, historical schema.Seasons, teams []string, predictionYear, seed int, model ModelOptions) (map[string]float64, error) {
	rng := rand.New(rand.NewPCG(uint64(seed), bootstrapStream))
	n := len(historical)
	sample := make(schema.Seasons, n)
	for j := range sample {
		sample[j] = historical[rng.IntN(n)]
	}

	predictor, err := fitPredictor(ctx, sample, model)
	if err != nil {
		return nil, err
	}

	byTeam := make(map[string]schema.Seasons)
	for _, r := range sample {
		byTeam[r.Team] = append(byTeam[r.Team], r)
	}

	out := make(map[string]float64, len(teams))
	for _, team := range teams {
		rows := byTeam[team]
		if len(rows) == 0 {
			continue
		}
		vector, err := AggregateFeatures(rows, predictionYear)
		if err != nil {
			continue
		}
		adjusted, err := predictor.PredictRank(vector)
		if err != nil {
			return nil, err
		}
		out[team] = adjusted
	}
	return out, nil
}

// summarizeBootstrap reduces collected predictions to an interval.
func summarizeBootstrap(team string, collected []float64, level float64, iterations int) schema.ConfidenceInterval {
	alpha := 1 - level
	return schema.ConfidenceInterval{
		Team:            team,
		PointEstimate:   algo.Mean(collected),
		LowerBound:      algo.Percentile(collected, alpha/2),
		UpperBound:      algo.Percentile(collected, 1-alpha/2),
		StandardError:   algo.SampleStdDev(collected),
		ConfidenceLevel: level,
		Samples:         len(collected),
		Iterations:      iterations,
	}
}
