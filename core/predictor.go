package core

import (
	"context"
	"fmt"

	"github.com/huangsam/leaguerank/core/algo"
	"github.com/huangsam/leaguerank/schema"
)

// Position bounds and the momentum adjustment factor.
const (
	MinPosition          = 1.0
	MaxPosition          = 20.0
	FormAdjustmentFactor = 0.05
)

// ModelOptions configures the regression forest behind a RankPredictor.
type ModelOptions struct {
	Trees    int
	Seed     uint64
	MaxDepth int
	MinLeaf  int
	Workers  int // trees grown concurrently inside one fit
}

// DefaultModelOptions returns 100 trees seeded with 42.
func DefaultModelOptions() ModelOptions {
	return ModelOptions{
		Trees:   algo.DefaultTrees,
		Seed:    algo.DefaultSeed,
		MinLeaf: 1,
		Workers: 1,
	}
}

func (o ModelOptions) forestConfig() algo.ForestConfig {
	cfg := algo.DefaultForestConfig()
	if o.Trees > 0 {
		cfg.Trees = o.Trees
	}
	cfg.Seed = o.Seed
	cfg.MaxDepth = o.MaxDepth
	if o.MinLeaf > 0 {
		cfg.MinSamplesLeaf = o.MinLeaf
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
	return cfg
}

// RankPredictor maps base features to a final league position. Each instance owns
// its model and is never retrained, so one instance can be shared by readers.
type RankPredictor struct {
	forest       *algo.Forest
	trainingRows int
}

// TrainPredictor fits a predictor on every row that ended before cutoffYear.
func TrainPredictor(ctx context.Context, records schema.Seasons, cutoffYear int, opts ModelOptions) (*RankPredictor, error) {
	training := records.Before(cutoffYear)
	if len(training) == 0 {
		return nil, fmt.Errorf("%w: no seasons before %d", ErrEmptyTrainingSet, cutoffYear)
	}
	return fitPredictor(ctx, training, opts)
}

// fitPredictor fits on exactly the given rows.
func fitPredictor(ctx context.Context, rows schema.Seasons, opts ModelOptions) (*RankPredictor, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		x[i] = r.Features()
		y[i] = float64(r.Position)
	}
	forest, err := algo.FitForest(ctx, x, y, opts.forestConfig())
	if err != nil {
		return nil, fmt.Errorf("fit rank model: %w", err)
	}
	return &RankPredictor{forest: forest, trainingRows: len(rows)}, nil
}

// TrainingRows returns how many rows the model was fit on.
func (p *RankPredictor) TrainingRows() int {
	return p.trainingRows
}

// Predict returns the raw and adjusted position for a feature vector. Only the
// base statistics reach the model; recent form is applied afterwards.
func (p *RankPredictor) Predict(v schema.WeightedFeatureVector) (schema.PointPrediction, error) {
	raw, err := p.forest.Predict(v.BaseVector())
	if err != nil {
		return schema.PointPrediction{}, err
	}
	adjustment := -FormAdjustmentFactor * v.RecentForm
	return schema.PointPrediction{
		Team:             v.Team,
		RawPosition:      raw,
		AdjustedPosition: AdjustPosition(raw, v.RecentForm),
		RecentForm:       v.RecentForm,
		Adjustment:       adjustment,
	}, nil
}

// PredictRank returns only the adjusted position.
func (p *RankPredictor) PredictRank(v schema.WeightedFeatureVector) (float64, error) {
	pred, err := p.Predict(v)
	if err != nil {
		return 0, err
	}
	return pred.AdjustedPosition, nil
}

// AdjustPosition applies the form adjustment and clamps to [MinPosition, MaxPosition].
func AdjustPosition(raw, recentForm float64) float64 {
	return algo.Clamp(raw-FormAdjustmentFactor*recentForm, MinPosition, MaxPosition)
}
