package core

import (
	"context"
	"fmt"

	"github.com/huangsam/leaguerank/core/algo"
	"github.com/huangsam/leaguerank/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultFolds is the chronological schedule used when none is configured.
var DefaultFolds = []schema.FoldDefinition{
	{TrainEnd: 2013, TestStart: 2014, TestEnd: 2016},
	{TrainEnd: 2016, TestStart: 2017, TestEnd: 2019},
	{TrainEnd: 2019, TestStart: 2020, TestEnd: 2023},
}

// ValidateFolds checks that every fold tests strictly after it trains and that
// the test windows move forward in time without overlapping.
func ValidateFolds(folds []schema.FoldDefinition) error {
	if len(folds) == 0 {
		return fmt.Errorf("%w: no folds", ErrInvalidFolds)
	}
	for i, f := range folds {
		if f.TestStart <= f.TrainEnd {
			return fmt.Errorf("%w: fold %s tests at or before its training end", ErrInvalidFolds, f)
		}
		if f.TestEnd < f.TestStart {
			return fmt.Errorf("%w: fold %s has an inverted test window", ErrInvalidFolds, f)
		}
		if i == 0 {
			continue
		}
		prev := folds[i-1]
		if f.TrainEnd <= prev.TrainEnd || f.TestStart <= prev.TestEnd {
			return fmt.Errorf("%w: fold %s overlaps or precedes fold %s", ErrInvalidFolds, f, prev)
		}
	}
	return nil
}

// CrossValidate scores the model on each fold and averages the defined scores.
// Folds run concurrently with up to workers at a time; each owns its model.
func CrossValidate(ctx context.Context, records schema.Seasons, folds []schema.FoldDefinition, opts ModelOptions, workers int) (schema.ValidationReport, error) {
	if err := ValidateFolds(folds); err != nil {
		return schema.ValidationReport{}, err
	}

	results := make([]schema.ValidationFold, len(folds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, fold := range folds {
		g.Go(func() error {
			res, err := validateFold(gctx, records, fold, opts)
			if err != nil {
				return fmt.Errorf("fold %s: %w", fold, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return schema.ValidationReport{}, err
	}

	report := schema.ValidationReport{Folds: results}
	var scores []float64
	for _, res := range results {
		if res.Score != nil {
			scores = append(scores, *res.Score)
		}
	}
	report.ScoredFolds = len(scores)
	report.MeanScore = algo.Mean(scores)
	return report, nil
}

// validateFold trains on rows up to TrainEnd and predicts every test row whose
// team has training history. Features come from training rows only, referenced
// to the test row's season.
func validateFold(ctx context.Context, records schema.Seasons, fold schema.FoldDefinition, opts ModelOptions) (schema.ValidationFold, error) {
	train := records.Through(fold.TrainEnd)
	test := records.Between(fold.TestStart, fold.TestEnd)
	result := schema.ValidationFold{
		FoldDefinition: fold,
		TrainRows:      len(train),
		TestRows:       len(test),
	}
	log := loggerFromContext(ctx).WithFields(logrus.Fields{"fold": fold.String(), "train_rows": len(train), "test_rows": len(test)})
	if len(train) == 0 || len(test) == 0 {
		log.Debug("Skipping fold without data")
		return result, nil
	}

	predictor, err := fitPredictor(ctx, train, opts)
	if err != nil {
		return result, err
	}

	type vectorKey struct {
		team string
		year int
	}
	vectors := make(map[vectorKey]schema.WeightedFeatureVector)

	var predicted, actual []float64
	for _, team := range test.Teams() {
		history := train.ForTeam(team)
		if len(history) == 0 {
			continue
		}
		for _, row := range test.ForTeam(team) {
			key := vectorKey{team, row.SeasonEndYear}
			vector, ok := vectors[key]
			if !ok {
				vector, err = AggregateFeatures(history, row.SeasonEndYear)
				if err != nil {
					continue
				}
				vectors[key] = vector
			}
			adjusted, err := predictor.PredictRank(vector)
			if err != nil {
				return result, err
			}
			predicted = append(predicted, adjusted)
			actual = append(actual, float64(row.Position))
		}
	}

	result.Predictions = len(predicted)
	if score, ok := algo.RSquared(actual, predicted); ok {
		result.Score = &score
		log.WithField("score", score).Debug("Scored fold")
	} else {
		log.Debug("Fold has too few predictions to score")
	}
	return result, nil
}
