package core

import "errors"

var (
	// ErrInsufficientHistory is returned when a team has no season rows before the reference year.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrEmptyTrainingSet is returned when no rows precede the training cutoff.
	// It aborts the whole prediction run.
	ErrEmptyTrainingSet = errors.New("empty training set")

	// ErrInsufficientBootstrapSamples is returned when no bootstrap iteration produced
	// a prediction for a team. It only affects that team's interval.
	ErrInsufficientBootstrapSamples = errors.New("insufficient bootstrap samples")

	// ErrInvalidFolds is returned for fold schedules that are empty, inverted or overlapping.
	ErrInvalidFolds = errors.New("invalid fold definitions")

	// ErrInvalidConfidenceLevel is returned for confidence levels outside (0, 1).
	ErrInvalidConfidenceLevel = errors.New("confidence level must be strictly between 0 and 1")
)

// Failure stages reported in schema.TeamFailure.
const (
	StageFeatures   = "features"
	StagePredict    = "predict"
	StageConfidence = "confidence"
)
