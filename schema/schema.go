// Package schema holds the value objects shared by the prediction pipeline,
// the stores and the output writers.
package schema

import (
	"fmt"
	"time"
)

// SeasonRecord is one team's end-of-season league table row.
type SeasonRecord struct {
	Team           string  `json:"team" db:"team"`
	SeasonEndYear  int     `json:"season_end_year" db:"season_end_year"`
	Position       int     `json:"position" db:"position"`
	Played         int     `json:"played" db:"played"`
	Won            float64 `json:"won" db:"won"`
	Drawn          float64 `json:"drawn" db:"drawn"`
	Lost           float64 `json:"lost" db:"lost"`
	GoalsFor       float64 `json:"gf" db:"gf"`
	GoalsAgainst   float64 `json:"ga" db:"ga"`
	GoalDifference float64 `json:"gd" db:"gd"`
	Points         float64 `json:"points" db:"points"`
	Notes          string  `json:"notes,omitempty" db:"notes"`
}

// Stat returns the value of a base statistic. Unknown keys return 0.
func (r SeasonRecord) Stat(key StatKey) float64 {
	switch key {
	case StatPoints:
		return r.Points
	case StatGF:
		return r.GoalsFor
	case StatGA:
		return r.GoalsAgainst
	case StatGD:
		return r.GoalDifference
	case StatWon:
		return r.Won
	case StatDrawn:
		return r.Drawn
	case StatLost:
		return r.Lost
	default:
		return 0
	}
}

// Features returns the base statistics in BaseStats order.
func (r SeasonRecord) Features() []float64 {
	out := make([]float64, len(BaseStats))
	for i, key := range BaseStats {
		out[i] = r.Stat(key)
	}
	return out
}

// WeightedFeatureVector is a team's recency-weighted profile for one reference year.
type WeightedFeatureVector struct {
	Team          string              `json:"team"`
	ReferenceYear int                 `json:"reference_year"`
	Seasons       int                 `json:"seasons"`
	Stats         map[StatKey]float64 `json:"stats"`
	RecentForm    float64             `json:"recent_form_score"`
	Trend         FormTrend           `json:"trend"`
}

// BaseVector returns the weighted statistics in BaseStats order.
// The recent form score is deliberately absent.
func (v WeightedFeatureVector) BaseVector() []float64 {
	out := make([]float64, len(BaseStats))
	for i, key := range BaseStats {
		out[i] = v.Stats[key]
	}
	return out
}

// FormTrend is the outcome of a trend fit over a team's latest seasons.
// An undefined trend contributes a score of 0.
type FormTrend struct {
	Defined       bool    `json:"defined"`
	Value         float64 `json:"value"`
	PointsSlope   float64 `json:"points_slope"`
	PositionSlope float64 `json:"position_slope"`
	Observations  int     `json:"observations"`
}

// Score maps the trend to the recent form score.
func (f FormTrend) Score() float64 {
	if !f.Defined {
		return 0
	}
	return f.Value
}

// PointPrediction is a single model estimate for a team.
type PointPrediction struct {
	Team             string  `json:"team"`
	RawPosition      float64 `json:"raw_position"`
	AdjustedPosition float64 `json:"adjusted_position"`
	RecentForm       float64 `json:"recent_form_score"`
	Adjustment       float64 `json:"adjustment"`
}

// ConfidenceInterval summarizes the bootstrap distribution of a team's adjusted position.
type ConfidenceInterval struct {
	Team            string  `json:"team"`
	PointEstimate   float64 `json:"point_estimate"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
	StandardError   float64 `json:"standard_error"`
	ConfidenceLevel float64 `json:"confidence_level"`
	Samples         int     `json:"samples"`
	Iterations      int     `json:"iterations"`
}

// Width returns the interval width.
func (ci ConfidenceInterval) Width() float64 {
	return ci.UpperBound - ci.LowerBound
}

// Contains reports whether a value falls inside the closed interval.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.LowerBound && v <= ci.UpperBound
}

// FoldDefinition is one chronological train/test split.
type FoldDefinition struct {
	TrainEnd  int `json:"train_end"`
	TestStart int `json:"test_start"`
	TestEnd   int `json:"test_end"`
}

// String renders the fold as train_end:test_start-test_end.
func (f FoldDefinition) String() string {
	return fmt.Sprintf("%d:%d-%d", f.TrainEnd, f.TestStart, f.TestEnd)
}

// ValidationFold is the scored result of one fold. Score is nil when undefined.
type ValidationFold struct {
	FoldDefinition
	TrainRows   int      `json:"train_rows"`
	TestRows    int      `json:"test_rows"`
	Predictions int      `json:"predictions"`
	Score       *float64 `json:"score"`
}

// ValidationReport aggregates all folds of a temporal cross-validation.
type ValidationReport struct {
	Folds       []ValidationFold `json:"folds"`
	ScoredFolds int              `json:"scored_folds"`
	MeanScore   float64          `json:"mean_score"`
}

// ActualOutcome is the observed final position of a team.
type ActualOutcome struct {
	Team     string `json:"team"`
	Position int    `json:"position"`
}

// RankedPrediction is a team with its published integer rank.
type RankedPrediction struct {
	Team             string  `json:"team"`
	PredictedRank    int     `json:"predicted_rank"`
	AdjustedPosition float64 `json:"adjusted_position"`
}

// RankedOutcome merges a ranked prediction with the actual result.
type RankedOutcome struct {
	RankedPrediction
	ActualRank int `json:"actual_rank"`
	Difference int `json:"difference"`
}

// RankingResult holds the full ranking plus its split against actual outcomes.
type RankingResult struct {
	Ranked    []RankedPrediction `json:"ranked"`
	Outcomes  []RankedOutcome    `json:"outcomes"`
	Unmatched []RankedPrediction `json:"unmatched"`
}

// TeamFailure records why a team was skipped during a batch run.
type TeamFailure struct {
	Team   string `json:"team"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// FormDetail describes a team whose recent form moved its prediction noticeably.
type FormDetail struct {
	Team       string        `json:"team"`
	FormScore  float64       `json:"form_score"`
	Direction  FormDirection `json:"direction"`
	Adjustment float64       `json:"adjustment"`
}

// IntervalWidth pairs a team with its interval width.
type IntervalWidth struct {
	Team  string  `json:"team"`
	Width float64 `json:"width"`
}

// PredictionError is a ranking miss.
type PredictionError struct {
	Team           string `json:"team"`
	Difference     int    `json:"difference"`
	WithinInterval bool   `json:"within_interval"`
}

// ReportSummary holds the retrospective accuracy and coverage metrics.
type ReportSummary struct {
	Matched         int               `json:"matched"`
	RSquared        float64           `json:"r_squared"`
	WithinInterval  int               `json:"within_interval"`
	CoveragePercent float64           `json:"coverage_percent"`
	AverageWidth    float64           `json:"average_width"`
	Narrowest       []IntervalWidth   `json:"narrowest"`
	Widest          []IntervalWidth   `json:"widest"`
	BiggestErrors   []PredictionError `json:"biggest_errors"`
	FormDetails     []FormDetail      `json:"form_details"`
}

// PredictionReport is everything produced by one prediction run.
type PredictionReport struct {
	RunID           string                        `json:"run_id"`
	PredictionYear  int                           `json:"prediction_year"`
	ConfidenceLevel float64                       `json:"confidence_level"`
	Bootstrap       int                           `json:"bootstrap"`
	TrainingRows    int                           `json:"training_rows"`
	Predictions     []PointPrediction             `json:"predictions"`
	Intervals       map[string]ConfidenceInterval `json:"intervals"`
	Ranking         RankingResult                 `json:"ranking"`
	Failures        []TeamFailure                 `json:"failures"`
	Validation      *ValidationReport             `json:"validation,omitempty"`
	Summary         ReportSummary                 `json:"summary"`
	Duration        time.Duration                 `json:"duration_ns"`
}

// TeamForm is the feature profile reported by the form command.
type TeamForm struct {
	Vector WeightedFeatureVector `json:"vector"`
	Trend  FormTrend             `json:"trend"`
}
