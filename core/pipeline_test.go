package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/leaguerank/internal/iocache"
	"github.com/huangsam/leaguerank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// noStores returns a manager with caching and run tracking disabled.
func noStores() *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetIntervalStore").Return(nil).Maybe()
	mgr.On("GetRunStore").Return(nil).Maybe()
	return mgr
}

func fastRequest(year int) PredictionRequest {
	return PredictionRequest{
		Year:       year,
		Confidence: fastConfidence(6),
		Model:      fastModel(),
		Workers:    2,
	}
}

func TestResolvePredictionYear(t *testing.T) {
	records := leagueFixture(2010, 2021)
	assert.Equal(t, 2022, ResolvePredictionYear(records, 0))
	assert.Equal(t, 2015, ResolvePredictionYear(records, 2015))
	assert.Equal(t, 1, ResolvePredictionYear(nil, 0))
}

func TestResolveTeams(t *testing.T) {
	records := leagueFixture(2010, 2021)
	records = append(records, seasonRow("Promoted FC", 2021, 7))

	assert.Equal(t, []string{"Leeds United"}, ResolveTeams(records, 2022, []string{"Leeds United"}))
	assert.Equal(t, fixtureTeams, ResolveTeams(records, 2015, nil))
	// No 2022 table yet, so the 2021 clubs are predicted
	assert.Equal(t, append(append([]string{}, fixtureTeams...), "Promoted FC"), ResolveTeams(records, 2022, nil))
	assert.Empty(t, ResolveTeams(records, 2030, nil))
}

func TestResolveOutcomes(t *testing.T) {
	records := leagueFixture(2010, 2021)
	given := []schema.ActualOutcome{{Team: "Arsenal", Position: 4}}
	assert.Equal(t, given, ResolveOutcomes(records, 2021, given))

	outcomes := ResolveOutcomes(records, 2021, nil)
	assert.Len(t, outcomes, len(fixtureTeams))
	assert.Equal(t, schema.ActualOutcome{Team: "Arsenal", Position: 1}, outcomes[0])
	assert.Empty(t, ResolveOutcomes(records, 2022, nil))
}

func TestPredictSeasonRetrospective(t *testing.T) {
	records := leagueFixture(2008, 2021)
	mgr := noStores()

	req := fastRequest(2021)
	req.Teams = append(append([]string{}, fixtureTeams...), "Nowhere Rovers")
	req.RunID = "fixed-run"

	report, err := PredictSeason(context.Background(), records, req, mgr)
	require.NoError(t, err)

	assert.Equal(t, "fixed-run", report.RunID)
	assert.Equal(t, 2021, report.PredictionYear)
	assert.Equal(t, 13*len(fixtureTeams), report.TrainingRows)
	assert.Len(t, report.Predictions, len(fixtureTeams))
	assert.Len(t, report.Intervals, len(fixtureTeams))

	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Nowhere Rovers", report.Failures[0].Team)
	assert.Equal(t, StageFeatures, report.Failures[0].Stage)

	// Stable league: every club lands where it always does
	require.Len(t, report.Ranking.Outcomes, len(fixtureTeams))
	for i, o := range report.Ranking.Outcomes {
		assert.Equal(t, fixtureTeams[i], o.Team)
		assert.Equal(t, i+1, o.PredictedRank)
		assert.Zero(t, o.Difference)
	}
	assert.Empty(t, report.Ranking.Unmatched)
	assert.InDelta(t, 1.0, report.Summary.RSquared, 1e-9)
	assert.Nil(t, report.Validation)
	assert.Positive(t, report.Duration)
}

func TestPredictSeasonForecast(t *testing.T) {
	records := leagueFixture(2008, 2021)
	report, err := PredictSeason(context.Background(), records, fastRequest(0), noStores())
	require.NoError(t, err)

	assert.Equal(t, 2022, report.PredictionYear)
	assert.NotEmpty(t, report.RunID)
	assert.Len(t, report.Ranking.Ranked, len(fixtureTeams))
	assert.Empty(t, report.Ranking.Outcomes)
	assert.Len(t, report.Ranking.Unmatched, len(fixtureTeams))
	assert.Zero(t, report.Summary.Matched)
}

func TestPredictSeasonWithoutIntervals(t *testing.T) {
	req := fastRequest(2021)
	req.Confidence.Bootstrap = 0
	report, err := PredictSeason(context.Background(), leagueFixture(2010, 2021), req, noStores())
	require.NoError(t, err)
	assert.Empty(t, report.Intervals)
	assert.NotNil(t, report.Intervals)
	assert.Len(t, report.Predictions, len(fixtureTeams))
}

func TestPredictSeasonWithValidation(t *testing.T) {
	req := fastRequest(2024)
	req.Confidence.Bootstrap = 0
	req.Validate = true
	report, err := PredictSeason(context.Background(), leagueFixture(2005, 2023), req, noStores())
	require.NoError(t, err)
	require.NotNil(t, report.Validation)
	assert.Equal(t, 3, report.Validation.ScoredFolds)
}

func TestPredictSeasonEmptyTrainingSet(t *testing.T) {
	_, err := PredictSeason(context.Background(), leagueFixture(2010, 2015), fastRequest(2010), noStores())
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)
}

func TestPredictSeasonCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PredictSeason(ctx, leagueFixture(2010, 2021), fastRequest(2022), noStores())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictSeasonTracksRun(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", "tracked", mock.Anything, 2021, mock.Anything).Return(nil)
	store.On("RecordTeamPrediction", mock.MatchedBy(func(r schema.TeamPredictionRecord) bool {
		return r.RunID == "tracked" && r.ActualRank != nil && r.CILower != nil
	})).Return(nil)
	store.On("EndRun", "tracked", mock.Anything, len(fixtureTeams)+1, 1, mock.MatchedBy(func(r2 *float64) bool {
		return r2 != nil && *r2 > 0.99
	})).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetIntervalStore").Return(nil)
	mgr.On("GetRunStore").Return(store)

	req := fastRequest(2021)
	req.RunID = "tracked"
	req.Teams = append(append([]string{}, fixtureTeams...), "Nowhere Rovers")
	_, err := PredictSeason(context.Background(), leagueFixture(2010, 2021), req, mgr)
	require.NoError(t, err)

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "RecordTeamPrediction", len(fixtureTeams))
}

func TestPredictSeasonSurvivesBrokenRunStore(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no such host"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetIntervalStore").Return(nil)
	mgr.On("GetRunStore").Return(store)

	report, err := PredictSeason(context.Background(), leagueFixture(2010, 2021), fastRequest(2021), mgr)
	require.NoError(t, err)
	assert.Len(t, report.Predictions, len(fixtureTeams))
	store.AssertNotCalled(t, "RecordTeamPrediction", mock.Anything)
}

func TestTeamFormReport(t *testing.T) {
	records := leagueFixture(2010, 2021)
	form, err := TeamFormReport(records, "  Leeds   United ", 0)
	require.NoError(t, err)
	assert.Equal(t, "Leeds United", form.Vector.Team)
	assert.Equal(t, 2022, form.Vector.ReferenceYear)
	assert.True(t, form.Trend.Defined)
	assert.Zero(t, form.Trend.Score())

	_, err = TeamFormReport(records, "Nowhere Rovers", 2022)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}
