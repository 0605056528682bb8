package core

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/leaguerank/internal/iocache"
	"github.com/huangsam/leaguerank/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func trackedReport() schema.PredictionReport {
	predictions := []schema.PointPrediction{
		{Team: "Chelsea", RawPosition: 2.4, AdjustedPosition: 2.3, RecentForm: 2},
		{Team: "Arsenal", RawPosition: 1.1, AdjustedPosition: 1.1},
		{Team: "Fulham", RawPosition: 9, AdjustedPosition: 9},
	}
	return schema.PredictionReport{
		RunID:       "run-7",
		Predictions: predictions,
		Intervals: map[string]schema.ConfidenceInterval{
			"Arsenal": {Team: "Arsenal", PointEstimate: 1.2, LowerBound: 1, UpperBound: 1.6, StandardError: 0.2},
		},
		Ranking: AssembleRankings(predictions, []schema.ActualOutcome{{Team: "Arsenal", Position: 2}}),
	}
}

func TestTeamPredictionRecords(t *testing.T) {
	records := teamPredictionRecords(trackedReport())
	assert.Len(t, records, 3)

	arsenal := records[0]
	assert.Equal(t, "run-7", arsenal.RunID)
	assert.Equal(t, "Arsenal", arsenal.Team)
	assert.Equal(t, 1, arsenal.PredictedRank)
	if assert.NotNil(t, arsenal.CILower) && assert.NotNil(t, arsenal.ActualRank) {
		assert.Equal(t, 1.0, *arsenal.CILower)
		assert.Equal(t, 1.6, *arsenal.CIUpper)
		assert.Equal(t, 1.2, *arsenal.CIMean)
		assert.Equal(t, 0.2, *arsenal.StandardError)
		assert.Equal(t, 2, *arsenal.ActualRank)
	}

	chelsea := records[1]
	assert.Equal(t, 2, chelsea.PredictedRank)
	assert.Equal(t, 2.4, chelsea.RawPosition)
	assert.Equal(t, 2.0, chelsea.RecentForm)
	assert.Nil(t, chelsea.CILower)
	assert.Nil(t, chelsea.ActualRank)
}

func TestRunTrackerDisabled(t *testing.T) {
	assert.Nil(t, newRunTracker(nil, "run"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(nil)
	tracker := newRunTracker(mgr, "run")
	assert.Nil(t, tracker)

	// A nil tracker is safe to use
	tracker.begin(time.Now(), 2022, nil)
	tracker.recordReport(trackedReport())
	tracker.end(time.Now(), 3, 0, nil)
	mgr.AssertExpectations(t)
}

func TestRunTrackerLifecycle(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", "run-7", mock.Anything, 2022, map[string]any{"trees": 100}).Return(nil)
	store.On("RecordTeamPrediction", mock.Anything).Return(nil)
	r2 := 0.5
	store.On("EndRun", "run-7", mock.Anything, 3, 0, &r2).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(store)

	tracker := newRunTracker(mgr, "run-7")
	tracker.begin(time.Now(), 2022, map[string]any{"trees": 100})
	tracker.recordReport(trackedReport())
	tracker.end(time.Now(), 3, 0, &r2)

	store.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "RecordTeamPrediction", 3)
}

func TestRunTrackerSkipsAfterFailedBegin(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(store)

	tracker := newRunTracker(mgr, "run-8")
	tracker.begin(time.Now(), 2022, nil)
	tracker.recordReport(trackedReport())
	tracker.end(time.Now(), 3, 0, nil)

	store.AssertNumberOfCalls(t, "BeginRun", 1)
	store.AssertNotCalled(t, "RecordTeamPrediction", mock.Anything)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunTrackerBreakerOpens(t *testing.T) {
	store := &iocache.MockRunStore{}
	store.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("RecordTeamPrediction", mock.Anything).Return(errors.New("deadlock"))
	store.On("EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRunStore").Return(store)

	tracker := newRunTracker(mgr, "run-9")
	tracker.begin(time.Now(), 2022, nil)

	report := trackedReport()
	for i := range 3 {
		report.Predictions = append(report.Predictions, schema.PointPrediction{Team: fixtureTeams[i] + " B", AdjustedPosition: float64(10 + i)})
	}
	report.Ranking = AssembleRankings(report.Predictions, nil)
	tracker.recordReport(report)
	tracker.end(time.Now(), 6, 0, nil)

	// The breaker opens after three consecutive failures
	store.AssertNumberOfCalls(t, "RecordTeamPrediction", trackerTripAfter)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
