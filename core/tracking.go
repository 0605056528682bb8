package core

import (
	"fmt"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Run store breaker settings.
const (
	trackerTripAfter = 3
	trackerCooldown  = 30 * time.Second
)

// runTracker records one prediction run in the run store. Every write goes
// through a circuit breaker so an unreachable database is skipped after a few
// failures instead of being retried once per team.
type runTracker struct {
	store   contract.RunStore
	runID   string
	breaker *gobreaker.CircuitBreaker
	started bool
	log     *logrus.Entry
}

// newRunTracker returns a tracker, or nil when run tracking is disabled.
func newRunTracker(mgr contract.CacheManager, runID string) *runTracker {
	if mgr == nil {
		return nil
	}
	store := mgr.GetRunStore()
	if store == nil {
		return nil
	}
	log := contract.WithRun(runID)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "run-store",
		MaxRequests: 1,
		Timeout:     trackerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trackerTripAfter
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Run store circuit breaker state changed")
		},
	})
	return &runTracker{store: store, runID: runID, breaker: cb, log: log}
}

// execute runs one store call through the breaker and logs failures as warnings.
func (t *runTracker) execute(operation string, fn func() error) bool {
	_, err := t.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Run tracking failed for %s", operation), err)
		return false
	}
	return true
}

// begin creates the run row. Later calls are no-ops if it fails.
func (t *runTracker) begin(startTime time.Time, predictionYear int, configParams map[string]any) {
	if t == nil {
		return
	}
	t.started = t.execute("BeginRun", func() error {
		return t.store.BeginRun(t.runID, startTime, predictionYear, configParams)
	})
	if t.started {
		t.log.Debug("Run tracking started")
	}
}

// recordReport stores every ranked team along with its interval and actual rank.
func (t *runTracker) recordReport(report schema.PredictionReport) {
	if t == nil || !t.started {
		return
	}
	for _, rec := range teamPredictionRecords(report) {
		t.execute("RecordTeamPrediction "+rec.Team, func() error {
			return t.store.RecordTeamPrediction(rec)
		})
	}
}

// end finalizes the run row.
func (t *runTracker) end(endTime time.Time, totalTeams, failedTeams int, rSquared *float64) {
	if t == nil || !t.started {
		return
	}
	t.execute("EndRun", func() error {
		return t.store.EndRun(t.runID, endTime, totalTeams, failedTeams, rSquared)
	})
}

// teamPredictionRecords flattens a report into run store rows in rank order.
func teamPredictionRecords(report schema.PredictionReport) []schema.TeamPredictionRecord {
	points := make(map[string]schema.PointPrediction, len(report.Predictions))
	for _, p := range report.Predictions {
		points[p.Team] = p
	}
	actual := make(map[string]int, len(report.Ranking.Outcomes))
	for _, o := range report.Ranking.Outcomes {
		actual[o.Team] = o.ActualRank
	}

	records := make([]schema.TeamPredictionRecord, 0, len(report.Ranking.Ranked))
	for _, r := range report.Ranking.Ranked {
		p := points[r.Team]
		rec := schema.TeamPredictionRecord{
			RunID:            report.RunID,
			Team:             r.Team,
			PredictedRank:    r.PredictedRank,
			RawPosition:      p.RawPosition,
			AdjustedPosition: r.AdjustedPosition,
			RecentForm:       p.RecentForm,
		}
		if ci, ok := report.Intervals[r.Team]; ok {
			lower, upper, mean, se := ci.LowerBound, ci.UpperBound, ci.PointEstimate, ci.StandardError
			rec.CILower, rec.CIUpper, rec.CIMean, rec.StandardError = &lower, &upper, &mean, &se
		}
		if pos, ok := actual[r.Team]; ok {
			rec.ActualRank = &pos
		}
		records = append(records, rec)
	}
	return records
}
