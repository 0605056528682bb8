package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"hash"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"github.com/sirupsen/logrus"
)

// currentCacheVersion defines the version of the cached interval schema
const currentCacheVersion = 1

// intervalCacheTTL bounds how long a cached interval is trusted.
const intervalCacheTTL = 30 * 24 * time.Hour

// cachedConfidenceBatch serves intervals from the interval cache and computes the
// rest in one bootstrap run. Cache problems never fail the estimate.
func cachedConfidenceBatch(ctx context.Context, records schema.Seasons, teams []string, predictionYear int, opts ConfidenceOptions) (map[string]schema.ConfidenceInterval, map[string]error, error) {
	var store contract.CacheStore
	if mgr := cacheManagerFromContext(ctx); mgr != nil {
		store = mgr.GetIntervalStore()
	}
	if store == nil {
		// Fallback to direct computation
		return EstimateConfidenceBatch(ctx, records, teams, predictionYear, opts)
	}

	fingerprint := datasetFingerprint(records.Before(predictionYear))
	intervals := make(map[string]schema.ConfidenceInterval, len(teams))
	keys := make(map[string]string, len(teams))
	var missing []string
	for _, team := range teams {
		key := generateCacheKey(fingerprint, team, predictionYear, opts)
		keys[team] = key
		if ci, ok := checkCacheHit(store, key); ok {
			intervals[team] = ci
			continue
		}
		missing = append(missing, team)
	}
	loggerFromContext(ctx).WithFields(logrus.Fields{
		"hits":   len(teams) - len(missing),
		"misses": len(missing),
	}).Debug("Interval cache lookup")
	if len(missing) == 0 {
		return intervals, map[string]error{}, nil
	}

	computed, failures, err := EstimateConfidenceBatch(ctx, records, missing, predictionYear, opts)
	if err != nil {
		return nil, nil, err
	}
	for team, ci := range computed {
		intervals[team] = ci
		storeInterval(store, keys[team], ci)
	}
	return intervals, failures, nil
}

// checkCacheHit attempts to retrieve and validate a cached interval
func checkCacheHit(store contract.CacheStore, key string) (schema.ConfidenceInterval, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.ConfidenceInterval{}, false // Cache miss
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > intervalCacheTTL {
		return schema.ConfidenceInterval{}, false
	}
	var ci schema.ConfidenceInterval
	if err := json.Unmarshal(data, &ci); err != nil {
		return schema.ConfidenceInterval{}, false
	}
	return ci, true
}

// storeInterval writes one interval, logging instead of failing.
func storeInterval(store contract.CacheStore, key string, ci schema.ConfidenceInterval) {
	data, err := json.Marshal(ci)
	if err != nil {
		return
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to cache interval for %s", ci.Team), err)
	}
}

// generateCacheKey creates a unique key from everything that shapes an interval.
func generateCacheKey(fingerprint, team string, predictionYear int, opts ConfidenceOptions) string {
	m := opts.Model
	key := fmt.Sprintf("%s:%s:%d:%d:%g:%d:%d:%d:%d",
		fingerprint,
		team,
		predictionYear,
		opts.Bootstrap,
		opts.Level,
		m.Trees,
		m.Seed,
		m.MaxDepth,
		m.MinLeaf,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

// datasetFingerprint hashes the rows in order so any edit to the history
// produces a different cache key.
func datasetFingerprint(rows schema.Seasons) string {
	h := sha256.New()
	for _, r := range rows {
		writeRow(h, r)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func writeRow(h hash.Hash, r schema.SeasonRecord) {
	_, _ = fmt.Fprintf(h, "%s|%d|%d|%d|%g|%g|%g|%g|%g|%g|%g\n",
		r.Team, r.SeasonEndYear, r.Position, r.Played,
		r.Won, r.Drawn, r.Lost, r.GoalsFor, r.GoalsAgainst, r.GoalDifference, r.Points)
}
