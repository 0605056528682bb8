package core

import (
	"context"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/sirupsen/logrus"
)

// Context keys for pipeline options
type contextKey string

const (
	cacheManagerKey contextKey = "cacheManager"
	runIDKey        contextKey = "runID"
)

// contextWithCacheManager stores the cache manager so worker goroutines can reach it.
func contextWithCacheManager(ctx context.Context, mgr contract.CacheManager) context.Context {
	if mgr == nil {
		return ctx
	}
	return context.WithValue(ctx, cacheManagerKey, mgr)
}

// cacheManagerFromContext returns the cache manager stored in ctx, or nil.
func cacheManagerFromContext(ctx context.Context) contract.CacheManager {
	mgr, _ := ctx.Value(cacheManagerKey).(contract.CacheManager)
	return mgr
}

// withRunID attaches the prediction run identifier to ctx.
func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// runIDFromContext returns the run identifier, if any.
func runIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// loggerFromContext returns a log entry tagged with the run ID when ctx carries one.
func loggerFromContext(ctx context.Context) *logrus.Entry {
	if id, ok := runIDFromContext(ctx); ok {
		return contract.WithRun(id)
	}
	return logrus.NewEntry(contract.Logger())
}
