// Package iocache persists bootstrap intervals and prediction runs.
package iocache

import (
	"sync"

	"github.com/huangsam/leaguerank/internal/contract"
)

// CacheStoreManager manages the interval cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	intervals    contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetIntervalStore returns the interval CacheStore.
func (mgr *CacheStoreManager) GetIntervalStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.intervals
}

// GetRunStore returns the prediction RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
