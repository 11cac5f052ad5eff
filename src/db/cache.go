package db

import (
	"fmt"
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Storing cache keys in concurrent data structures to allow for clearing all
// caches of a certain type.
var (
	Cache *ristretto.Cache

	LatestCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	SnapshotCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

func LatestCacheKey(userID int64) string {
	return fmt.Sprintf("latest:%d", userID)
}

func SnapshotCacheKey(userID int64) string {
	return fmt.Sprintf("snapshots:%d", userID)
}

// Latest Budget Cache Functions
func SetLatestCache(cacheKey string, value interface{}) {
	LatestCacheKeys.Lock()
	LatestCacheKeys.m[cacheKey] = struct{}{}
	LatestCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelLatestCache(cacheKey string) {
	LatestCacheKeys.Lock()
	delete(LatestCacheKeys.m, cacheKey)
	LatestCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllLatestCaches() {
	LatestCacheKeys.Lock()
	for key := range LatestCacheKeys.m {
		Cache.Del(key)
	}
	LatestCacheKeys.m = make(map[string]struct{})
	LatestCacheKeys.Unlock()
}

// Snapshot List Cache Functions
func SetSnapshotCache(cacheKey string, value interface{}) {
	SnapshotCacheKeys.Lock()
	SnapshotCacheKeys.m[cacheKey] = struct{}{}
	SnapshotCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelSnapshotCache(cacheKey string) {
	SnapshotCacheKeys.Lock()
	delete(SnapshotCacheKeys.m, cacheKey)
	SnapshotCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllSnapshotCaches() {
	SnapshotCacheKeys.Lock()
	for key := range SnapshotCacheKeys.m {
		Cache.Del(key)
	}
	SnapshotCacheKeys.m = make(map[string]struct{})
	SnapshotCacheKeys.Unlock()
}
