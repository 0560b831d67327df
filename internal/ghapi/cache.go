package ghapi

import (
	"encoding/json"
	"fmt"

	"github.com/prpulse/prpulse/internal/contract"
)

// CacheSchemaVersion guards cached payloads against layout changes.
// Bump it whenever the serialized shape of a cached response changes;
// older entries are then treated as misses.
const CacheSchemaVersion = 1

// Cache key prefixes, one per endpoint family.
const (
	reposKeyFmt   = "repos_%s_p%d"
	prsKeyFmt     = "prs_%s_%s_p%d"
	reviewsKeyFmt = "reviews_%s_%s_%d"
	commitsKeyFmt = "commits_%s_%s_%d"
	filesKeyFmt   = "files_%s_%s_%d"
	runsKeyFmt    = "runs_%s_%s_p%d"
	jobsKeyFmt    = "jobs_%s_%s_%d"
)

// cacheGet returns a cached response when it exists, carries the
// current schema version and is younger than the configured TTL.
// Any storage error is treated as a miss.
func cacheGet[T any](s *Service, key string) ([]T, bool) {
	if s.store == nil {
		return nil, false
	}
	blob, version, timestamp, err := s.store.Get(key)
	if err != nil || blob == nil {
		return nil, false
	}
	if version != CacheSchemaVersion {
		return nil, false
	}
	age := s.now().Unix() - timestamp
	if age < 0 || age >= int64(s.ttl.Seconds()) {
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(blob, &items); err != nil {
		contract.LogWarn("cache decode", fmt.Errorf("key %s: %w", key, err))
		return nil, false
	}
	return items, true
}

// cacheSet stores a response under the given key. Failures only cost
// a future cache hit, so they are logged and swallowed.
func cacheSet[T any](s *Service, key string, items []T) {
	if s.store == nil {
		return
	}
	blob, err := json.Marshal(items)
	if err != nil {
		contract.LogWarn("cache encode", fmt.Errorf("key %s: %w", key, err))
		return
	}
	if err := s.store.Set(key, blob, CacheSchemaVersion, s.now().Unix()); err != nil {
		contract.LogWarn("cache write", fmt.Errorf("key %s: %w", key, err))
	}
}
