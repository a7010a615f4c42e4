// Package cache provides a two-tier result cache for triage results:
// an in-memory expirable LRU for hot entries and an optional Redis
// tier shared across instances. Keys are derived from the canonical
// symptom set and age, never from the raw input text.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/respicare/triage-engine/internal/domain"
)

const redisKeyPrefix = "respicare:triage:"

// Stats counts cache tier hits and misses.
type Stats struct {
	MemoryHits   int64 `json:"memory_hits"`
	MemoryMisses int64 `json:"memory_misses"`
	RedisHits    int64 `json:"redis_hits"`
	RedisMisses  int64 `json:"redis_misses"`
}

// ResultCache caches completed triage results by symptom set and age.
// The Redis tier is optional; without it the cache is purely local.
type ResultCache struct {
	memory *expirable.LRU[string, *domain.TriageResult]
	redis  *redis.Client
	ttl    time.Duration
	log    *logrus.Logger

	mu    sync.Mutex
	stats Stats
}

// New builds the cache. redisClient may be nil to disable the
// distributed tier.
func New(maxEntries int, ttl time.Duration, redisClient *redis.Client, logger *logrus.Logger) *ResultCache {
	return &ResultCache{
		memory: expirable.NewLRU[string, *domain.TriageResult](maxEntries, nil, ttl),
		redis:  redisClient,
		ttl:    ttl,
		log:    logger,
	}
}

// Key derives the deterministic cache key: a hash over the sorted
// canonical symptom set and the age. Symptom order in the input text
// never changes the key.
func Key(symptoms []string, age int) string {
	sorted := make([]string, len(symptoms))
	copy(sorted, symptoms)
	sort.Strings(sorted)

	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", strings.Join(sorted, ","), age)))
	return hex.EncodeToString(h[:])
}

// Get looks the key up in the memory tier first, then Redis. A Redis
// hit is promoted into the memory tier. Hits are returned as deep
// clones: the stored entry is shared by every request for the same
// symptom set, and callers mutate their copy.
func (c *ResultCache) Get(ctx context.Context, key string) (*domain.TriageResult, bool) {
	if result, ok := c.memory.Get(key); ok {
		c.count(func(s *Stats) { s.MemoryHits++ })
		return result.Clone(), true
	}
	c.count(func(s *Stats) { s.MemoryMisses++ })

	if c.redis == nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Debug("Redis cache read failed")
		}
		c.count(func(s *Stats) { s.RedisMisses++ })
		return nil, false
	}

	var result domain.TriageResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.log.WithError(err).Warn("Discarding corrupt cached triage result")
		c.count(func(s *Stats) { s.RedisMisses++ })
		return nil, false
	}

	c.count(func(s *Stats) { s.RedisHits++ })
	c.memory.Add(key, &result)
	return result.Clone(), true
}

// Put stores a deep clone of the result in both tiers, so later
// mutation of the caller's copy cannot reach the cached entry. Redis
// failures are logged and ignored; the memory tier alone is enough to
// serve.
func (c *ResultCache) Put(ctx context.Context, key string, result *domain.TriageResult) {
	c.memory.Add(key, result.Clone())

	if c.redis == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.log.WithError(err).Warn("Failed to serialize triage result for cache")
		return
	}
	if err := c.redis.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("Redis cache write failed")
	}
}

// Purge empties the memory tier. Used after a catalog reload so stale
// hypotheses cannot outlive the snapshot they came from.
func (c *ResultCache) Purge() {
	c.memory.Purge()
}

// Stats returns a snapshot of the hit counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *ResultCache) count(update func(*Stats)) {
	c.mu.Lock()
	update(&c.stats)
	c.mu.Unlock()
}
