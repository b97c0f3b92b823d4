package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// seriesCacheEntry is the stored representation of a fetched price window.
type seriesCacheEntry struct {
	Points   []models.PricePoint `json:"points"`
	CachedAt time.Time           `json:"cached_at"`
}

// SeriesCacheStats is a point-in-time snapshot of the cache counters.
type SeriesCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// RedisSeriesCache caches fetched price windows in Redis, keyed by lookback
// window, so repeated chart requests within the TTL do not re-query the
// price store.
type RedisSeriesCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger *logrus.Logger

	mu    sync.RWMutex
	stats SeriesCacheStats
}

// NewRedisSeriesCache creates a new Redis-backed series cache.
func NewRedisSeriesCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisSeriesCache {
	return &RedisSeriesCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "price_series:",
		logger: logger,
	}
}

func (c *RedisSeriesCache) key(windowDays int) string {
	if windowDays <= 0 {
		return c.prefix + "all"
	}
	return fmt.Sprintf("%s%dd", c.prefix, windowDays)
}

// Get retrieves the cached series for a window, if present and decodable.
func (c *RedisSeriesCache) Get(ctx context.Context, windowDays int) (*models.PriceSeries, bool) {
	data, err := c.redis.Get(ctx, c.key(windowDays)).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Warn("redis error reading cached price series")
		c.miss()
		return nil, false
	}

	var entry seriesCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithError(err).Warn("failed to decode cached price series")
		c.miss()
		return nil, false
	}

	series, err := models.NewPriceSeries(entry.Points)
	if err != nil {
		// A cached entry that fails validation is stale garbage.
		c.logger.WithError(err).Warn("cached price series failed validation, dropping")
		_ = c.redis.Del(ctx, c.key(windowDays)).Err()
		c.miss()
		return nil, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	return series, true
}

// Set stores the series for a window with the cache TTL.
func (c *RedisSeriesCache) Set(ctx context.Context, windowDays int, series *models.PriceSeries) {
	points := make([]models.PricePoint, series.Len())
	for i := range points {
		points[i] = series.At(i)
	}
	entry := seriesCacheEntry{
		Points:   points,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.WithError(err).Warn("failed to encode price series for cache")
		return
	}
	if err := c.redis.Set(ctx, c.key(windowDays), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("redis error caching price series")
		return
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
}

// Clear removes every cached window.
func (c *RedisSeriesCache) Clear(ctx context.Context) error {
	var keys []string
	iter := c.redis.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}
	return nil
}

// GetStats returns a snapshot of the cache counters.
func (c *RedisSeriesCache) GetStats() SeriesCacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *RedisSeriesCache) miss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
