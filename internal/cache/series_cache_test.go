package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisSeriesCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRedisSeriesCache(client, 5*time.Minute, logger), mr
}

func testSeries(t *testing.T, prices ...float64) *models.PriceSeries {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{
			Timestamp: start.AddDate(0, 0, i),
			Price:     decimal.NewFromFloat(p),
		}
	}
	series, err := models.NewPriceSeries(points)
	require.NoError(t, err)
	return series
}

func TestRedisSeriesCache_SetGetRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	series := testSeries(t, 0.10, 0.11, 0.12)

	cache.Set(ctx, 30, series)

	got, ok := cache.Get(ctx, 30)
	require.True(t, ok)
	assert.Equal(t, series.Len(), got.Len())
	assert.Equal(t, series.Prices(), got.Prices())

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestRedisSeriesCache_MissOnEmptyAndDistinctWindows(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 30)
	assert.False(t, ok)

	cache.Set(ctx, 30, testSeries(t, 0.10, 0.11))

	// A different window does not hit the 30-day entry.
	_, ok = cache.Get(ctx, 90)
	assert.False(t, ok)

	stats := cache.GetStats()
	assert.Equal(t, int64(2), stats.Misses)
}

func TestRedisSeriesCache_AllHistoryKey(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, models.WindowAll, testSeries(t, 0.10, 0.11))

	got, ok := cache.Get(ctx, models.WindowAll)
	require.True(t, ok)
	assert.Equal(t, 2, got.Len())
}

func TestRedisSeriesCache_ExpiresWithTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, 30, testSeries(t, 0.10, 0.11))
	mr.FastForward(6 * time.Minute)

	_, ok := cache.Get(ctx, 30)
	assert.False(t, ok)
}

func TestRedisSeriesCache_DropsCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("price_series:30d", "not json"))

	_, ok := cache.Get(ctx, 30)
	assert.False(t, ok)
}

func TestRedisSeriesCache_Clear(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, 30, testSeries(t, 0.10, 0.11))
	cache.Set(ctx, 90, testSeries(t, 0.10, 0.11, 0.12))

	require.NoError(t, cache.Clear(ctx))

	_, ok := cache.Get(ctx, 30)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 90)
	assert.False(t, ok)
}
