package services

import (
	"context"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
)

// PriceSource supplies validated price series for a lookback window. The
// engine itself never fetches data; handlers resolve a series through this
// interface and pass it in.
type PriceSource interface {
	FetchSeries(ctx context.Context, windowDays int) (*models.PriceSeries, error)
}

// SeriesCache is the subset of cache operations the cached source needs.
type SeriesCache interface {
	Get(ctx context.Context, windowDays int) (*models.PriceSeries, bool)
	Set(ctx context.Context, windowDays int, series *models.PriceSeries)
}

// CachedPriceSource wraps a PriceSource with a read-through series cache.
type CachedPriceSource struct {
	source PriceSource
	cache  SeriesCache
}

// NewCachedPriceSource creates a read-through source. A nil cache degrades
// to the underlying source.
func NewCachedPriceSource(source PriceSource, cache SeriesCache) *CachedPriceSource {
	return &CachedPriceSource{source: source, cache: cache}
}

// FetchSeries returns the cached series for the window when present,
// otherwise fetches from the underlying source and populates the cache.
func (s *CachedPriceSource) FetchSeries(ctx context.Context, windowDays int) (*models.PriceSeries, error) {
	if s.cache != nil {
		if series, ok := s.cache.Get(ctx, windowDays); ok {
			return series, nil
		}
	}

	series, err := s.source.FetchSeries(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, windowDays, series)
	}
	return series, nil
}
