package services

import (
	"fmt"
	"math"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/dodgedlol2/KaspaMetrics/internal/models"
)

// MarketStats summarizes a price window for the dashboard header cards.
type MarketStats struct {
	CurrentPrice float64   `json:"current_price"`
	MeanPrice    float64   `json:"mean_price"`
	StdDeviation float64   `json:"std_deviation"`
	MinPrice     float64   `json:"min_price"`
	MaxPrice     float64   `json:"max_price"`
	WindowChange float64   `json:"window_change_pct"`
	SMA20        float64   `json:"sma_20,omitempty"`
	SMA50        float64   `json:"sma_50,omitempty"`
	EMA20        float64   `json:"ema_20,omitempty"`
	DataPoints   int       `json:"data_points"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
}

// MarketStatsService computes descriptive statistics and moving-average
// overlays over a price window.
type MarketStatsService struct{}

// NewMarketStatsService creates a new stats service.
func NewMarketStatsService() *MarketStatsService {
	return &MarketStatsService{}
}

// Compute summarizes the series: mean, population std deviation, extremes,
// change over the window, and the latest SMA 20/50 and EMA 20 values where
// the window is long enough for them.
func (s *MarketStatsService) Compute(series *models.PriceSeries) (*MarketStats, error) {
	prices := series.Prices()
	n := len(prices)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrComputation)
	}

	sum := 0.0
	minP, maxP := prices[0], prices[0]
	for _, p := range prices {
		sum += p
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(n)

	stats := &MarketStats{
		CurrentPrice: prices[n-1],
		MeanPrice:    mean,
		StdDeviation: math.Sqrt(variance),
		MinPrice:     minP,
		MaxPrice:     maxP,
		DataPoints:   n,
		WindowStart:  series.At(0).Timestamp,
		WindowEnd:    series.Last().Timestamp,
	}
	if prices[0] != 0 {
		stats.WindowChange = (prices[n-1] - prices[0]) / prices[0] * 100
	}

	stats.SMA20 = s.latestSMA(prices, 20)
	stats.SMA50 = s.latestSMA(prices, 50)
	stats.EMA20 = s.latestEMA(prices, 20)

	return stats, nil
}

// latestSMA returns the most recent simple moving average value, or 0 when
// the window is shorter than the period.
func (s *MarketStatsService) latestSMA(prices []float64, period int) float64 {
	if len(prices) < period {
		return 0
	}
	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices)))
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

// latestEMA returns the most recent exponential moving average value, or 0
// when the window is shorter than the period.
func (s *MarketStatsService) latestEMA(prices []float64, period int) float64 {
	if len(prices) < period {
		return 0
	}
	ema := trend.NewEmaWithPeriod[float64](period)
	values := helper.ChanToSlice(ema.Compute(helper.SliceToChan(prices)))
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
