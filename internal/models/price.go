package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Lookback windows supported by the price data source, in days.
// WindowAll selects the full available history.
const (
	Window30  = 30
	Window90  = 90
	Window180 = 180
	Window365 = 365
	Window730 = 730
	WindowAll = 0
)

// ErrInvalidSeries is returned when a price series violates its construction
// invariants (too short, unordered timestamps, non-positive price).
var ErrInvalidSeries = errors.New("invalid price series")

// PricePoint represents a single observation of the KAS/USD price.
// Volume and OHLC fields are optional and not used by the regression engine.
type PricePoint struct {
	Timestamp time.Time           `json:"timestamp" db:"timestamp"`
	Price     decimal.Decimal     `json:"price" db:"price"`
	Volume    decimal.NullDecimal `json:"volume,omitempty" db:"volume"`
	Open      decimal.NullDecimal `json:"open,omitempty" db:"open"`
	High      decimal.NullDecimal `json:"high,omitempty" db:"high"`
	Low       decimal.NullDecimal `json:"low,omitempty" db:"low"`
	Close     decimal.NullDecimal `json:"close,omitempty" db:"close"`
}

// PriceSeries is a time-ordered sequence of price points. Index position is
// the model's independent variable; irregular sampling is not corrected for.
// A series is immutable after construction and is never mutated by the
// engine.
type PriceSeries struct {
	points []PricePoint
}

// NewPriceSeries validates and wraps an ordered slice of price points.
// Requirements: at least two points, strictly increasing timestamps, and
// strictly positive prices.
func NewPriceSeries(points []PricePoint) (*PriceSeries, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidSeries, len(points))
	}
	for i, p := range points {
		if p.Price.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: non-positive price %s at index %d", ErrInvalidSeries, p.Price, i)
		}
		if i > 0 && !points[i-1].Timestamp.Before(p.Timestamp) {
			return nil, fmt.Errorf("%w: timestamps not strictly increasing at index %d", ErrInvalidSeries, i)
		}
	}
	copied := make([]PricePoint, len(points))
	copy(copied, points)
	return &PriceSeries{points: copied}, nil
}

// Len returns the number of points in the series.
func (s *PriceSeries) Len() int {
	return len(s.points)
}

// At returns the point at index i.
func (s *PriceSeries) At(i int) PricePoint {
	return s.points[i]
}

// Last returns the most recent point.
func (s *PriceSeries) Last() PricePoint {
	return s.points[len(s.points)-1]
}

// Prices returns the price column as float64 values for numeric fitting.
func (s *PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i], _ = p.Price.Float64()
	}
	return out
}

// Timestamps returns the timestamp column.
func (s *PriceSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Timestamp
	}
	return out
}
