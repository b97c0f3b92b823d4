package services

import (
	"fmt"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
)

// ConfidenceBandBuilder derives upper/lower bands around a fitted trend
// line. Multipliers are fixed z-scores, not recomputed from sample size;
// an acceptable approximation at the series lengths involved.
type ConfidenceBandBuilder struct{}

// NewConfidenceBandBuilder creates a new builder instance.
func NewConfidenceBandBuilder() *ConfidenceBandBuilder {
	return &ConfidenceBandBuilder{}
}

// multiplier maps a confidence level to its z-score.
func (b *ConfidenceBandBuilder) multiplier(level models.ConfidenceLevel) (float64, error) {
	switch level {
	case models.Confidence68:
		return 1.0, nil
	case models.Confidence95:
		return 1.96, nil
	case models.Confidence99:
		return 2.58, nil
	default:
		return 0, fmt.Errorf("%w: unsupported confidence level %d", ErrComputation, level)
	}
}

// Bands returns upper and lower sequences the same length as trend, with
// upper[i] = trend[i]*(1+z*stdError) and lower[i] = trend[i]*(1-z*stdError).
// For non-negative stdError and trend values, lower <= trend <= upper holds
// at every index. A negative stdError never comes out of a valid fit and is
// rejected.
func (b *ConfidenceBandBuilder) Bands(trend []float64, stdError float64, level models.ConfidenceLevel) (upper, lower []float64, err error) {
	if stdError < 0 {
		return nil, nil, fmt.Errorf("%w: negative std error %v", ErrComputation, stdError)
	}
	z, err := b.multiplier(level)
	if err != nil {
		return nil, nil, err
	}

	upper = make([]float64, len(trend))
	lower = make([]float64, len(trend))
	for i, v := range trend {
		upper[i] = v * (1 + z*stdError)
		lower[i] = v * (1 - z*stdError)
	}
	return upper, lower, nil
}
