package services

import (
	"fmt"
	"math"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
)

// Deviation labels reported alongside the signed percentage.
const (
	LabelOvervalued  = "overvalued"
	LabelUndervalued = "undervalued"
	LabelFairValue   = "fair_value"
)

// deviationThresholdPct is the band, in percent, inside which a price is
// considered fairly valued against the fitted trend.
const deviationThresholdPct = 10.0

// DeviationClassifier turns a fit's deviation percentage into a qualitative
// valuation label. Pure function, safe for concurrent use.
type DeviationClassifier struct{}

// NewDeviationClassifier creates a new classifier instance.
func NewDeviationClassifier() *DeviationClassifier {
	return &DeviationClassifier{}
}

// Classify returns the fit's deviation percentage and its label:
// above +10% is overvalued, below -10% undervalued, otherwise fair value.
func (c *DeviationClassifier) Classify(fit *models.FitResult) (float64, string, error) {
	if math.IsNaN(fit.TrendValue) || math.IsInf(fit.TrendValue, 0) {
		return 0, "", fmt.Errorf("%w: fit has no usable trend value", ErrComputation)
	}
	dev := fit.DeviationPct
	switch {
	case dev > deviationThresholdPct:
		return dev, LabelOvervalued, nil
	case dev < -deviationThresholdPct:
		return dev, LabelUndervalued, nil
	default:
		return dev, LabelFairValue, nil
	}
}
