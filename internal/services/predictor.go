package services

import (
	"fmt"
	"math"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
)

// Prediction confidence labels. The mapping is a fixed heuristic on the
// projected change, not derived from the regression's standard error.
const (
	PredictionConfidenceMedium = "medium"
	PredictionConfidenceLow    = "low"
)

// predictionConfidenceCutoffPct: projected moves at or beyond this absolute
// percentage are labeled low confidence.
const predictionConfidenceCutoffPct = 50.0

// Predictor extrapolates a fitted trend to future horizons using a simple
// single-factor projection: trend * (1 + slope * days/365). It does not
// re-fit per horizon.
type Predictor struct{}

// NewPredictor creates a new predictor instance.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Predict projects the fitted trend at each horizon, expressed in days.
// Horizons must be positive; unsorted input is accepted and the output
// preserves input order. The change percentage is relative to lastPrice.
func (p *Predictor) Predict(fit *models.FitResult, lastPrice float64, horizons []int) ([]models.PredictionPoint, error) {
	if math.Abs(lastPrice) < nearZero || math.IsNaN(lastPrice) {
		return nil, fmt.Errorf("%w: last price %v", ErrComputation, lastPrice)
	}

	points := make([]models.PredictionPoint, 0, len(horizons))
	for _, days := range horizons {
		if days <= 0 {
			return nil, fmt.Errorf("%w: horizon must be a positive day count, got %d", ErrComputation, days)
		}

		predicted := fit.TrendValue * (1 + fit.Slope*float64(days)/365)
		changePct := (predicted - lastPrice) / lastPrice * 100

		label := PredictionConfidenceMedium
		if math.Abs(changePct) >= predictionConfidenceCutoffPct {
			label = PredictionConfidenceLow
		}

		points = append(points, models.PredictionPoint{
			HorizonDays:     days,
			PredictedPrice:  predicted,
			ChangePct:       changePct,
			ConfidenceLabel: label,
		})
	}

	return points, nil
}
