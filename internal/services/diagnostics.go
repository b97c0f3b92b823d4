package services

import (
	"fmt"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
)

// Diagnostics computes residuals and autocorrelation statistics from a fit.
type Diagnostics struct{}

// NewDiagnostics creates a new diagnostics instance.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Residuals evaluates the fitted model at every index of the series and
// returns price[i] - predicted[i], aligned 1:1 with the input.
func (d *Diagnostics) Residuals(series *models.PriceSeries, fit *models.FitResult) []models.ResidualPoint {
	prices := series.Prices()
	out := make([]models.ResidualPoint, len(prices))
	for i, p := range prices {
		out[i] = models.ResidualPoint{
			Index:    i,
			Residual: p - fit.TrendAt(i),
		}
	}
	return out
}

// DurbinWatson computes the Durbin-Watson autocorrelation statistic:
// sum of squared successive differences over the residual sum of squares.
// Values near 2 indicate no autocorrelation; near 0 or 4, strong positive
// or negative autocorrelation.
//
// A zero residual sum of squares (constant residuals, e.g. a perfect fit)
// leaves the statistic undefined and is reported as an error: 0 is itself
// a meaningful statistic value and must not double as a failure marker.
func (d *Diagnostics) DurbinWatson(residuals []float64) (float64, error) {
	sumSq := 0.0
	for _, r := range residuals {
		sumSq += r * r
	}
	if sumSq < nearZero {
		return 0, fmt.Errorf("%w: residual sum of squares is zero", ErrComputation)
	}

	sumDiffSq := 0.0
	for i := 1; i < len(residuals); i++ {
		diff := residuals[i] - residuals[i-1]
		sumDiffSq += diff * diff
	}
	return sumDiffSq / sumSq, nil
}

// ResidualValues extracts the residual column from a residual set.
func ResidualValues(points []models.ResidualPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Residual
	}
	return out
}
