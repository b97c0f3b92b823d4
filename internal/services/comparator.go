package services

import (
	"fmt"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/sirupsen/logrus"
)

// ComparisonResult aggregates per-model fits over the same series.
type ComparisonResult struct {
	// Results holds the fits that converged, keyed by model type. Models
	// whose fit failed are absent; partial results are valid output.
	Results map[models.ModelType]*models.FitResult `json:"results"`
	// BestModel is the converged model with the highest R-squared; ties
	// go to the earlier entry in canonical order.
	BestModel models.ModelType `json:"best_model"`
	// EnsembleTrendValue is the arithmetic mean of the converged models'
	// trend values.
	EnsembleTrendValue float64 `json:"ensemble_trend_value"`
}

// ModelComparator runs the fitter across several model families and ranks
// the outcomes.
type ModelComparator struct {
	fitter *ModelFitter
	logger *logrus.Logger
}

// NewModelComparator creates a comparator around the given fitter.
func NewModelComparator(fitter *ModelFitter, logger *logrus.Logger) *ModelComparator {
	return &ModelComparator{fitter: fitter, logger: logger}
}

// Compare fits every requested model family. A single model's failure is
// logged and excluded rather than aborting the comparison; Compare fails
// only when no model converges. Passing no model types compares all four.
func (mc *ModelComparator) Compare(series *models.PriceSeries, requested []models.ModelType) (*ComparisonResult, error) {
	wanted := make(map[models.ModelType]bool, len(requested))
	for _, m := range requested {
		wanted[m] = true
	}

	result := &ComparisonResult{
		Results: make(map[models.ModelType]*models.FitResult),
	}

	sum := 0.0
	bestR := -1.0
	// Canonical iteration order doubles as the tie-break order.
	for _, model := range models.AllModelTypes() {
		if len(requested) > 0 && !wanted[model] {
			continue
		}
		fit, err := mc.fitter.Fit(series, model)
		if err != nil {
			mc.logger.WithFields(logrus.Fields{
				"model": model,
				"error": err,
			}).Warn("model fit failed, excluding from comparison")
			continue
		}
		result.Results[model] = fit
		sum += fit.TrendValue
		if fit.RSquared > bestR {
			bestR = fit.RSquared
			result.BestModel = model
		}
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("%w: no model converged", ErrComputation)
	}
	result.EnsembleTrendValue = sum / float64(len(result.Results))

	return result, nil
}
