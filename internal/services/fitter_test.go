package services

import (
	"math"
	"testing"
	"time"

	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSeries builds a daily-sampled series from raw float prices.
func newTestSeries(t *testing.T, prices []float64) *models.PriceSeries {
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

// powerLawPrices generates price[i] = exp(intercept) * (i+1)^slope.
func powerLawPrices(n int, slope, intercept float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = math.Exp(intercept) * math.Pow(float64(i)+1, slope)
	}
	return prices
}

func TestModelFitter_LinearLogRecoversPowerLaw(t *testing.T) {
	fitter := NewModelFitter()
	series := newTestSeries(t, powerLawPrices(100, 0.5, 2.0))

	fit, err := fitter.Fit(series, models.ModelLinearLog)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, fit.Slope, 1e-6)
	assert.InDelta(t, 2.0, fit.Intercept, 1e-6)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-6)
	assert.InDelta(t, 0.0, fit.PValue, 1e-6)

	// Trend at the last index equals exp(intercept) * n^slope.
	want := math.Exp(2.0) * math.Pow(100, 0.5)
	assert.InDelta(t, want, fit.TrendValue, 1e-6)
	assert.InDelta(t, 0.0, fit.DeviationPct, 1e-6)
}

func TestModelFitter_ExponentialRecoversGrowthRate(t *testing.T) {
	fitter := NewModelFitter()
	prices := make([]float64, 80)
	for i := range prices {
		prices[i] = math.Exp(1.0 + 0.01*float64(i))
	}

	fit, err := fitter.Fit(newTestSeries(t, prices), models.ModelExponential)
	require.NoError(t, err)

	assert.InDelta(t, 0.01, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	assert.InDelta(t, math.Exp(1.0+0.01*79), fit.TrendValue, 1e-6)
}

func TestModelFitter_LogarithmicRecoversCoefficients(t *testing.T) {
	fitter := NewModelFitter()
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 5 + 2*math.Log(float64(i)+1)
	}

	fit, err := fitter.Fit(newTestSeries(t, prices), models.ModelLogarithmic)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 5.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 5+2*math.Log(60), fit.TrendValue, 1e-9)
}

func TestModelFitter_Polynomial2RecoversCoefficients(t *testing.T) {
	fitter := NewModelFitter()
	prices := make([]float64, 50)
	for i := range prices {
		day := float64(i)
		prices[i] = 3 + 0.5*day + 0.02*day*day
	}

	fit, err := fitter.Fit(newTestSeries(t, prices), models.ModelPolynomial2)
	require.NoError(t, err)

	require.Len(t, fit.Coefficients, 3)
	assert.InDelta(t, 3.0, fit.Coefficients[0], 1e-6)
	assert.InDelta(t, 0.5, fit.Coefficients[1], 1e-6)
	assert.InDelta(t, 0.02, fit.Coefficients[2], 1e-6)

	// Slope and intercept mirror the leading and trailing coefficients.
	assert.Equal(t, fit.Coefficients[2], fit.Slope)
	assert.Equal(t, fit.Coefficients[0], fit.Intercept)

	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
	// Zero slope inference for the multi-coefficient fit.
	assert.Zero(t, fit.StdError)
	assert.Zero(t, fit.PValue)
}

func TestModelFitter_RSquaredBounds(t *testing.T) {
	fitter := NewModelFitter()
	// Deterministic but non-trivial shape: trend plus oscillation.
	prices := make([]float64, 120)
	for i := range prices {
		day := float64(i)
		prices[i] = 0.05 + 0.001*day + 0.01*math.Sin(day/3)
	}
	series := newTestSeries(t, prices)

	for _, model := range models.AllModelTypes() {
		t.Run(string(model), func(t *testing.T) {
			fit, err := fitter.Fit(series, model)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, fit.RSquared, 0.0)
			assert.LessOrEqual(t, fit.RSquared, 1.0)
		})
	}
}

func TestModelFitter_DeviationSignMatchesGap(t *testing.T) {
	fitter := NewModelFitter()
	prices := powerLawPrices(50, 0.4, 1.0)
	// Push the last price well above the fitted trend.
	prices[len(prices)-1] *= 1.5

	fit, err := fitter.Fit(newTestSeries(t, prices), models.ModelLinearLog)
	require.NoError(t, err)

	wantSign := math.Signbit(fit.CurrentPrice - fit.TrendValue)
	assert.Equal(t, wantSign, math.Signbit(fit.DeviationPct))
	assert.Greater(t, fit.DeviationPct, 0.0)
}

func TestModelFitter_InsufficientData(t *testing.T) {
	fitter := NewModelFitter()
	series := newTestSeries(t, []float64{1.0, 1.1})

	// Two points satisfy the linear fits but not the degree-2 polynomial.
	_, err := fitter.Fit(series, models.ModelPolynomial2)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = fitter.Fit(series, models.ModelLinearLog)
	assert.NoError(t, err)
}

func TestModelFitter_TwoPointFitHasUnitPValue(t *testing.T) {
	fitter := NewModelFitter()
	fit, err := fitter.Fit(newTestSeries(t, []float64{1.0, 2.0}), models.ModelExponential)
	require.NoError(t, err)

	// With zero degrees of freedom there is no slope inference.
	assert.Equal(t, 1.0, fit.PValue)
	assert.Zero(t, fit.StdError)
}

func TestModelFitter_Deterministic(t *testing.T) {
	fitter := NewModelFitter()
	series := newTestSeries(t, powerLawPrices(40, 0.3, 0.5))

	first, err := fitter.Fit(series, models.ModelLinearLog)
	require.NoError(t, err)
	second, err := fitter.Fit(series, models.ModelLinearLog)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNewPriceSeries_RejectsInvalidInput(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		points []models.PricePoint
	}{
		{
			name: "too short",
			points: []models.PricePoint{
				{Timestamp: start, Price: decimal.NewFromFloat(1)},
			},
		},
		{
			name: "non-positive price",
			points: []models.PricePoint{
				{Timestamp: start, Price: decimal.NewFromFloat(1)},
				{Timestamp: start.AddDate(0, 0, 1), Price: decimal.Zero},
			},
		},
		{
			name: "non-increasing timestamps",
			points: []models.PricePoint{
				{Timestamp: start, Price: decimal.NewFromFloat(1)},
				{Timestamp: start, Price: decimal.NewFromFloat(2)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.NewPriceSeries(tt.points)
			assert.ErrorIs(t, err, models.ErrInvalidSeries)
		})
	}
}
