package models

import (
	"fmt"
	"math"
	"strings"
)

// ModelType identifies one of the supported trend model families.
type ModelType string

const (
	// ModelLinearLog is the power law: price = exp(intercept) * day^slope,
	// fitted as a linear regression in log-log space.
	ModelLinearLog ModelType = "linear_log"
	// ModelPolynomial2 is a degree-2 polynomial of price against day index.
	ModelPolynomial2 ModelType = "polynomial2"
	// ModelExponential fits day index against log(price).
	ModelExponential ModelType = "exponential"
	// ModelLogarithmic fits log(day+1) against raw price.
	ModelLogarithmic ModelType = "logarithmic"
)

// AllModelTypes returns the model families in canonical order. The order is
// load-bearing: ModelComparator breaks R-squared ties by it.
func AllModelTypes() []ModelType {
	return []ModelType{ModelLinearLog, ModelPolynomial2, ModelExponential, ModelLogarithmic}
}

// ParseModelType maps a request string onto a ModelType. It accepts the
// canonical names plus the display labels older clients send.
func ParseModelType(s string) (ModelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear_log", "linear", "power_law", "linear regression":
		return ModelLinearLog, nil
	case "polynomial2", "polynomial", "poly2":
		return ModelPolynomial2, nil
	case "exponential":
		return ModelExponential, nil
	case "logarithmic", "log":
		return ModelLogarithmic, nil
	default:
		return "", fmt.Errorf("unknown model type %q", s)
	}
}

// MinPoints returns the minimum series length the family needs for a fit.
func (m ModelType) MinPoints() int {
	if m == ModelPolynomial2 {
		return 3
	}
	return 2
}

// UsesLogPrice reports whether the family regresses on log(price) and
// therefore requires strictly positive prices.
func (m ModelType) UsesLogPrice() bool {
	return m == ModelLinearLog || m == ModelExponential
}

// FitResult holds the parameters and quality metrics of a single model fit.
// Results are created fresh per fit call and never cached across requests.
//
// For Polynomial2 fits, Coefficients holds the three polynomial coefficients
// in ascending order of degree; Slope and Intercept mirror the leading and
// trailing coefficients for uniform reporting.
type FitResult struct {
	ModelType    ModelType `json:"model_type"`
	Slope        float64   `json:"slope"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	RSquared     float64   `json:"r_squared"`
	StdError     float64   `json:"std_error"`
	PValue       float64   `json:"p_value"`
	CurrentPrice float64   `json:"current_price"`
	TrendValue   float64   `json:"trend_value"`
	DeviationPct float64   `json:"deviation_pct"`
}

// TrendAt evaluates the fitted model at day index i.
func (f *FitResult) TrendAt(i int) float64 {
	day := float64(i)
	switch f.ModelType {
	case ModelLinearLog:
		return math.Exp(f.Intercept) * math.Pow(day+1, f.Slope)
	case ModelPolynomial2:
		return f.Coefficients[0] + f.Coefficients[1]*day + f.Coefficients[2]*day*day
	case ModelExponential:
		return math.Exp(f.Intercept + f.Slope*day)
	case ModelLogarithmic:
		return f.Intercept + f.Slope*math.Log(day+1)
	default:
		return math.NaN()
	}
}

// TrendSeries evaluates the fitted model at every index 0..n-1.
func (f *FitResult) TrendSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f.TrendAt(i)
	}
	return out
}

// ResidualPoint is one residual of a fit, aligned with the input series.
type ResidualPoint struct {
	Index    int     `json:"index"`
	Residual float64 `json:"residual"`
}

// PredictionPoint is a projected price at a future horizon.
type PredictionPoint struct {
	HorizonDays     int     `json:"horizon_days"`
	PredictedPrice  float64 `json:"predicted_price"`
	ChangePct       float64 `json:"change_pct"`
	ConfidenceLabel string  `json:"confidence_label"`
}

// ConfidenceLevel enumerates the supported confidence-band levels.
type ConfidenceLevel int

const (
	Confidence68 ConfidenceLevel = 68
	Confidence95 ConfidenceLevel = 95
	Confidence99 ConfidenceLevel = 99
)

// ParseConfidenceLevel maps a request string ("68", "95%", ...) onto a
// ConfidenceLevel.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	switch strings.TrimSuffix(strings.TrimSpace(s), "%") {
	case "68":
		return Confidence68, nil
	case "95":
		return Confidence95, nil
	case "99":
		return Confidence99, nil
	default:
		return 0, fmt.Errorf("unknown confidence level %q", s)
	}
}
