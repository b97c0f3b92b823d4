package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dodgedlol2/KaspaMetrics/internal/config"
	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/dodgedlol2/KaspaMetrics/internal/services"
)

// PowerLawHandler exposes the regression engine over HTTP. Every request
// carries its parameters explicitly; the handler only fills in configured
// defaults for omitted fields.
type PowerLawHandler struct {
	source      services.PriceSource
	fitter      *services.ModelFitter
	classifier  *services.DeviationClassifier
	comparator  *services.ModelComparator
	predictor   *services.Predictor
	bandBuilder *services.ConfidenceBandBuilder
	diagnostics *services.Diagnostics
	defaults    config.AnalysisConfig
	logger      *logrus.Logger
}

// NewPowerLawHandler wires the engine components behind the HTTP surface.
func NewPowerLawHandler(source services.PriceSource, defaults config.AnalysisConfig, logger *logrus.Logger) *PowerLawHandler {
	fitter := services.NewModelFitter()
	return &PowerLawHandler{
		source:      source,
		fitter:      fitter,
		classifier:  services.NewDeviationClassifier(),
		comparator:  services.NewModelComparator(fitter, logger),
		predictor:   services.NewPredictor(),
		bandBuilder: services.NewConfidenceBandBuilder(),
		diagnostics: services.NewDiagnostics(),
		defaults:    defaults,
		logger:      logger,
	}
}

type fitResponse struct {
	Window    int               `json:"window_days"`
	Fit       *models.FitResult `json:"fit"`
	Valuation string            `json:"valuation"`
	Timestamp time.Time         `json:"timestamp"`
}

// GetFit handles GET /powerlaw/fit?window=&model=.
func (h *PowerLawHandler) GetFit(c *gin.Context) {
	window, ok := parseWindow(c, h.defaults.DefaultWindowDays)
	if !ok {
		return
	}
	model, err := models.ParseModelType(c.DefaultQuery("model", string(models.ModelLinearLog)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, ok := fetchSeries(c, h.source, window, h.logger)
	if !ok {
		return
	}

	fit, err := h.fitter.Fit(series, model)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}
	_, label, err := h.classifier.Classify(fit)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, fitResponse{
		Window:    window,
		Fit:       fit,
		Valuation: label,
		Timestamp: time.Now(),
	})
}

type compareResponse struct {
	Window             int                                    `json:"window_days"`
	Results            map[models.ModelType]*models.FitResult `json:"results"`
	BestModel          models.ModelType                       `json:"best_model"`
	EnsembleTrendValue float64                                `json:"ensemble_trend_value"`
	EnsembleDeviation  float64                                `json:"ensemble_deviation_pct"`
	EnsembleValuation  string                                 `json:"ensemble_valuation"`
	Timestamp          time.Time                              `json:"timestamp"`
}

// GetComparison handles GET /powerlaw/compare?window=. All four model
// families are fitted; families that fail to converge are absent from the
// result map.
func (h *PowerLawHandler) GetComparison(c *gin.Context) {
	window, ok := parseWindow(c, h.defaults.DefaultWindowDays)
	if !ok {
		return
	}
	series, ok := fetchSeries(c, h.source, window, h.logger)
	if !ok {
		return
	}

	result, err := h.comparator.Compare(series, nil)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	currentPrice, _ := series.Last().Price.Float64()
	if math.Abs(result.EnsembleTrendValue) < 1e-12 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "ensemble trend value is degenerate"})
		return
	}
	ensembleDev := (currentPrice - result.EnsembleTrendValue) / result.EnsembleTrendValue * 100
	_, label, err := h.classifier.Classify(&models.FitResult{
		ModelType:    result.BestModel,
		TrendValue:   result.EnsembleTrendValue,
		DeviationPct: ensembleDev,
	})
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, compareResponse{
		Window:             window,
		Results:            result.Results,
		BestModel:          result.BestModel,
		EnsembleTrendValue: result.EnsembleTrendValue,
		EnsembleDeviation:  ensembleDev,
		EnsembleValuation:  label,
		Timestamp:          time.Now(),
	})
}

type predictionsResponse struct {
	Window      int                      `json:"window_days"`
	Model       models.ModelType         `json:"model_type"`
	LastPrice   float64                  `json:"last_price"`
	Predictions []models.PredictionPoint `json:"predictions"`
	Timestamp   time.Time                `json:"timestamp"`
}

// GetPredictions handles GET /powerlaw/predictions?window=&model=&horizons=.
// Horizons are a comma-separated list of day counts; output preserves the
// requested order.
func (h *PowerLawHandler) GetPredictions(c *gin.Context) {
	window, ok := parseWindow(c, h.defaults.DefaultWindowDays)
	if !ok {
		return
	}
	model, err := models.ParseModelType(c.DefaultQuery("model", string(models.ModelLinearLog)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	horizons, err := h.parseHorizons(c.Query("horizons"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, ok := fetchSeries(c, h.source, window, h.logger)
	if !ok {
		return
	}

	fit, err := h.fitter.Fit(series, model)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	lastPrice, _ := series.Last().Price.Float64()
	predictions, err := h.predictor.Predict(fit, lastPrice, horizons)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, predictionsResponse{
		Window:      window,
		Model:       model,
		LastPrice:   lastPrice,
		Predictions: predictions,
		Timestamp:   time.Now(),
	})
}

type bandsResponse struct {
	Window     int              `json:"window_days"`
	Model      models.ModelType `json:"model_type"`
	Confidence string           `json:"confidence_level"`
	Timestamps []time.Time      `json:"timestamps"`
	Trend      []float64        `json:"trend"`
	Upper      []float64        `json:"upper"`
	Lower      []float64        `json:"lower"`
}

// GetBands handles GET /powerlaw/bands?window=&model=&confidence=.
func (h *PowerLawHandler) GetBands(c *gin.Context) {
	window, ok := parseWindow(c, h.defaults.DefaultWindowDays)
	if !ok {
		return
	}
	model, err := models.ParseModelType(c.DefaultQuery("model", string(models.ModelLinearLog)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level, err := models.ParseConfidenceLevel(c.DefaultQuery("confidence", h.defaults.DefaultConfidence))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, ok := fetchSeries(c, h.source, window, h.logger)
	if !ok {
		return
	}

	fit, err := h.fitter.Fit(series, model)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	trend := fit.TrendSeries(series.Len())
	upper, lower, err := h.bandBuilder.Bands(trend, fit.StdError, level)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, bandsResponse{
		Window:     window,
		Model:      model,
		Confidence: strconv.Itoa(int(level)) + "%",
		Timestamps: series.Timestamps(),
		Trend:      trend,
		Upper:      upper,
		Lower:      lower,
	})
}

type residualsResponse struct {
	Window       int                    `json:"window_days"`
	Model        models.ModelType       `json:"model_type"`
	Residuals    []models.ResidualPoint `json:"residuals"`
	MeanResidual float64                `json:"mean_residual"`
	StdResidual  float64                `json:"std_residual"`
	DurbinWatson *float64               `json:"durbin_watson"`
}

// GetResiduals handles GET /powerlaw/residuals?window=&model=. The
// Durbin-Watson statistic is null when it is undefined for the fit (zero
// residual sum of squares); the residuals themselves are still returned.
func (h *PowerLawHandler) GetResiduals(c *gin.Context) {
	window, ok := parseWindow(c, h.defaults.DefaultWindowDays)
	if !ok {
		return
	}
	model, err := models.ParseModelType(c.DefaultQuery("model", string(models.ModelLinearLog)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, ok := fetchSeries(c, h.source, window, h.logger)
	if !ok {
		return
	}

	fit, err := h.fitter.Fit(series, model)
	if err != nil {
		renderEngineError(c, err, h.logger)
		return
	}

	residuals := h.diagnostics.Residuals(series, fit)
	values := services.ResidualValues(residuals)

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	resp := residualsResponse{
		Window:       window,
		Model:        model,
		Residuals:    residuals,
		MeanResidual: mean,
		StdResidual:  math.Sqrt(variance),
	}
	if dw, err := h.diagnostics.DurbinWatson(values); err == nil {
		resp.DurbinWatson = &dw
	} else {
		h.logger.WithError(err).Debug("durbin-watson undefined for fit")
	}

	c.JSON(http.StatusOK, resp)
}

// parseWindow reads the window query parameter: a positive day count or
// "all". A missing parameter falls back to the configured default.
func parseWindow(c *gin.Context, defaultDays int) (int, bool) {
	raw := strings.ToLower(strings.TrimSpace(c.Query("window")))
	if raw == "" {
		return defaultDays, true
	}
	if raw == "all" {
		return models.WindowAll, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive day count or \"all\""})
		return 0, false
	}
	return days, true
}

func (h *PowerLawHandler) parseHorizons(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return h.defaults.DefaultHorizons, nil
	}
	parts := strings.Split(raw, ",")
	horizons := make([]int, 0, len(parts))
	for _, part := range parts {
		days, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || days <= 0 {
			return nil, errors.New("horizons must be a comma-separated list of positive day counts")
		}
		horizons = append(horizons, days)
	}
	return horizons, nil
}

// fetchSeries resolves the price series or writes the error response.
func fetchSeries(c *gin.Context, source services.PriceSource, window int, logger *logrus.Logger) (*models.PriceSeries, bool) {
	series, err := source.FetchSeries(c.Request.Context(), window)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSeries) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "not enough usable price history for this window"})
			return nil, false
		}
		logger.WithError(err).Error("failed to fetch price series")
		c.JSON(http.StatusBadGateway, gin.H{"error": "price data source unavailable"})
		return nil, false
	}
	return series, true
}

// renderEngineError maps engine failures onto HTTP statuses. Engine errors
// are client-visible analysis problems, not server faults.
func renderEngineError(c *gin.Context, err error, logger *logrus.Logger) {
	switch {
	case errors.Is(err, services.ErrInsufficientData),
		errors.Is(err, services.ErrNonPositivePrice),
		errors.Is(err, services.ErrSingularFit),
		errors.Is(err, services.ErrComputation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.WithError(err).Error("unexpected analysis failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}
