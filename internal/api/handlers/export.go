package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dodgedlol2/KaspaMetrics/internal/config"
	"github.com/dodgedlol2/KaspaMetrics/internal/models"
	"github.com/dodgedlol2/KaspaMetrics/internal/services"
)

// ExportHandler streams price history as CSV downloads.
type ExportHandler struct {
	source   services.PriceSource
	fitter   *services.ModelFitter
	defaults config.AnalysisConfig
	logger   *logrus.Logger
}

// NewExportHandler creates a CSV export handler.
func NewExportHandler(source services.PriceSource, defaults config.AnalysisConfig, logger *logrus.Logger) *ExportHandler {
	return &ExportHandler{
		source:   source,
		fitter:   services.NewModelFitter(),
		defaults: defaults,
		logger:   logger,
	}
}

// GetPricesCSV handles GET /export/prices.csv?window=&model=. When a model
// is given (or defaulted) the file carries a trend column alongside each
// observed price; pass model=none for raw history only.
func (h *ExportHandler) GetPricesCSV(c *gin.Context) {
	window, ok := parseWindow(c, h.defaults.DefaultWindowDays)
	if !ok {
		return
	}

	withTrend := true
	modelType := models.ModelLinearLog
	if raw := c.Query("model"); raw != "" {
		if raw == "none" {
			withTrend = false
		} else {
			parsed, err := models.ParseModelType(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			modelType = parsed
		}
	}

	series, ok := fetchSeries(c, h.source, window, h.logger)
	if !ok {
		return
	}

	var trend []float64
	if withTrend {
		fit, err := h.fitter.Fit(series, modelType)
		if err != nil {
			renderEngineError(c, err, h.logger)
			return
		}
		trend = fit.TrendSeries(series.Len())
	}

	filename := fmt.Sprintf("kaspa_prices_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	header := []string{"timestamp", "price"}
	if withTrend {
		header = append(header, "trend_"+string(modelType))
	}
	if err := w.Write(header); err != nil {
		h.logger.WithError(err).Error("csv export write failed")
		return
	}
	for i := 0; i < series.Len(); i++ {
		point := series.At(i)
		record := []string{
			point.Timestamp.UTC().Format(time.RFC3339),
			point.Price.String(),
		}
		if withTrend {
			record = append(record, strconv.FormatFloat(trend[i], 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			h.logger.WithError(err).Error("csv export write failed")
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.logger.WithError(err).Error("csv export flush failed")
	}
}
