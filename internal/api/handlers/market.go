package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dodgedlol2/KaspaMetrics/internal/config"
	"github.com/dodgedlol2/KaspaMetrics/internal/services"
)

// MarketHandler serves the dashboard's descriptive statistics.
type MarketHandler struct {
	source   services.PriceSource
	stats    *services.MarketStatsService
	defaults config.AnalysisConfig
	logger   *logrus.Logger
}

// NewMarketHandler creates a market stats handler.
func NewMarketHandler(source services.PriceSource, defaults config.AnalysisConfig, logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{
		source:   source,
		stats:    services.NewMarketStatsService(),
		defaults: defaults,
		logger:   logger,
	}
}

type marketStatsResponse struct {
	Window    int                   `json:"window_days"`
	Stats     *services.MarketStats `json:"stats"`
	Timestamp time.Time             `json:"timestamp"`
}

// GetStats handles GET /market/stats?window=.
func (h *MarketHandler) GetStats(c *gin.Context) {
	window, ok := parseWindow(c, h.defaults.DefaultWindowDays)
	if !ok {
		return
	}
	series, ok := fetchSeries(c, h.source, window, h.logger)
	if !ok {
		return
	}

	stats, err := h.stats.Compute(series)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, marketStatsResponse{
		Window:    window,
		Stats:     stats,
		Timestamp: time.Now(),
	})
}
