package api

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodgedlol2/KaspaMetrics/internal/config"
	"github.com/dodgedlol2/KaspaMetrics/internal/models"
)

type staticSource struct {
	series *models.PriceSeries
}

func (s *staticSource) FetchSeries(ctx context.Context, windowDays int) (*models.PriceSeries, error) {
	return s.series, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, 60)
	for i := range points {
		points[i] = models.PricePoint{
			Timestamp: base.AddDate(0, 0, i),
			Price:     decimal.NewFromFloat(math.Exp(1.0) * math.Pow(float64(i)+1, 0.4)),
		}
	}
	series, err := models.NewPriceSeries(points)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	SetupRoutes(router, Dependencies{
		Source: &staticSource{series: series},
		Config: &config.Config{
			Analysis: config.AnalysisConfig{
				DefaultWindowDays: 365,
				DefaultConfidence: "95",
				DefaultHorizons:   []int{7, 30},
			},
		},
		Logger: logger,
	})
	return router
}

func TestSetupRoutes_RegistersFullSurface(t *testing.T) {
	router := newTestRouter(t)

	okPaths := []string{
		"/health/live",
		"/api/v1/powerlaw/fit",
		"/api/v1/powerlaw/compare",
		"/api/v1/powerlaw/predictions",
		"/api/v1/powerlaw/bands",
		"/api/v1/powerlaw/residuals",
		"/api/v1/market/stats",
		"/api/v1/export/prices.csv",
	}
	for _, path := range okPaths {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	// Nil db and redis: degraded, not panicking.
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/powerlaw/nope", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
