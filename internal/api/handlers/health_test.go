package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHealthHandler(nil, nil)
	router.GET("/health", handler.HealthCheck)
	router.GET("/health/ready", handler.ReadinessCheck)
	router.GET("/health/live", handler.LivenessCheck)
	return router
}

func TestHealthHandler_UnconfiguredDependencies(t *testing.T) {
	router := newHealthRouter()

	w := doRequest(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Contains(t, resp.Services["database"], "not configured")
	assert.Contains(t, resp.Services["redis"], "not configured")
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealthHandler_LivenessAlwaysOK(t *testing.T) {
	router := newHealthRouter()

	w := doRequest(router, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp["status"])
}

func TestHealthHandler_ReadinessWithoutDatabase(t *testing.T) {
	router := newHealthRouter()

	// A nil pool means nothing to wait for; the instance is ready.
	w := doRequest(router, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
}
