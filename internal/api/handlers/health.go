package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dodgedlol2/KaspaMetrics/internal/database"
)

var startTime = time.Now()

// HealthHandler reports liveness and dependency health.
type HealthHandler struct {
	db    *database.PostgresDB
	redis *database.RedisClient
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
}

func NewHealthHandler(db *database.PostgresDB, redis *database.RedisClient) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

// HealthCheck reports each dependency individually; the overall status is
// degraded as soon as any dependency fails its ping.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	services := make(map[string]string)

	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			services["database"] = "unhealthy: " + err.Error()
		} else {
			services["database"] = "healthy"
		}
	} else {
		services["database"] = "unhealthy: not configured"
	}

	if h.redis != nil {
		if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "unhealthy: not configured"
	}

	overallStatus := "healthy"
	for _, status := range services {
		if status != "healthy" {
			overallStatus = "unhealthy"
			break
		}
	}

	code := http.StatusOK
	if overallStatus != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  services,
		Version:   os.Getenv("APP_VERSION"),
		Uptime:    time.Since(startTime).String(),
	})
}

// ReadinessCheck is stricter than HealthCheck: the database must answer
// before the instance accepts traffic.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":    false,
				"services": gin.H{"database": "not ready"},
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"ready":    true,
		"services": gin.H{"database": "ready"},
	})
}

// LivenessCheck only proves the process is responsive.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
