package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dodgedlol2/KaspaMetrics/internal/api/handlers"
	"github.com/dodgedlol2/KaspaMetrics/internal/config"
	"github.com/dodgedlol2/KaspaMetrics/internal/database"
	"github.com/dodgedlol2/KaspaMetrics/internal/services"
)

// Dependencies carries everything the route tree needs. Database handles may
// be nil in tests; the health endpoints report that instead of panicking.
type Dependencies struct {
	Source services.PriceSource
	DB     *database.PostgresDB
	Redis  *database.RedisClient
	Config *config.Config
	Logger *logrus.Logger
}

// SetupRoutes registers the full HTTP surface on the router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Config.Telemetry.Enabled {
		router.Use(otelgin.Middleware(deps.Config.Telemetry.ServiceName))
	}

	health := handlers.NewHealthHandler(deps.DB, deps.Redis)
	router.GET("/health", health.HealthCheck)
	router.GET("/health/ready", health.ReadinessCheck)
	router.GET("/health/live", health.LivenessCheck)

	powerLaw := handlers.NewPowerLawHandler(deps.Source, deps.Config.Analysis, deps.Logger)
	marketStats := handlers.NewMarketHandler(deps.Source, deps.Config.Analysis, deps.Logger)
	export := handlers.NewExportHandler(deps.Source, deps.Config.Analysis, deps.Logger)

	v1 := router.Group("/api/v1")
	{
		powerlaw := v1.Group("/powerlaw")
		{
			powerlaw.GET("/fit", powerLaw.GetFit)
			powerlaw.GET("/compare", powerLaw.GetComparison)
			powerlaw.GET("/predictions", powerLaw.GetPredictions)
			powerlaw.GET("/bands", powerLaw.GetBands)
			powerlaw.GET("/residuals", powerLaw.GetResiduals)
		}

		market := v1.Group("/market")
		{
			market.GET("/stats", marketStats.GetStats)
		}

		exports := v1.Group("/export")
		{
			exports.GET("/prices.csv", export.GetPricesCSV)
		}
	}
}
