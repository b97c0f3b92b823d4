package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "kaspametrics", cfg.Database.DBName)
	assert.Equal(t, 6379, cfg.Redis.Port)

	assert.Equal(t, 365, cfg.Analysis.DefaultWindowDays)
	assert.Equal(t, "95", cfg.Analysis.DefaultConfidence)
	assert.Equal(t, []int{7, 30, 90, 180, 365}, cfg.Analysis.DefaultHorizons)
	assert.Equal(t, 5*time.Minute, cfg.Analysis.SeriesCacheTTLDuration())

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "kaspametrics-api", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_InvalidCacheTTL(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("ANALYSIS_SERIES_CACHE_TTL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}

func TestAnalysisConfig_CacheTTLFallback(t *testing.T) {
	cfg := AnalysisConfig{SeriesCacheTTL: ""}
	assert.Equal(t, 5*time.Minute, cfg.SeriesCacheTTLDuration())

	cfg.SeriesCacheTTL = "90s"
	assert.Equal(t, 90*time.Second, cfg.SeriesCacheTTLDuration())
}
