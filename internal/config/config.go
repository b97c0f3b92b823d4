package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AnalysisConfig carries the regression engine's request defaults. Every
// engine call still takes explicit parameters; these only fill in request
// fields the client omitted.
type AnalysisConfig struct {
	DefaultWindowDays int    `mapstructure:"default_window_days"`
	DefaultConfidence string `mapstructure:"default_confidence"`
	DefaultHorizons   []int  `mapstructure:"default_horizons"`
	SeriesCacheTTL    string `mapstructure:"series_cache_ttl"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Analysis.SeriesCacheTTL != "" {
		if _, err := time.ParseDuration(config.Analysis.SeriesCacheTTL); err != nil {
			return nil, fmt.Errorf("invalid series cache TTL: %w", err)
		}
	}
	for _, h := range config.Analysis.DefaultHorizons {
		if h <= 0 {
			return nil, fmt.Errorf("analysis horizons must be positive day counts, got %d", h)
		}
	}

	return &config, nil
}

// SeriesCacheTTLDuration returns the parsed cache TTL, falling back to
// 5 minutes.
func (c *AnalysisConfig) SeriesCacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SeriesCacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "kaspametrics")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Analysis
	viper.SetDefault("analysis.default_window_days", 365)
	viper.SetDefault("analysis.default_confidence", "95")
	viper.SetDefault("analysis.default_horizons", []int{7, 30, 90, 180, 365})
	viper.SetDefault("analysis.series_cache_ttl", "5m")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	viper.SetDefault("telemetry.service_name", "kaspametrics-api")
}
