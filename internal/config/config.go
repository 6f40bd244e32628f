package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `json:"server"`
	MarketData MarketDataConfig `json:"market_data"`
	Cache      CacheConfig      `json:"cache"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
	Portfolio  PortfolioConfig  `json:"portfolio"`
	Coins      CoinsConfig      `json:"coins"`
	Logging    LoggingConfig    `json:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// MarketDataConfig holds configuration for the external market-data source
type MarketDataConfig struct {
	BaseURL    string        `json:"base_url"`
	VsCurrency string        `json:"vs_currency"`
	Timeout    time.Duration `json:"timeout"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	TTL             time.Duration `json:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// RateLimitConfig holds the ceilings for the two outbound limiters and the
// inbound per-IP limiter. The orchestration layer and the raw client keep
// independent budgets; callers must not assume a single global one.
type RateLimitConfig struct {
	MarketRequestsPerMinute int           `json:"market_requests_per_minute"`
	ClientRequestsPerMinute int           `json:"client_requests_per_minute"`
	ServerRequestsPerMinute int           `json:"server_requests_per_minute"`
	Window                  time.Duration `json:"window"`
}

// PortfolioConfig holds portfolio persistence and revaluation configuration
type PortfolioConfig struct {
	DataDir         string        `json:"data_dir"`
	StorageKey      string        `json:"storage_key"`
	RefreshInterval time.Duration `json:"refresh_interval"`
}

// CoinsConfig holds alias-table configuration
type CoinsConfig struct {
	AliasFile string `json:"alias_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string   `json:"level"`
	Environment string   `json:"environment"`
	OutputPaths []string `json:"output_paths"`
	File        string   `json:"file"`
}

// LoadConfig loads configuration from the environment with defaults.
// A .env file in the working directory is applied first if present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		MarketData: MarketDataConfig{
			BaseURL:    getEnv("MARKET_DATA_BASE_URL", "https://api.coingecko.com/api/v3"),
			VsCurrency: getEnv("MARKET_DATA_VS_CURRENCY", "usd"),
			Timeout:    getDurationEnv("MARKET_DATA_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL:             getDurationEnv("CACHE_TTL", 5*time.Minute),
			CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		RateLimit: RateLimitConfig{
			MarketRequestsPerMinute: getIntEnv("RATE_LIMIT_MARKET_PER_MINUTE", 50),
			ClientRequestsPerMinute: getIntEnv("RATE_LIMIT_CLIENT_PER_MINUTE", 10),
			ServerRequestsPerMinute: getIntEnv("RATE_LIMIT_SERVER_PER_MINUTE", 120),
			Window:                  getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		},
		Portfolio: PortfolioConfig{
			DataDir:         getEnv("PORTFOLIO_DATA_DIR", "data"),
			StorageKey:      getEnv("PORTFOLIO_STORAGE_KEY", "portfolio"),
			RefreshInterval: getDurationEnv("PORTFOLIO_REFRESH_INTERVAL", 2*time.Minute),
		},
		Coins: CoinsConfig{
			AliasFile: getEnv("COIN_ALIAS_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Environment: getEnv("LOG_ENVIRONMENT", "development"),
			OutputPaths: getStringSliceEnv("LOG_OUTPUT_PATHS", []string{"stdout"}),
			File:        getEnv("LOG_FILE", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}
