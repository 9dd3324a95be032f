package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/stockpulse/ranker/internal/domain"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port    int
	DevMode bool

	// Database
	DatabasePath string

	// Validation
	HorizonMonths    int
	TopN             int
	FetchConcurrency int
	FetchTimeout     time.Duration
	BenchmarkSymbol  string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("PORT", 8090),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		DatabasePath:     getEnv("DATABASE_PATH", "data/ranker.db"),
		HorizonMonths:    getEnvAsInt("HORIZON_MONTHS", 12),
		TopN:             getEnvAsInt("TOP_N", 10),
		FetchConcurrency: getEnvAsInt("FETCH_CONCURRENCY", 4),
		FetchTimeout:     time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		BenchmarkSymbol:  getEnv("BENCHMARK_SYMBOL", "^NSEI"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return domain.NewConfigError("PORT", "must be between 1 and 65535, got %d", c.Port)
	}
	if c.DatabasePath == "" {
		return domain.NewConfigError("DATABASE_PATH", "must not be empty")
	}
	if c.HorizonMonths < 1 {
		return domain.NewConfigError("HORIZON_MONTHS", "must be at least 1, got %d", c.HorizonMonths)
	}
	if c.TopN < 1 {
		return domain.NewConfigError("TOP_N", "must be at least 1, got %d", c.TopN)
	}
	if c.FetchConcurrency < 1 {
		return domain.NewConfigError("FETCH_CONCURRENCY", "must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.FetchTimeout <= 0 {
		return domain.NewConfigError("FETCH_TIMEOUT_SECONDS", "must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
