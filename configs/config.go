package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port            string
	APIKey          string
	Environment     string
	ClusterSeed     int64
	ABCWindowMonths int
	PredictionDays  int
	CLVMonths       int
	CLVDiscountRate float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		APIKey:          getEnv("API_KEY", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ClusterSeed:     getEnvInt64("CLUSTER_SEED", 42),
		ABCWindowMonths: getEnvInt("ABC_WINDOW_MONTHS", 12),
		PredictionDays:  getEnvInt("PREDICTION_DAYS", 90),
		CLVMonths:       getEnvInt("CLV_MONTHS", 3),
		CLVDiscountRate: getEnvFloat("CLV_DISCOUNT_RATE", 0.01),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
