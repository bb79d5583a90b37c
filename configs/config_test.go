package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	testCases := map[string]string{
		"PORT":              "9090",
		"ENVIRONMENT":       "test",
		"API_KEY":           "test-key",
		"CLUSTER_SEED":      "7",
		"ABC_WINDOW_MONTHS": "6",
		"PREDICTION_DAYS":   "30",
		"CLV_MONTHS":        "12",
		"CLV_DISCOUNT_RATE": "0.05",
	}

	for key, value := range testCases {
		os.Setenv(key, value)
	}

	defer func() {
		for key := range testCases {
			os.Unsetenv(key)
		}
	}()

	cfg := LoadConfig()

	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected Environment to be 'test', got '%s'", cfg.Environment)
	}

	if cfg.APIKey != "test-key" {
		t.Errorf("Expected APIKey to be 'test-key', got '%s'", cfg.APIKey)
	}

	if cfg.ClusterSeed != 7 {
		t.Errorf("Expected ClusterSeed to be 7, got %d", cfg.ClusterSeed)
	}

	if cfg.ABCWindowMonths != 6 {
		t.Errorf("Expected ABCWindowMonths to be 6, got %d", cfg.ABCWindowMonths)
	}

	if cfg.PredictionDays != 30 {
		t.Errorf("Expected PredictionDays to be 30, got %d", cfg.PredictionDays)
	}

	if cfg.CLVMonths != 12 {
		t.Errorf("Expected CLVMonths to be 12, got %d", cfg.CLVMonths)
	}

	if cfg.CLVDiscountRate != 0.05 {
		t.Errorf("Expected CLVDiscountRate to be 0.05, got %f", cfg.CLVDiscountRate)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	vars := []string{
		"PORT", "ENVIRONMENT", "API_KEY", "CLUSTER_SEED",
		"ABC_WINDOW_MONTHS", "PREDICTION_DAYS", "CLV_MONTHS", "CLV_DISCOUNT_RATE",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Expected default Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}

	if cfg.ClusterSeed != 42 {
		t.Errorf("Expected default ClusterSeed to be 42, got %d", cfg.ClusterSeed)
	}

	if cfg.ABCWindowMonths != 12 {
		t.Errorf("Expected default ABCWindowMonths to be 12, got %d", cfg.ABCWindowMonths)
	}

	if cfg.PredictionDays != 90 {
		t.Errorf("Expected default PredictionDays to be 90, got %d", cfg.PredictionDays)
	}

	if cfg.CLVMonths != 3 {
		t.Errorf("Expected default CLVMonths to be 3, got %d", cfg.CLVMonths)
	}

	if cfg.CLVDiscountRate != 0.01 {
		t.Errorf("Expected default CLVDiscountRate to be 0.01, got %f", cfg.CLVDiscountRate)
	}
}

func TestLoadConfigIgnoresUnparseableNumbers(t *testing.T) {
	os.Setenv("CLUSTER_SEED", "not-a-number")
	defer os.Unsetenv("CLUSTER_SEED")

	cfg := LoadConfig()
	if cfg.ClusterSeed != 42 {
		t.Errorf("Expected unparseable CLUSTER_SEED to fall back to 42, got %d", cfg.ClusterSeed)
	}
}
