package config

import (
	"os"
	"strconv"

	"optiscope/domain/optimization"
	"optiscope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Upload   UploadConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port          string
	MaxConcurrent int64 // analyses running at once
}

// AnalysisConfig holds the default analysis parameters
type AnalysisConfig struct {
	MinProfit           float64
	MaxDrawdown         float64
	TopN                int
	TopValues           int
	AnnualizationFactor float64
}

// UploadConfig bounds what the server accepts
type UploadConfig struct {
	MaxBytes int64
}

// Params converts the defaults into per-run parameters
func (a AnalysisConfig) Params() optimization.Params {
	return optimization.Params{
		Thresholds: optimization.Thresholds{MinProfit: a.MinProfit, MaxDrawdown: a.MaxDrawdown},
		TopN:       a.TopN,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Analysis: *loadAnalysisConfig(),
		Upload:   *loadUploadConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:          getEnvOrDefault("PORT", "8080"),
		MaxConcurrent: getEnvInt64OrDefault("SERVER_MAX_CONCURRENT", 4),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	defaults := optimization.DefaultParams()
	return &AnalysisConfig{
		MinProfit:           getEnvFloatOrDefault("ANALYSIS_MIN_PROFIT", defaults.MinProfit),
		MaxDrawdown:         getEnvFloatOrDefault("ANALYSIS_MAX_DRAWDOWN", defaults.MaxDrawdown),
		TopN:                getEnvIntOrDefault("ANALYSIS_TOP_N", 20),
		TopValues:           getEnvIntOrDefault("ANALYSIS_TOP_VALUES", 5),
		AnnualizationFactor: getEnvFloatOrDefault("ANALYSIS_ANNUALIZATION_FACTOR", 252),
	}
}

func loadUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxBytes: getEnvInt64OrDefault("UPLOAD_MAX_BYTES", 32<<20),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxConcurrent < 1 {
		return errors.ConfigInvalid("SERVER_MAX_CONCURRENT must be at least 1")
	}
	if config.Analysis.MaxDrawdown < 0 {
		return errors.ConfigInvalid("ANALYSIS_MAX_DRAWDOWN must not be negative")
	}
	if config.Analysis.TopN < 1 {
		return errors.ConfigInvalid("ANALYSIS_TOP_N must be positive")
	}
	if config.Analysis.TopValues < 1 {
		return errors.ConfigInvalid("ANALYSIS_TOP_VALUES must be positive")
	}
	if config.Analysis.AnnualizationFactor <= 0 {
		return errors.ConfigInvalid("ANALYSIS_ANNUALIZATION_FACTOR must be positive")
	}
	if config.Upload.MaxBytes < 1 {
		return errors.ConfigInvalid("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
