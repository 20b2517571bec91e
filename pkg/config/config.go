package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the CLI configuration. The desktop application injects
// its own settings; this package only serves the command-line tool.
type Config struct {
	Linear  LinearConfig
	HTTP    HTTPConfig
	Metrics MetricsConfig
}

// LinearConfig holds Linear-specific configuration
type LinearConfig struct {
	APIKey      string
	TeamID      string
	WorkspaceID string
	Endpoint    string // Empty means the public API endpoint
}

// HTTPConfig holds HTTP client configuration
type HTTPConfig struct {
	TimeoutSeconds int
}

// MetricsConfig holds metrics publishing configuration
type MetricsConfig struct {
	Enabled      bool
	Backend      string // "pushgateway" or "otel"
	URL          string
	JobName      string
	OTelInsecure bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Linear: LinearConfig{
			APIKey:      getEnv("LINEAR_API_KEY", ""),
			TeamID:      getEnv("LINEAR_TEAM_ID", ""),
			WorkspaceID: getEnv("LINEAR_WORKSPACE_ID", ""),
			Endpoint:    getEnv("LINEAR_ENDPOINT", ""),
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
		},
		Metrics: MetricsConfig{
			Enabled:      getEnvBool("METRICS_ENABLED", false),
			Backend:      getEnv("METRICS_BACKEND", "pushgateway"),
			URL:          getEnv("METRICS_URL", ""),
			JobName:      getEnv("METRICS_JOB_NAME", "bugseam_ticketing"),
			OTelInsecure: getEnvBool("METRICS_OTEL_INSECURE", false),
		},
	}

	// Validate required fields
	if cfg.Linear.APIKey == "" {
		return nil, fmt.Errorf("LINEAR_API_KEY is required")
	}
	if cfg.HTTP.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}

	// Validate metrics configuration
	if cfg.Metrics.Enabled {
		switch cfg.Metrics.Backend {
		case "pushgateway", "otel":
			if cfg.Metrics.URL == "" {
				return nil, fmt.Errorf("METRICS_URL is required when METRICS_ENABLED is true")
			}
		default:
			return nil, fmt.Errorf("invalid METRICS_BACKEND: %s (must be 'pushgateway' or 'otel')", cfg.Metrics.Backend)
		}
	}

	return cfg, nil
}

// GetHTTPTimeout converts the second-based configuration to time.Duration
func (c *Config) GetHTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
