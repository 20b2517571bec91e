package config

import (
	"os"
	"testing"
	"time"
)

func cleanEnv() {
	vars := []string{
		"LINEAR_API_KEY",
		"LINEAR_TEAM_ID",
		"LINEAR_WORKSPACE_ID",
		"LINEAR_ENDPOINT",
		"HTTP_TIMEOUT_SECONDS",
		"METRICS_ENABLED",
		"METRICS_BACKEND",
		"METRICS_URL",
		"METRICS_JOB_NAME",
		"METRICS_OTEL_INSECURE",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestLoadConfig_Success(t *testing.T) {
	cleanEnv()
	os.Setenv("LINEAR_API_KEY", "lin_api_x")
	os.Setenv("LINEAR_TEAM_ID", "team-1")
	os.Setenv("LINEAR_WORKSPACE_ID", "workspace-1")
	defer cleanEnv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Linear.APIKey != "lin_api_x" {
		t.Errorf("Expected api key 'lin_api_x', got '%s'", cfg.Linear.APIKey)
	}
	if cfg.Linear.TeamID != "team-1" {
		t.Errorf("Expected team id 'team-1', got '%s'", cfg.Linear.TeamID)
	}
	if cfg.Linear.WorkspaceID != "workspace-1" {
		t.Errorf("Expected workspace id 'workspace-1', got '%s'", cfg.Linear.WorkspaceID)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cleanEnv()
	os.Setenv("LINEAR_API_KEY", "lin_api_x")
	defer cleanEnv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.Linear.Endpoint != "" {
		t.Errorf("Expected empty endpoint default, got '%s'", cfg.Linear.Endpoint)
	}
	if cfg.HTTP.TimeoutSeconds != 30 {
		t.Errorf("Expected timeout to default to 30, got %d", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics to default to disabled")
	}
	if cfg.Metrics.Backend != "pushgateway" {
		t.Errorf("Expected metrics backend to default to 'pushgateway', got '%s'", cfg.Metrics.Backend)
	}
	if cfg.Metrics.JobName != "bugseam_ticketing" {
		t.Errorf("Expected job name to default to 'bugseam_ticketing', got '%s'", cfg.Metrics.JobName)
	}
}

func TestLoadConfig_MissingAPIKey(t *testing.T) {
	cleanEnv()

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error when LINEAR_API_KEY is missing")
	}
}

func TestLoadConfig_InvalidTimeout(t *testing.T) {
	cleanEnv()
	os.Setenv("LINEAR_API_KEY", "lin_api_x")
	os.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	defer cleanEnv()

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("Expected error for non-positive timeout")
	}
}

func TestLoadConfig_MetricsValidation(t *testing.T) {
	tests := []struct {
		name      string
		backend   string
		url       string
		expectErr bool
	}{
		{"Pushgateway with URL", "pushgateway", "http://pushgateway:9091", false},
		{"OTel with URL", "otel", "otel-collector:4318", false},
		{"Pushgateway without URL", "pushgateway", "", true},
		{"Unknown backend", "statsd", "http://statsd:8125", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv()
			os.Setenv("LINEAR_API_KEY", "lin_api_x")
			os.Setenv("METRICS_ENABLED", "true")
			os.Setenv("METRICS_BACKEND", tt.backend)
			if tt.url != "" {
				os.Setenv("METRICS_URL", tt.url)
			}
			defer cleanEnv()

			_, err := LoadConfig()
			if tt.expectErr && err == nil {
				t.Error("Expected an error")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestGetHTTPTimeout(t *testing.T) {
	cleanEnv()
	os.Setenv("LINEAR_API_KEY", "lin_api_x")
	os.Setenv("HTTP_TIMEOUT_SECONDS", "45")
	defer cleanEnv()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.GetHTTPTimeout() != 45*time.Second {
		t.Errorf("Expected 45s timeout, got %v", cfg.GetHTTPTimeout())
	}
}
