package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "WEATHER_API_URL", "HTTP_TIMEOUT", "FETCH_MAX_RETRIES",
		"FETCH_ON_REQUEST", "REFRESH_INTERVAL", "DATASET_MAX_AGE", "MISSING_VALUES",
		"DATA_MIN_DATE", "DATA_MAX_DATE", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	// Keep godotenv from picking up a developer's .env.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.WeatherAPIURL != "http://localhost:8000" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.FetchOnRequest || cfg.FetchMaxRetries != 0 {
		t.Fatalf("expected fetch-on-request without retries by default")
	}
	if cfg.MissingPolicy() != weather.MissingSkip {
		t.Fatalf("expected skip policy by default")
	}

	lo, hi := cfg.DateBounds()
	if lo != weather.MustParseDate("2020-01-01") || hi != weather.MustParseDate("2024-12-31") {
		t.Fatalf("unexpected bounds %s..%s", lo, hi)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("MISSING_VALUES", "zero")
	t.Setenv("FETCH_ON_REQUEST", "false")
	t.Setenv("REFRESH_INTERVAL", "10m")
	t.Setenv("CORS_ORIGINS", " http://a.test , http://b.test ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.MissingPolicy() != weather.MissingZero {
		t.Fatalf("expected zero policy")
	}
	if cfg.FetchOnRequest || cfg.RefreshInterval != 10*time.Minute {
		t.Fatalf("unexpected refresh settings %+v", cfg)
	}
	if got := cfg.AllowedOrigins(); got != "http://a.test,http://b.test" {
		t.Fatalf("unexpected origins %q", got)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "dashboard.toml")
	content := `
port = "7000"
weather_api_url = "https://weather.example.org"
http_timeout = "20s"
refresh_interval = "1h"
data_max_date = "2023-12-31"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7001" {
		t.Fatalf("environment must override the file, got %s", cfg.Port)
	}
	if cfg.WeatherAPIURL != "https://weather.example.org" || cfg.HTTPTimeout != 20*time.Second {
		t.Fatalf("file not applied: %+v", cfg)
	}
	if cfg.RefreshInterval != time.Hour || cfg.File != path {
		t.Fatalf("unexpected refresh interval %v", cfg.RefreshInterval)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *AppConfig){
		"bad url":         func(c *AppConfig) { c.WeatherAPIURL = "localhost:8000" },
		"bad policy":      func(c *AppConfig) { c.MissingValues = "mean" },
		"reversed bounds": func(c *AppConfig) { c.DataMinDate, c.DataMaxDate = "2024-01-01", "2020-01-01" },
		"no data path":    func(c *AppConfig) { c.FetchOnRequest = false },
		"negative retry":  func(c *AppConfig) { c.FetchMaxRetries = -1 },
		"zero timeout":    func(c *AppConfig) { c.HTTPTimeout = 0 },
	}

	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestInvalidDurationEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT", "soon")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "HTTP_TIMEOUT") {
		t.Fatalf("expected HTTP_TIMEOUT error, got %v", err)
	}
}
