package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type AppConfig struct {
	Port string `toml:"port"`

	// WeatherAPIURL is the base URL of the remote weather API serving
	// /api/raw-data/ and /api/ml_data/pred/.
	WeatherAPIURL   string        `toml:"weather_api_url"`
	HTTPTimeout     time.Duration `toml:"http_timeout"`
	FetchMaxRetries int           `toml:"fetch_max_retries"`

	// FetchOnRequest pulls the full data set on every query.
	FetchOnRequest bool `toml:"fetch_on_request"`
	// RefreshInterval controls how often data is refreshed in the background (0 = never).
	RefreshInterval time.Duration `toml:"refresh_interval"`
	// DatasetMaxAge marks committed data as stale after this long (0 = never).
	DatasetMaxAge time.Duration `toml:"dataset_max_age"`

	// MissingValues is "skip" or "zero".
	MissingValues string `toml:"missing_values"`

	// Selectable date bounds, YYYY-MM-DD.
	DataMinDate string `toml:"data_min_date"`
	DataMaxDate string `toml:"data_max_date"`

	CORSOrigins string `toml:"cors_origins"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool `toml:"-"`
	// File is the TOML file the configuration was read from, if any.
	File string `toml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() *AppConfig {
	return &AppConfig{
		Port:            "8080",
		WeatherAPIURL:   "http://localhost:8000",
		HTTPTimeout:     15 * time.Second,
		FetchMaxRetries: 0,
		FetchOnRequest:  true,
		RefreshInterval: 0,
		DatasetMaxAge:   0,
		MissingValues:   "skip",
		DataMinDate:     "2020-01-01",
		DataMaxDate:     "2024-12-31",
		CORSOrigins:     "*",
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load reads configuration from defaults, an optional TOML file named by
// CONFIG_FILE, and finally the environment (including a .env file).
func Load() (*AppConfig, error) {
	envLoaded := godotenv.Load() == nil

	cfg := Default()
	cfg.EnvFileLoaded = envLoaded

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("invalid CONFIG_FILE %s: %w", path, err)
		}
		cfg.File = path
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	var err error

	c.Port = getenvDefault("PORT", c.Port)
	c.WeatherAPIURL = getenvDefault("WEATHER_API_URL", c.WeatherAPIURL)
	c.FetchMaxRetries = getenvInt("FETCH_MAX_RETRIES", c.FetchMaxRetries)
	c.MissingValues = getenvDefault("MISSING_VALUES", c.MissingValues)
	c.DataMinDate = getenvDefault("DATA_MIN_DATE", c.DataMinDate)
	c.DataMaxDate = getenvDefault("DATA_MAX_DATE", c.DataMaxDate)
	c.CORSOrigins = getenvDefault("CORS_ORIGINS", c.CORSOrigins)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenvDefault("LOG_FORMAT", c.LogFormat)

	if c.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", c.RefreshInterval); err != nil {
		return err
	}
	if c.DatasetMaxAge, err = getenvDuration("DATASET_MAX_AGE", c.DatasetMaxAge); err != nil {
		return err
	}
	if c.FetchOnRequest, err = getenvBool("FETCH_ON_REQUEST", c.FetchOnRequest); err != nil {
		return err
	}
	return nil
}

// Validate rejects inconsistent settings.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if u, err := url.Parse(c.WeatherAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid WEATHER_API_URL %q", c.WeatherAPIURL))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	if c.FetchMaxRetries < 0 {
		errs = append(errs, errors.New("FETCH_MAX_RETRIES must not be negative"))
	}
	if c.RefreshInterval < 0 || c.DatasetMaxAge < 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL and DATASET_MAX_AGE must not be negative"))
	}
	if !c.FetchOnRequest && c.RefreshInterval == 0 {
		errs = append(errs, errors.New("REFRESH_INTERVAL is required when FETCH_ON_REQUEST is false"))
	}
	if _, err := weather.ParseMissingPolicy(c.MissingValues); err != nil {
		errs = append(errs, fmt.Errorf("invalid MISSING_VALUES: %w", err))
	}

	lo, loErr := weather.ParseDate(c.DataMinDate)
	hi, hiErr := weather.ParseDate(c.DataMaxDate)
	switch {
	case loErr != nil:
		errs = append(errs, fmt.Errorf("invalid DATA_MIN_DATE: %w", loErr))
	case hiErr != nil:
		errs = append(errs, fmt.Errorf("invalid DATA_MAX_DATE: %w", hiErr))
	case hi.Before(lo):
		errs = append(errs, errors.New("DATA_MIN_DATE must not be after DATA_MAX_DATE"))
	}

	return errors.Join(errs...)
}

// MissingPolicy returns the parsed MissingValues setting.
func (c *AppConfig) MissingPolicy() weather.MissingPolicy {
	p, _ := weather.ParseMissingPolicy(c.MissingValues)
	return p
}

// DateBounds returns the parsed selectable date bounds.
func (c *AppConfig) DateBounds() (weather.Date, weather.Date) {
	lo, _ := weather.ParseDate(c.DataMinDate)
	hi, _ := weather.ParseDate(c.DataMaxDate)
	return lo, hi
}

// AllowedOrigins returns CORSOrigins normalised for the CORS middleware.
func (c *AppConfig) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
