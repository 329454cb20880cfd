package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port                    string        `yaml:"port"`
	Environment             string        `yaml:"environment"`
	LogLevel                string        `yaml:"log_level"`
	PredictionServiceURL    string        `yaml:"prediction_service_url"`
	PredictionPath          string        `yaml:"prediction_path"`
	PredictionHealthPath    string        `yaml:"prediction_health_path"`
	PredictionTimeout       time.Duration `yaml:"prediction_timeout"`
	PredictionRatePerMinute int           `yaml:"prediction_rate_per_minute"`
	CacheTTL                time.Duration `yaml:"cache_ttl"`
	QuoteCacheTTL           time.Duration `yaml:"quote_cache_ttl"`
	QuoteBaseURL            string        `yaml:"quote_base_url"`
	RateLimitPerMinute      int           `yaml:"rate_limit_per_minute"`
}

// ErrMissingServiceURL is returned when no prediction service is configured.
var ErrMissingServiceURL = errors.New("PREDICTION_SERVICE_URL is required")

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:                    "8080",
		Environment:             "production",
		LogLevel:                "info",
		PredictionPath:          "/api/predict",
		PredictionHealthPath:    "/openapi.json",
		PredictionTimeout:       10 * time.Minute, // the service trains a model per request
		PredictionRatePerMinute: 30,
		CacheTTL:                15 * time.Minute,
		QuoteCacheTTL:           time.Minute,
		RateLimitPerMinute:      100,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	return LoadWith(nil)
}

// LoadWith is Load with a final override step applied before validation.
// Command line flags use it.
func LoadWith(override func(*Config)) (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.PredictionServiceURL = getEnv("PREDICTION_SERVICE_URL", cfg.PredictionServiceURL)
	cfg.PredictionPath = getEnv("PREDICTION_PATH", cfg.PredictionPath)
	cfg.PredictionHealthPath = getEnv("PREDICTION_HEALTH_PATH", cfg.PredictionHealthPath)
	cfg.QuoteBaseURL = getEnv("QUOTE_BASE_URL", cfg.QuoteBaseURL)

	var err error
	if cfg.PredictionTimeout, err = getEnvDuration("PREDICTION_TIMEOUT", cfg.PredictionTimeout); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}
	if cfg.QuoteCacheTTL, err = getEnvDuration("QUOTE_CACHE_TTL", cfg.QuoteCacheTTL); err != nil {
		return nil, err
	}
	if cfg.PredictionRatePerMinute, err = getEnvInt("PREDICTION_RATE_PER_MINUTE", cfg.PredictionRatePerMinute); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute); err != nil {
		return nil, err
	}

	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if c.PredictionServiceURL == "" {
		return ErrMissingServiceURL
	}
	if !strings.HasPrefix(c.PredictionServiceURL, "http://") && !strings.HasPrefix(c.PredictionServiceURL, "https://") {
		return fmt.Errorf("PREDICTION_SERVICE_URL must be an http(s) URL, got %q", c.PredictionServiceURL)
	}
	if c.PredictionTimeout <= 0 {
		return fmt.Errorf("PREDICTION_TIMEOUT must be positive")
	}
	if c.CacheTTL < 0 || c.QuoteCacheTTL < 0 {
		return fmt.Errorf("cache TTLs cannot be negative")
	}
	if c.PredictionRatePerMinute < 0 || c.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate limits cannot be negative")
	}
	return nil
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == "local"
}

// PredictionEndpoint is the full URL posted to for predictions.
func (c *Config) PredictionEndpoint() string {
	return strings.TrimRight(c.PredictionServiceURL, "/") + c.PredictionPath
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
