package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Fundingboard FundingboardConfig `yaml:"fundingboard"`
	Feed         FeedConfig         `yaml:"feed"`
	Refresh      RefreshConfig      `yaml:"refresh"`
	Dashboard    DashboardConfig    `yaml:"dashboard"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Logging      LoggingConfig      `yaml:"logging"`
}

type FundingboardConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// FeedConfig describes the upstream funding-arbitrage API.
type FeedConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RefreshConfig controls the periodic snapshot poller.
type RefreshConfig struct {
	Interval        time.Duration `yaml:"interval"`
	AutoStart       bool          `yaml:"auto_start"`
	ManualRateEvery time.Duration `yaml:"manual_rate_every"`
	ManualRateBurst int           `yaml:"manual_rate_burst"`
}

type DashboardConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Address     string `yaml:"address"`
	HistorySize int    `yaml:"history_size"`
}

type MetricsConfig struct {
	PrometheusAddress string           `yaml:"prometheus_address"`
	CloudWatch        CloudWatchConfig `yaml:"cloudwatch"`
}

type CloudWatchConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	Namespace string `yaml:"namespace"`
	Dashboard string `yaml:"dashboard"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

const (
	// DefaultBaseURL points the feed client at a local development backend
	// when no base URL has been configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultRefreshInterval matches the dashboard's 30 second auto-refresh.
	DefaultRefreshInterval = 30 * time.Second
)

func LoadConfig(path string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Refresh: RefreshConfig{
			AutoStart: true,
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	// Override feed settings from environment variables if available
	if v := os.Getenv("FUNDING_API_URL"); v != "" {
		config.Feed.BaseURL = strings.TrimSpace(v)
	}
	if config.Metrics.CloudWatch.Enabled {
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Metrics.CloudWatch.Region = strings.TrimSpace(v)
		}
	}

	config.Feed.BaseURL = strings.TrimRight(strings.TrimSpace(config.Feed.BaseURL), "/")

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Feed.BaseURL == "" {
		cfg.Feed.BaseURL = DefaultBaseURL
	}
	if cfg.Feed.Timeout <= 0 {
		cfg.Feed.Timeout = 10 * time.Second
	}
	if cfg.Refresh.Interval <= 0 {
		cfg.Refresh.Interval = DefaultRefreshInterval
	}
	if cfg.Refresh.ManualRateEvery <= 0 {
		cfg.Refresh.ManualRateEvery = 2 * time.Second
	}
	if cfg.Refresh.ManualRateBurst <= 0 {
		cfg.Refresh.ManualRateBurst = 2
	}
	if cfg.Dashboard.HistorySize <= 0 {
		cfg.Dashboard.HistorySize = 200
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Fundingboard.Name == "" {
		return fmt.Errorf("fundingboard.name is required")
	}

	if cfg.Fundingboard.Version == "" {
		return fmt.Errorf("fundingboard.version is required")
	}

	if !isValidBaseURL(cfg.Feed.BaseURL) {
		return fmt.Errorf("feed.base_url '%s' is invalid", cfg.Feed.BaseURL)
	}

	if cfg.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s")
	}

	if cfg.Metrics.CloudWatch.Enabled && cfg.Metrics.CloudWatch.Region == "" {
		return fmt.Errorf("metrics.cloudwatch.region is required when CloudWatch is enabled")
	}

	return nil
}

func isValidBaseURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
