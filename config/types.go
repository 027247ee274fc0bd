package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Proxy6  Proxy6Config  `mapstructure:"proxy6"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Proxy6Config holds the API connection and pacing settings
type Proxy6Config struct {
	APIKey       string          `mapstructure:"api_key"`
	BaseURL      string          `mapstructure:"base_url"`
	RequestDelay time.Duration   `mapstructure:"request_delay"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
	Timeout      time.Duration   `mapstructure:"timeout"`
	MaxRetries   int             `mapstructure:"max_retries"`
	Concurrency  int             `mapstructure:"concurrency"`
}

// RateLimitConfig replaces the fixed request delay with a token bucket when
// Requests is set
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Interval time.Duration `mapstructure:"interval"`
}

// FilterConfig contains named filter expressions for the list command
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
	Default string            `mapstructure:"default"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
