package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/s0up4200/proxy6/proxy6"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. PROXY6_PROXY6_API_KEY for proxy6.api_key. PROXY6_API_KEY is accepted too.
const EnvPrefix = "PROXY6"

// Load loads the configuration from file and environment. A missing config
// file is only an error when configPath was given explicitly. The result is
// not validated so callers can apply flag overrides first; call Validate.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	return load(v, configPath)
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("proxy6.api_key", EnvPrefix+"_PROXY6_API_KEY", EnvPrefix+"_API_KEY")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".proxy6"))
		}

		// Check /etc
		v.AddConfigPath("/etc/proxy6/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("proxy6.api_key", "")
	v.SetDefault("proxy6.base_url", proxy6.DefaultBaseURL)
	v.SetDefault("proxy6.request_delay", proxy6.DefaultRequestDelay)
	v.SetDefault("proxy6.rate_limit.requests", 0)
	v.SetDefault("proxy6.rate_limit.interval", time.Second)
	v.SetDefault("proxy6.timeout", 30*time.Second)
	v.SetDefault("proxy6.max_retries", proxy6.DefaultMaxRetries)
	v.SetDefault("proxy6.concurrency", 2)

	// Filter defaults
	v.SetDefault("filter.default", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	return validate(c)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Proxy6.APIKey == "" || cfg.Proxy6.APIKey == "your-api-key-here" {
		return fmt.Errorf("proxy6.api_key must be set to a valid API key")
	}

	if cfg.Proxy6.BaseURL == "" {
		return fmt.Errorf("proxy6.base_url is required")
	}

	if cfg.Proxy6.RequestDelay < 0 {
		return fmt.Errorf("proxy6.request_delay must not be negative")
	}

	if cfg.Proxy6.RateLimit.Requests < 0 {
		return fmt.Errorf("proxy6.rate_limit.requests must not be negative")
	}
	if cfg.Proxy6.RateLimit.Requests > 0 && cfg.Proxy6.RateLimit.Interval <= 0 {
		return fmt.Errorf("proxy6.rate_limit.interval must be positive when rate_limit.requests is set")
	}

	if cfg.Proxy6.Timeout <= 0 {
		return fmt.Errorf("proxy6.timeout must be positive")
	}

	if cfg.Proxy6.MaxRetries < 0 {
		return fmt.Errorf("proxy6.max_retries must not be negative")
	}

	if cfg.Proxy6.Concurrency < 1 {
		return fmt.Errorf("proxy6.concurrency must be at least 1")
	}

	if cfg.Filter.Default != "" {
		if _, ok := cfg.Filter.Presets[strings.ToLower(cfg.Filter.Default)]; !ok {
			return fmt.Errorf("filter.default refers to unknown preset: %s", cfg.Filter.Default)
		}
	}

	// Validate logging level
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level)); err != nil || cfg.Logging.Level == "" {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// ClientOptions translates the API settings into client options
func (c *Config) ClientOptions() []proxy6.Option {
	opts := []proxy6.Option{
		proxy6.WithBaseURL(c.Proxy6.BaseURL),
		proxy6.WithTimeout(c.Proxy6.Timeout),
		proxy6.WithMaxRetries(c.Proxy6.MaxRetries),
		proxy6.WithConcurrency(c.Proxy6.Concurrency),
	}

	if c.Proxy6.RateLimit.Requests > 0 {
		opts = append(opts, proxy6.WithRateLimit(c.Proxy6.RateLimit.Requests, c.Proxy6.RateLimit.Interval))
	} else {
		opts = append(opts, proxy6.WithRequestDelay(c.Proxy6.RequestDelay))
	}

	return opts
}

// Preset returns the expression of a named filter preset
func (c *Config) Preset(name string) (string, error) {
	// viper lowercases map keys
	expr, ok := c.Filter.Presets[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("preset '%s' not found in config", name)
	}
	return expr, nil
}
