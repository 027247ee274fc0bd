package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/proxy6/proxy6"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		Proxy6: Proxy6Config{
			APIKey:       "valid-api-key",
			BaseURL:      proxy6.DefaultBaseURL,
			RequestDelay: time.Second,
			Timeout:      30 * time.Second,
			MaxRetries:   3,
			Concurrency:  2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
proxy6:
  api_key: abc123
  request_delay: 500ms
  rate_limit:
    requests: 3
    interval: 2s
  max_retries: 5
filter:
  presets:
    Expiring: "daysLeft < 3"
    socks: 'type == "socks"'
  default: expiring
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "abc123", cfg.Proxy6.APIKey)
	assert.Equal(t, proxy6.DefaultBaseURL, cfg.Proxy6.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Proxy6.RequestDelay)
	assert.Equal(t, 3, cfg.Proxy6.RateLimit.Requests)
	assert.Equal(t, 2*time.Second, cfg.Proxy6.RateLimit.Interval)
	assert.Equal(t, 30*time.Second, cfg.Proxy6.Timeout)
	assert.Equal(t, 5, cfg.Proxy6.MaxRetries)
	assert.Equal(t, 2, cfg.Proxy6.Concurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)

	expr, err := cfg.Preset("Expiring")
	require.NoError(t, err)
	assert.Equal(t, "daysLeft < 3", expr)

	_, err = cfg.Preset("missing")
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
`)
	t.Setenv("PROXY6_API_KEY", "from-env")
	t.Setenv("PROXY6_PROXY6_MAX_RETRIES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Proxy6.APIKey)
	assert.Equal(t, 7, cfg.Proxy6.MaxRetries)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(cfg *Config) {},
		},
		{
			name:    "missing api key",
			modify:  func(cfg *Config) { cfg.Proxy6.APIKey = "" },
			wantErr: "proxy6.api_key",
		},
		{
			name:    "placeholder api key",
			modify:  func(cfg *Config) { cfg.Proxy6.APIKey = "your-api-key-here" },
			wantErr: "proxy6.api_key",
		},
		{
			name:    "missing base url",
			modify:  func(cfg *Config) { cfg.Proxy6.BaseURL = "" },
			wantErr: "proxy6.base_url",
		},
		{
			name:    "negative delay",
			modify:  func(cfg *Config) { cfg.Proxy6.RequestDelay = -time.Second },
			wantErr: "proxy6.request_delay",
		},
		{
			name:   "zero delay",
			modify: func(cfg *Config) { cfg.Proxy6.RequestDelay = 0 },
		},
		{
			name: "rate limit without interval",
			modify: func(cfg *Config) {
				cfg.Proxy6.RateLimit = RateLimitConfig{Requests: 2}
			},
			wantErr: "proxy6.rate_limit.interval",
		},
		{
			name:    "zero timeout",
			modify:  func(cfg *Config) { cfg.Proxy6.Timeout = 0 },
			wantErr: "proxy6.timeout",
		},
		{
			name:    "negative retries",
			modify:  func(cfg *Config) { cfg.Proxy6.MaxRetries = -1 },
			wantErr: "proxy6.max_retries",
		},
		{
			name:    "zero concurrency",
			modify:  func(cfg *Config) { cfg.Proxy6.Concurrency = 0 },
			wantErr: "proxy6.concurrency",
		},
		{
			name:    "unknown default preset",
			modify:  func(cfg *Config) { cfg.Filter.Default = "nope" },
			wantErr: "filter.default",
		},
		{
			name:    "invalid level",
			modify:  func(cfg *Config) { cfg.Logging.Level = "loud" },
			wantErr: "invalid logging level",
		},
		{
			name:    "empty level",
			modify:  func(cfg *Config) { cfg.Logging.Level = "" },
			wantErr: "invalid logging level",
		},
		{
			name:    "invalid format",
			modify:  func(cfg *Config) { cfg.Logging.Format = "xml" },
			wantErr: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClientOptions(t *testing.T) {
	cfg := validConfig()
	assert.Len(t, cfg.ClientOptions(), 5)

	cfg.Proxy6.RateLimit = RateLimitConfig{Requests: 3, Interval: time.Second}
	assert.Len(t, cfg.ClientOptions(), 5)
}
