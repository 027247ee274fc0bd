package proxy6

import (
	"net/http"
	"strings"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	maxRetries  int
	pacer       Pacer
	userAgent   string
	concurrency int
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:     DefaultBaseURL,
		timeout:     30 * time.Second,
		maxRetries:  DefaultMaxRetries,
		pacer:       FixedDelay(DefaultRequestDelay),
		userAgent:   "proxy6-go",
		concurrency: 2,
	}
}

// WithBaseURL overrides the API endpoint, e.g. for a mock server.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used to send requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTimeout sets the timeout of each individual HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithMaxRetries sets how many times a 503 response is retried.
func WithMaxRetries(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithRequestDelay sets a fixed delay before every attempt. Zero disables it.
func WithRequestDelay(delay time.Duration) Option {
	return func(o *clientOptions) {
		o.pacer = FixedDelay(delay)
	}
}

// WithRateLimit paces attempts with a token bucket of requests per interval.
func WithRateLimit(requests int, interval time.Duration) Option {
	return func(o *clientOptions) {
		o.pacer = RateLimit(requests, interval)
	}
}

// WithPacer sets a custom pacer.
func WithPacer(p Pacer) Option {
	return func(o *clientOptions) {
		if p != nil {
			o.pacer = p
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithConcurrency bounds the number of in-flight calls made by batch helpers.
func WithConcurrency(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}
