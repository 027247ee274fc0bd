package proxy6

import (
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gogama/httpx"
	"github.com/gogama/httpx/request"
	"github.com/gogama/httpx/retry"
	"github.com/gogama/httpx/timeout"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the proxy6.net API endpoint
	DefaultBaseURL = "https://proxy6.net/api"
	// DefaultMaxRetries is how many times a 503 response is retried before
	// the call fails with KindRateLimited
	DefaultMaxRetries = 3
)

// Client is a blocking proxy6 API client. It is safe for concurrent use.
type Client struct {
	baseURL     string
	apiKey      string
	userAgent   string
	pacer       Pacer
	concurrency int
	http        *httpx.Client
	logger      zerolog.Logger
}

// NewClient creates a new proxy6 client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("proxy6 API key is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		// Every call gets a fresh connection
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		}
	}

	c := &Client{
		baseURL:     o.baseURL,
		apiKey:      apiKey,
		userAgent:   o.userAgent,
		pacer:       o.pacer,
		concurrency: o.concurrency,
		logger:      logger,
	}

	handlers := &httpx.HandlerGroup{}
	handlers.PushBack(httpx.AfterAttempt, httpx.HandlerFunc(c.logAttempt))

	c.http = &httpx.Client{
		HTTPDoer: httpClient,
		RetryPolicy: retry.NewPolicy(
			retry.Times(o.maxRetries).And(retry.StatusCode(http.StatusServiceUnavailable)),
			pacingWaiter{c.pacer},
		),
		TimeoutPolicy: timeout.Fixed(o.timeout),
		Handlers:      handlers,
	}

	return c, nil
}

// Async returns the non-blocking view of the client
func (c *Client) Async() *AsyncClient {
	return &AsyncClient{c: c}
}

func (c *Client) logAttempt(_ httpx.Event, e *request.Execution) {
	ev := c.logger.Debug().
		Str("method", path.Base(e.Plan.URL.Path)).
		Int("attempt", e.Attempt+1)
	if e.Err != nil {
		ev = ev.Err(c.redact(e.Err))
	} else {
		ev = ev.Int("status", e.StatusCode())
	}
	ev.Msg("proxy6 API attempt")
}

// pacingWaiter makes the httpx retry loop wait for the pacer between attempts
type pacingWaiter struct {
	pacer Pacer
}

func (w pacingWaiter) Wait(_ *request.Execution) time.Duration {
	return w.pacer.Delay()
}
