package proxy6

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gogama/httpx/request"
)

// Execute calls an API method and returns the classified response payload.
//
// params are sent as the query string; list values must already be comma
// joined. A 503 answer is retried up to the configured ceiling, with the
// pacer consulted before every attempt. Any other non-2xx answer fails at
// once with KindUnexpectedTransport.
func (c *Client) Execute(ctx context.Context, method string, params url.Values) (Payload, error) {
	plan, err := request.NewPlanWithContext(ctx, http.MethodGet, c.endpoint(method, params), nil)
	if err != nil {
		return nil, &Error{Kind: KindUnexpectedTransport, Message: "failed to create request", Err: err}
	}
	plan.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		plan.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug().
		Str("method", method).
		Str("params", params.Encode()).
		Msg("Making proxy6 API request")

	if err := pace(ctx, c.pacer); err != nil {
		return nil, &Error{Kind: KindUnexpectedTransport, Message: "request cancelled", Err: err}
	}

	ex, err := c.http.Do(plan)
	attempts := ex.Attempt + 1
	if err != nil {
		return nil, &Error{
			Kind:       KindUnexpectedTransport,
			Message:    "request failed",
			StatusCode: ex.StatusCode(),
			Attempts:   attempts,
			Err:        c.redact(err),
		}
	}

	status := ex.StatusCode()
	switch {
	case status == http.StatusServiceUnavailable:
		c.logger.Warn().
			Str("method", method).
			Int("attempts", attempts).
			Msg("proxy6 rate limit ceiling reached")
		return nil, &Error{
			Kind:       KindRateLimited,
			Message:    "too many requests, try again later",
			StatusCode: status,
			Attempts:   attempts,
		}
	case status < 200 || status > 299:
		return nil, &Error{
			Kind:       KindUnexpectedTransport,
			Message:    "failed to get data from the API",
			StatusCode: status,
			Attempts:   attempts,
		}
	}

	payload, err := parsePayload(ex.Body)
	if err != nil {
		return nil, &Error{
			Kind:       KindUnexpected,
			Message:    "failed to parse response",
			StatusCode: status,
			Attempts:   attempts,
			Err:        err,
		}
	}

	c.logger.Trace().Interface("response", payload).Msg("proxy6 API response")

	return Classify(payload)
}

// endpoint builds <base>/<apikey>/<method>[?params]
func (c *Client) endpoint(method string, params url.Values) string {
	u := c.baseURL + "/" + url.PathEscape(c.apiKey) + "/" + method
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// redact hides the API key in transport errors, which embed the request URL
func (c *Client) redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	clean := *ue
	clean.URL = strings.ReplaceAll(ue.URL, url.PathEscape(c.apiKey), "***")
	return &clean
}
