package proxy6

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPacer struct {
	calls atomic.Int32
}

func (p *countingPacer) Delay() time.Duration {
	p.calls.Add(1)
	return 0
}

func TestExecute_URLAndQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/"+testKey+"/getprice", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		assert.Equal(t, "30", r.URL.Query().Get("period"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		writeJSON(w, `{"status":"yes","price":1}`)
	})

	params := map[string][]string{"count": {"10"}, "period": {"30"}}
	payload, err := client.Execute(t.Context(), "getprice", params)
	require.NoError(t, err)
	assert.Equal(t, "yes", payload["status"])
}

func TestExecute_RetriesServiceUnavailable(t *testing.T) {
	var hits atomic.Int32
	pacer := &countingPacer{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, `{"status":"yes"}`)
	}, WithPacer(pacer))

	payload, err := client.Execute(t.Context(), "getcountry", nil)
	require.NoError(t, err)
	assert.Equal(t, "yes", payload["status"])
	assert.Equal(t, int32(4), hits.Load())
	assert.Equal(t, int32(4), pacer.calls.Load(), "pacer consulted before every attempt")
}

func TestExecute_RateLimitCeiling(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Execute(t.Context(), "getcountry", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.True(t, IsRateLimited(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, DefaultMaxRetries+1, apiErr.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(DefaultMaxRetries+1), hits.Load())

	// The retry budget belongs to each call
	hits.Store(0)
	_, err = client.Execute(t.Context(), "getcountry", nil)
	require.Error(t, err)
	assert.Equal(t, int32(DefaultMaxRetries+1), hits.Load())
}

func TestExecute_MaxRetriesOption(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithMaxRetries(0))

	_, err := client.Execute(t.Context(), "getcountry", nil)
	require.Error(t, err)
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.Equal(t, int32(1), hits.Load())
}

func TestExecute_UnexpectedStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "not found", status: http.StatusNotFound},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			})

			_, err := client.Execute(t.Context(), "getcountry", nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnexpectedTransport))

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, int32(1), hits.Load(), "only 503 is retried")
		})
	}
}

func TestExecute_InvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "garbage", body: "<html>oops</html>"},
		{name: "array", body: `[1,2,3]`},
		{name: "null", body: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.body)
			})

			_, err := client.Execute(t.Context(), "getcountry", nil)
			require.Error(t, err)
			assert.Equal(t, KindUnexpected, KindOf(err))
		})
	}
}

func TestExecute_ProviderError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":"no","error_id":100,"error":"Error key"}`)
	})

	_, err := client.Execute(t.Context(), "getprice", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))
	assert.True(t, IsProviderFault(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 100, apiErr.Code)
	assert.Equal(t, "no", apiErr.Payload["status"])
}

func TestExecute_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":"yes"}`)
	}, WithRequestDelay(time.Minute))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.Execute(ctx, "getcountry", nil)
	require.Error(t, err)
	assert.Equal(t, KindUnexpectedTransport, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEndpoint(t *testing.T) {
	client := &Client{baseURL: "https://proxy6.net/api", apiKey: "abc"}

	assert.Equal(t, "https://proxy6.net/api/abc/getcount", client.endpoint("getcount", nil))
	assert.Equal(t,
		"https://proxy6.net/api/abc/getcount?country=ru&version=4",
		client.endpoint("getcount", map[string][]string{"country": {"ru"}, "version": {"4"}}),
	)
}

func TestRedact(t *testing.T) {
	client := &Client{apiKey: "secret-key"}

	err := client.redact(&url.Error{
		Op:  "Get",
		URL: "https://proxy6.net/api/secret-key/getprice?count=1",
		Err: context.DeadlineExceeded,
	})
	assert.NotContains(t, err.Error(), "secret-key")
	assert.Contains(t, err.Error(), "/api/***/getprice")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	plain := errors.New("boom")
	assert.Equal(t, plain, client.redact(plain))
}
