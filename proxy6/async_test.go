package proxy6

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncClient(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/"+testKey+"/getcount":
			writeJSON(w, `{`+envelopeFields+`,"count":42}`)
		case r.URL.Path == "/"+testKey+"/getcountry":
			writeJSON(w, `{`+envelopeFields+`,"list":["ru"]}`)
		default:
			writeJSON(w, `{"status":"no","error_id":110,"error":"Error method"}`)
		}
	})
	async := client.Async()
	assert.Same(t, client, async.Client())

	countFut := async.GetCount(t.Context(), "ru", VersionIPv4)
	countriesFut := async.GetCountries(t.Context(), VersionIPv4)
	checkFut := async.Check(t.Context(), "1")

	count, err := countFut.Await(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 42, count.Count)

	countries, err := countriesFut.Await(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"ru"}, countries.Countries)

	_, err = checkFut.Await(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMethod)

	select {
	case <-checkFut.Done():
	default:
		t.Fatal("future should be done after Await returned its result")
	}
}

func TestAsyncClient_ArgumentError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	_, err := NewAsyncClient(client).Delete(t.Context(), nil, "").Await(t.Context())
	require.Error(t, err)
	assert.True(t, IsArgument(err))
}

func TestFuture_AwaitContext(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeJSON(w, `{`+envelopeFields+`,"count":1}`)
	})
	defer close(release)

	fut := client.Async().GetCount(t.Context(), "ru", VersionIPv6)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err := fut.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
