package proxy6

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBatch(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}

		switch id := r.URL.Query().Get("ids"); id {
		case "1", "4":
			writeJSON(w, `{`+envelopeFields+`,"proxy_id":"`+id+`","proxy_status":true}`)
		case "2":
			writeJSON(w, `{`+envelopeFields+`,"proxy_id":"2","proxy_status":false}`)
		default:
			writeJSON(w, `{"status":"no","error_id":230,"error":"Error ids"}`)
		}
	}, WithConcurrency(2))

	result := client.CheckBatch(t.Context(), []string{"4", "3", "2", "1"})

	assert.Equal(t, 4, result.Requested)
	assert.Equal(t, []string{"1", "4"}, result.Valid)
	assert.Equal(t, []string{"2"}, result.Invalid)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "3", result.Failed[0].ProxyID)
	assert.ErrorIs(t, result.Failed[0], ErrIDs)
	assert.Contains(t, result.Failed[0].Error(), "failed to check proxy 3")
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestCheckBatch_Empty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	result := client.CheckBatch(t.Context(), nil)
	assert.Equal(t, 0, result.Requested)
	assert.Empty(t, result.Valid)
	assert.Empty(t, result.Invalid)
	assert.Empty(t, result.Failed)
}
