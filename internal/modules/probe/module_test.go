package probe

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/modules/probe/service"
)

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestReadyz(t *testing.T) {
	state := service.NewState()
	mux := NewMux(state, NewRegistry())

	assert.Equal(t, http.StatusServiceUnavailable, get(t, mux, "/readyz").Code)
	state.SetReady(true)
	assert.Equal(t, http.StatusOK, get(t, mux, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(t, mux, "/livez").Code)
}

func TestHealthzReportsLastHead(t *testing.T) {
	state := service.NewState()
	state.SetHeadsConnected(true)
	state.TouchHead(19000000, time.Unix(1700000000, 0))
	mux := NewMux(state, NewRegistry())

	rec := get(t, mux, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"ready": false,
		"headsConnected": true,
		"uptimeSec": 0,
		"lastHead": 19000000,
		"lastHeadUnix": 1700000000,
		"lastRefreshUnix": 0
	}`, rec.Body.String())
}

func TestMetricsExposesRegisteredCollectors(t *testing.T) {
	reg := NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "llama_lend_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	rec := get(t, NewMux(service.NewState(), reg), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "llama_lend_test_total 1")
}
