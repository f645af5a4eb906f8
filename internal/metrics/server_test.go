package metrics

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHealth(t *testing.T) {
	s := NewServer(ServerConfig{Version: "1.2.3", Logger: testLogger()})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestMetricsEndpoint(t *testing.T) {
	MessagesTotal.WithLabelValues(OutcomeSent).Inc()

	s := NewServer(ServerConfig{Path: "/prom", Logger: testLogger()})
	req := httptest.NewRequest(http.MethodGet, "/prom", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "vscobot_messages_total"), "missing counter in scrape output")
	assert.True(t, strings.Contains(body, "go_goroutines"), "missing runtime collector")
}

func TestMetricsEndpoint_DefaultPath(t *testing.T) {
	s := NewServer(ServerConfig{Logger: testLogger()})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCollectorsRegistered(t *testing.T) {
	before := testutil.ToFloat64(Failures.WithLabelValues("unknown"))
	Failures.WithLabelValues("unknown").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Failures.WithLabelValues("unknown")))

	n, err := testutil.GatherAndCount(Registry, "vscobot_failures_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
