package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/michaelpento.lv/arbbot/strategies/arbitrage"
	"github.com/michaelpento.lv/arbbot/types"
	"github.com/michaelpento.lv/arbbot/utils/metrics"
)

func newTestServer(t *testing.T) (*Server, *arbitrage.RunningStatistics, *types.ExecutionLock, *metrics.ScannerMetrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewScannerMetrics(reg)
	stats := arbitrage.NewRunningStatistics()
	lock := &types.ExecutionLock{}
	return New(":0", stats, lock, reg, zaptest.NewLogger(t)), stats, lock, m
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	s, stats, lock, _ := newTestServer(t)
	stats.RecordScan()
	stats.RecordScan()
	stats.ObserveSpread(0.25)
	stats.RecordOpportunity(time.Unix(1700000000, 0))
	require.True(t, lock.TryAcquire())

	rec := get(t, s, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Statistics struct {
			Scans         uint64   `json:"scans"`
			Opportunities uint64   `json:"opportunities_found"`
			BestSpread    *float64 `json:"best_spread_percent"`
		} `json:"statistics"`
		InFlight bool `json:"execution_in_flight"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(2), body.Statistics.Scans)
	assert.Equal(t, uint64(1), body.Statistics.Opportunities)
	require.NotNil(t, body.Statistics.BestSpread)
	assert.Equal(t, 0.25, *body.Statistics.BestSpread)
	assert.True(t, body.InFlight)
}

func TestMetrics(t *testing.T) {
	s, _, _, m := newTestServer(t)
	m.Scans.Inc()

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "arbbot_scanner_scans_total 1"))
}
