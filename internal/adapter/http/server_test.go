package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/highway-survey-etl/internal/adapter/http"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/couchcryptid/highway-survey-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockFinder struct {
	segments map[string][]domain.Segment
	err      error
}

func (m *mockFinder) FindByHighway(_ context.Context, highway string) ([]domain.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.segments[highway], nil
}

func ptr[T any](v T) *T { return &v }

func testSegments() map[string][]domain.Segment {
	critical := domain.LaneStatus{Roughness: domain.StatusCritical, RutDepth: domain.StatusNormal, CrackPercent: domain.StatusNormal, Ravelling: domain.StatusNormal}
	normal := domain.LaneStatus{Roughness: domain.StatusNormal, RutDepth: domain.StatusNormal, CrackPercent: domain.StatusNormal, Ravelling: domain.StatusNormal}
	return map[string][]domain.Segment{
		"NH148N": {
			{
				Highway: "NH148N", StartChainage: ptr(0.0), EndChainage: ptr(500.0), SegmentLength: ptr(500.0), Structure: "plain",
				Lanes: []domain.Lane{
					{LaneID: "L1", StartLat: ptr(26.34), StartLng: ptr(76.25), Roughness: ptr(2900.0), Status: critical},
					{LaneID: "L2", StartLat: ptr(26.34), StartLng: ptr(76.26), Roughness: ptr(1500.0), Status: normal},
				},
			},
			{
				Highway: "NH148N", StartChainage: ptr(500.0), EndChainage: ptr(1000.0), SegmentLength: ptr(500.0), Structure: "Culvert",
				Lanes: []domain.Lane{
					{LaneID: "L1", StartLat: ptr(26.35), StartLng: ptr(76.27), Roughness: ptr(1700.0), Status: normal},
					{LaneID: "L2", StartLat: ptr(26.35), StartLng: ptr(76.28), Roughness: ptr(1600.0), Status: normal},
				},
			},
		},
	}
}

func newTestServer(readyErr error) (*httpadapter.Server, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, &mockFinder{segments: testSegments()}, metrics, slog.Default())
	return srv, metrics
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(fmt.Errorf("mongo unreachable"))
	rec := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "mongo unreachable", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(nil)
	rec := get(t, srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNearestLane(t *testing.T) {
	srv, metrics := newTestServer(nil)

	rec := get(t, srv, "/api/highway?highway=NH148N&laneId=L1&startLat=26.351&startLng=76.271")
	require.Equal(t, http.StatusOK, rec.Code)

	match := decode[domain.LaneMatch](t, rec)
	assert.Equal(t, "NH148N", match.Highway)
	assert.Equal(t, 500.0, *match.StartChainage)
	assert.Equal(t, "Culvert", match.Structure)
	assert.Equal(t, "L1", match.Lane.LaneID)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.RequestDuration))
}

func TestNearestLane_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   int
		msg    string
	}{
		{"missing lane", "/api/highway?highway=NH148N&startLat=26.3&startLng=76.2", http.StatusBadRequest, "Missing required query parameters"},
		{"bad latitude", "/api/highway?highway=NH148N&laneId=L1&startLat=north&startLng=76.2", http.StatusBadRequest, "Missing required query parameters"},
		{"nan longitude", "/api/highway?highway=NH148N&laneId=L1&startLat=26.3&startLng=NaN", http.StatusBadRequest, "Missing required query parameters"},
		{"unknown lane", "/api/highway?highway=NH148N&laneId=R4&startLat=26.3&startLng=76.2", http.StatusNotFound, "No matching segment/lane found"},
		{"unknown highway", "/api/highway?highway=NH1&laneId=L1&startLat=26.3&startLng=76.2", http.StatusNotFound, "No matching segment/lane found"},
	}

	srv, _ := newTestServer(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestHighwayStatus(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := get(t, srv, "/api/status?highway=NH148N")
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[domain.ConditionStats](t, rec)
	assert.Equal(t, 4, stats.TotalLanes)
	assert.Equal(t, 1, stats.CriticalCounts.Roughness)
	assert.Equal(t, "25.00%", stats.Percentages.Roughness)
	assert.Equal(t, "0.00%", stats.Percentages.Ravelling)
	assert.Equal(t, 1925.0, stats.Averages.Roughness.Mean)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/status").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/api/status?highway=NH1").Code)
}

func TestLaneInfo(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := get(t, srv, "/api/lane-info?highway=NH148N&laneId=L2")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.ConditionStats](t, rec)
	assert.Equal(t, "L2", stats.LaneID)
	assert.Equal(t, 2, stats.TotalLanes)
	assert.Len(t, stats.Data, 2)

	rec = get(t, srv, "/api/lane-info?highway=NH148N&laneId=R9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No R9 lane data found in highway NH148N", decode[map[string]string](t, rec)["error"])

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/lane-info?highway=NH148N").Code)
}

func TestCriticalLanes(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := get(t, srv, "/api/critical-lanes?highway=NH148N&laneId=L1")
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]domain.LaneEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, 0.0, *entries[0].StartChainage)

	rec = get(t, srv, "/api/critical-lanes?highway=NH148N&laneId=L2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No critical lanes found for this highway and laneId", decode[map[string]string](t, rec)["message"])
}

func TestPlotLane(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := get(t, srv, "/api/plot-lane?highway=NH148N")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.PlotPoint{
		{StartLat: 26.34, StartLng: 76.25},
		{StartLat: 26.35, StartLng: 76.27},
	}, decode[[]domain.PlotPoint](t, rec))

	rec = get(t, srv, "/api/plot-lane?highway=NH148N&laneId=L2")
	assert.Equal(t, []domain.PlotPoint{
		{StartLat: 26.34, StartLng: 76.26},
		{StartLat: 26.35, StartLng: 76.28},
	}, decode[[]domain.PlotPoint](t, rec))

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/api/plot-lane").Code)
}

func TestFinderErrorReturns500(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	srv := httpadapter.NewServer(":0", &mockReadiness{}, &mockFinder{err: errors.New("timeout")}, metrics, slog.Default())

	rec := get(t, srv, "/api/status?highway=NH148N")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", decode[map[string]string](t, rec)["error"])
}
