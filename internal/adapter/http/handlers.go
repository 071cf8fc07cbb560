package http

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
)

// defaultPlotLane is plotted when /api/plot-lane names no lane.
const defaultPlotLane = "L1"

// segments loads the segments of a highway, writing a 500 on failure. The
// boolean is false when the response has already been written.
func (s *Server) segments(w http.ResponseWriter, r *http.Request, highway, route string) ([]domain.Segment, bool) {
	segments, err := s.finder.FindByHighway(r.Context(), highway)
	if err != nil {
		s.logger.Error("find segments failed", "route", route, "highway", highway, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return nil, false
	}
	return segments, true
}

// handleNearestLane returns the segment lane whose start point is closest to
// the given coordinate.
func (s *Server) handleNearestLane(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	highway, laneID := q.Get("highway"), q.Get("laneId")
	lat, latOK := parseCoordinate(q.Get("startLat"))
	lng, lngOK := parseCoordinate(q.Get("startLng"))
	if highway == "" || laneID == "" || !latOK || !lngOK {
		writeError(w, http.StatusBadRequest, "Missing required query parameters")
		return
	}

	segments, ok := s.segments(w, r, highway, "highway")
	if !ok {
		return
	}
	match, found := domain.NearestLane(segments, laneID, lat, lng)
	if !found {
		writeError(w, http.StatusNotFound, "No matching segment/lane found")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (s *Server) handleHighwayStatus(w http.ResponseWriter, r *http.Request) {
	highway := r.URL.Query().Get("highway")
	if highway == "" {
		writeError(w, http.StatusBadRequest, "Highway name is required")
		return
	}

	segments, ok := s.segments(w, r, highway, "status")
	if !ok {
		return
	}
	if len(segments) == 0 {
		writeError(w, http.StatusNotFound, "No data found for this highway")
		return
	}
	writeJSON(w, http.StatusOK, domain.HighwayConditionStats(highway, segments))
}

func (s *Server) handleLaneInfo(w http.ResponseWriter, r *http.Request) {
	highway, laneID := r.URL.Query().Get("highway"), r.URL.Query().Get("laneId")
	if highway == "" || laneID == "" {
		writeError(w, http.StatusBadRequest, "Missing highway or laneId in query")
		return
	}

	segments, ok := s.segments(w, r, highway, "lane-info")
	if !ok {
		return
	}
	if len(segments) == 0 {
		writeError(w, http.StatusNotFound, "No highway segments found")
		return
	}
	stats := domain.LaneConditionStats(highway, laneID, segments)
	if stats.TotalLanes == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No %s lane data found in highway %s", laneID, highway))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCriticalLanes(w http.ResponseWriter, r *http.Request) {
	highway, laneID := r.URL.Query().Get("highway"), r.URL.Query().Get("laneId")
	if highway == "" || laneID == "" {
		writeError(w, http.StatusBadRequest, "Missing highway or laneId in query")
		return
	}

	segments, ok := s.segments(w, r, highway, "critical-lanes")
	if !ok {
		return
	}
	if len(segments) == 0 {
		writeError(w, http.StatusNotFound, "No segments found for this highway")
		return
	}
	critical := domain.CriticalLanes(segments, laneID)
	if len(critical) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No critical lanes found for this highway and laneId"})
		return
	}
	writeJSON(w, http.StatusOK, critical)
}

func (s *Server) handlePlotLane(w http.ResponseWriter, r *http.Request) {
	highway, laneID := r.URL.Query().Get("highway"), r.URL.Query().Get("laneId")
	if highway == "" {
		writeError(w, http.StatusBadRequest, "Missing highway query parameter")
		return
	}
	if laneID == "" {
		laneID = defaultPlotLane
	}

	segments, ok := s.segments(w, r, highway, "plot-lane")
	if !ok {
		return
	}
	if len(segments) == 0 {
		writeError(w, http.StatusNotFound, "No segments found for this highway")
		return
	}
	writeJSON(w, http.StatusOK, domain.LanePlotPoints(segments, laneID))
}

func parseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
