package domain

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// LaneEntry is a lane together with the segment it belongs to.
type LaneEntry struct {
	Highway       string   `json:"highway,omitempty"`
	StartChainage *float64 `json:"startChainage"`
	EndChainage   *float64 `json:"endChainage"`
	SegmentLength *float64 `json:"segmentLength"`
	Structure     string   `json:"structure"`
	Lane          Lane     `json:"lane"`
}

// LaneMatch is the result of a nearest-lane lookup.
type LaneMatch struct {
	LaneEntry
	DistanceMeters float64 `json:"distanceMeters"`
}

// Percentages holds critical shares per metric, formatted like "12.50%".
type Percentages struct {
	Roughness    string `json:"roughness"`
	RutDepth     string `json:"rutDepth"`
	CrackPercent string `json:"crackPercent"`
	Ravelling    string `json:"ravelling"`
}

// MetricSummary describes the present readings of one metric.
type MetricSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
}

// Averages holds a summary per lane metric.
type Averages struct {
	Roughness        MetricSummary `json:"roughness"`
	RutDepth         MetricSummary `json:"rutDepth"`
	CrackPercent     MetricSummary `json:"crackPercent"`
	RavellingPercent MetricSummary `json:"ravellingPercent"`
}

// ConditionStats summarizes lane conditions over a set of segments.
type ConditionStats struct {
	Highway        string         `json:"highway"`
	LaneID         string         `json:"laneId,omitempty"`
	TotalLanes     int            `json:"totalLanes"`
	CriticalCounts CriticalCounts `json:"criticalCounts"`
	Percentages    Percentages    `json:"percentages"`
	Averages       Averages       `json:"averages"`
	Data           []LaneEntry    `json:"data,omitempty"`
}

// NearestLane finds the lane with the given ID whose start point lies closest
// to (lat, lng). Lanes without a start coordinate are ignored.
func NearestLane(segments []Segment, laneID string, lat, lng float64) (LaneMatch, bool) {
	origin := orb.Point{lng, lat}

	var (
		best  LaneMatch
		found bool
	)
	closest := math.Inf(1)
	for _, seg := range segments {
		lane, ok := seg.FindLane(laneID)
		if !ok || lane.StartLat == nil || lane.StartLng == nil {
			continue
		}
		d := geo.Distance(origin, orb.Point{*lane.StartLng, *lane.StartLat})
		if d < closest {
			closest = d
			best = LaneMatch{LaneEntry: entryFor(seg, lane, true), DistanceMeters: d}
			found = true
		}
	}
	return best, found
}

// HighwayConditionStats counts critical statuses over every lane of every segment.
func HighwayConditionStats(highway string, segments []Segment) ConditionStats {
	var lanes []Lane
	for _, seg := range segments {
		lanes = append(lanes, seg.Lanes...)
	}
	out := summarize(lanes)
	out.Highway = highway
	return out
}

// LaneConditionStats is HighwayConditionStats restricted to one lane ID, with
// the per-segment lane data attached.
func LaneConditionStats(highway, laneID string, segments []Segment) ConditionStats {
	var (
		lanes []Lane
		data  []LaneEntry
	)
	for _, seg := range segments {
		lane, ok := seg.FindLane(laneID)
		if !ok {
			continue
		}
		lanes = append(lanes, lane)
		data = append(data, entryFor(seg, lane, false))
	}
	out := summarize(lanes)
	out.Highway = highway
	out.LaneID = laneID
	out.Data = data
	return out
}

// CriticalLanes returns the segments whose lane has at least one critical status.
func CriticalLanes(segments []Segment, laneID string) []LaneEntry {
	var out []LaneEntry
	for _, seg := range segments {
		lane, ok := seg.FindLane(laneID)
		if ok && lane.Status.HasCritical() {
			out = append(out, entryFor(seg, lane, false))
		}
	}
	return out
}

// PlotPoint is a lane start coordinate.
type PlotPoint struct {
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
}

// LanePlotPoints returns the start points of a lane across segments. Zero
// coordinates are treated as missing.
func LanePlotPoints(segments []Segment, laneID string) []PlotPoint {
	points := make([]PlotPoint, 0, len(segments))
	for _, seg := range segments {
		lane, ok := seg.FindLane(laneID)
		if !ok || lane.StartLat == nil || lane.StartLng == nil || *lane.StartLat == 0 || *lane.StartLng == 0 {
			continue
		}
		points = append(points, PlotPoint{StartLat: *lane.StartLat, StartLng: *lane.StartLng})
	}
	return points
}

func summarize(lanes []Lane) ConditionStats {
	var out ConditionStats
	out.TotalLanes = len(lanes)

	var rough, rut, crack, ravel []float64
	for _, l := range lanes {
		out.CriticalCounts.Add(l.Status)
		rough = appendPresent(rough, l.Roughness)
		rut = appendPresent(rut, l.RutDepth)
		crack = appendPresent(crack, l.CrackPercent)
		ravel = appendPresent(ravel, l.RavellingPercent)
	}

	out.Percentages = Percentages{
		Roughness:    percent(out.CriticalCounts.Roughness, out.TotalLanes),
		RutDepth:     percent(out.CriticalCounts.RutDepth, out.TotalLanes),
		CrackPercent: percent(out.CriticalCounts.CrackPercent, out.TotalLanes),
		Ravelling:    percent(out.CriticalCounts.Ravelling, out.TotalLanes),
	}
	out.Averages = Averages{
		Roughness:        summarizeMetric(rough),
		RutDepth:         summarizeMetric(rut),
		CrackPercent:     summarizeMetric(crack),
		RavellingPercent: summarizeMetric(ravel),
	}
	return out
}

func summarizeMetric(values []float64) MetricSummary {
	if len(values) == 0 {
		return MetricSummary{}
	}
	// Both calls only fail on empty input.
	mean, _ := stats.Mean(values)
	maxV, _ := stats.Max(values)
	return MetricSummary{Count: len(values), Mean: mean, Max: maxV}
}

func percent(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}

func appendPresent(dst []float64, v *float64) []float64 {
	if v == nil {
		return dst
	}
	return append(dst, *v)
}

func entryFor(seg Segment, lane Lane, withHighway bool) LaneEntry {
	e := LaneEntry{
		StartChainage: seg.StartChainage,
		EndChainage:   seg.EndChainage,
		SegmentLength: seg.SegmentLength,
		Structure:     seg.Structure,
		Lane:          lane,
	}
	if withHighway {
		e.Highway = seg.Highway
	}
	return e
}
