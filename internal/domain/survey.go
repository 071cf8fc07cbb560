package domain

import (
	"fmt"
	"strconv"
	"time"
)

// HeaderPair is the two-row header of one spreadsheet column. Either label may
// be empty or an "Unnamed: ..." placeholder when the cell was blank.
type HeaderPair struct {
	Outer string
	Inner string
}

// RawTable is a survey sheet as read from disk: one header pair per column and
// the data rows as cell text. A blank cell is the empty string.
type RawTable struct {
	Source  string
	Sheet   string
	Headers []HeaderPair
	Rows    [][]string
}

// Status classifies a lane measurement against its limit.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusCritical Status = "critical"
)

// LaneStatus holds one classification per lane measurement.
type LaneStatus struct {
	Roughness    Status `json:"roughness"`
	RutDepth     Status `json:"rutDepth"`
	CrackPercent Status `json:"crackPercent"`
	Ravelling    Status `json:"ravelling"`
}

// HasCritical reports whether any measurement is critical.
func (s LaneStatus) HasCritical() bool {
	return s.Roughness == StatusCritical || s.RutDepth == StatusCritical ||
		s.CrackPercent == StatusCritical || s.Ravelling == StatusCritical
}

// Lane is one traffic lane of a segment. Nil pointers are absent values.
type Lane struct {
	LaneID           string     `json:"laneId"`
	StartLat         *float64   `json:"startLat"`
	StartLng         *float64   `json:"startLng"`
	EndLat           *float64   `json:"endLat"`
	EndLng           *float64   `json:"endLng"`
	Roughness        *float64   `json:"roughness"`
	RutDepth         *float64   `json:"rutDepth"`
	CrackPercent     *float64   `json:"crackPercent"`
	RavellingPercent *float64   `json:"ravellingPercent"`
	Status           LaneStatus `json:"status"`
}

// Segment is one output document: a stretch of highway between two chainage
// markers and the lanes surveyed on it.
type Segment struct {
	Highway       string   `json:"highway"`
	StartChainage *float64 `json:"startChainage"`
	EndChainage   *float64 `json:"endChainage"`
	SegmentLength *float64 `json:"segmentLength"`
	Structure     string   `json:"structure"`
	Remark        *string  `json:"remark,omitempty"`

	// Limits as they appeared on the sheet; classification uses the resolved
	// values from ResolveLimits.
	IRILimit       *float64 `json:"IRI_Limit,omitempty"`
	RuttingLimit   *float64 `json:"Rutting_Limit,omitempty"`
	CrackingLimit  *float64 `json:"Cracking_Limit,omitempty"`
	RavellingLimit *float64 `json:"Ravelling_Limit,omitempty"`

	Lanes []Lane `json:"lanes"`

	ImportID   string    `json:"importId,omitempty"`
	ImportedAt time.Time `json:"createdAt,omitzero"`
}

// Key identifies the physical segment a row belongs to. Rows with the same key
// are merged into one document when segment grouping is enabled.
func (s Segment) Key() string {
	return fmt.Sprintf("%s|%s|%s", s.Highway, formatOptional(s.StartChainage), formatOptional(s.EndChainage))
}

// HasChainage reports whether both chainage markers are present.
func (s Segment) HasChainage() bool {
	return s.StartChainage != nil && s.EndChainage != nil
}

// FindLane returns the first lane with the given ID.
func (s Segment) FindLane(laneID string) (Lane, bool) {
	for _, l := range s.Lanes {
		if l.LaneID == laneID {
			return l, true
		}
	}
	return Lane{}, false
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
