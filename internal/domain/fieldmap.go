package domain

// Canonical segment-level field names.
const (
	FieldHighway        = "highway"
	FieldStartChainage  = "startChainage"
	FieldEndChainage    = "endChainage"
	FieldSegmentLength  = "segmentLength"
	FieldStructure      = "structure"
	FieldRemark         = "remark"
	FieldIRILimit       = "IRI_Limit"
	FieldRuttingLimit   = "Rutting_Limit"
	FieldCrackingLimit  = "Cracking_Limit"
	FieldRavellingLimit = "Ravelling_Limit"
)

// Per-lane field suffixes. The canonical column is "<lane>_<suffix>".
const (
	LaneStartLat         = "startLat"
	LaneStartLng         = "startLng"
	LaneEndLat           = "endLat"
	LaneEndLng           = "endLng"
	LaneRoughness        = "roughness"
	LaneRutDepth         = "rutDepth"
	LaneCrackPercent     = "crackPercent"
	LaneRavellingPercent = "ravellingPercent"
)

// SegmentFields lists the segment-level fields in forward-fill order.
var SegmentFields = []string{
	FieldHighway,
	FieldStartChainage,
	FieldEndChainage,
	FieldSegmentLength,
	FieldStructure,
	FieldIRILimit,
	FieldRuttingLimit,
	FieldCrackingLimit,
	FieldRavellingLimit,
	FieldRemark,
}

// LaneFields lists the per-lane suffixes in document order.
var LaneFields = []string{
	LaneStartLat,
	LaneStartLng,
	LaneEndLat,
	LaneEndLng,
	LaneRoughness,
	LaneRutDepth,
	LaneCrackPercent,
	LaneRavellingPercent,
}

// segmentHeaders maps the sheet's literal header text to segment fields.
var segmentHeaders = map[string]string{
	"NH Number":         FieldHighway,
	"Start Chainage":    FieldStartChainage,
	"End Chainage":      FieldEndChainage,
	"Length":            FieldSegmentLength,
	"Structure Details": FieldStructure,
	"Remark":            FieldRemark,
	"Limitation of BI as per MoRT&H Circular (in mm/km)":              FieldIRILimit,
	"Limitation of Rut Depth as per Concession Agreement (in mm)":     FieldRuttingLimit,
	"Limitation of Cracking as per Concession Agreement (in % area)":  FieldCrackingLimit,
	"Limitation of Ravelling as per Concession Agreement (in % area)": FieldRavellingLimit,
}

// FieldMap maps normalized header text to canonical field names.
type FieldMap map[string]string

// BuildFieldMap returns the rename rules for a sheet with the given lanes.
func BuildFieldMap(lanes []string) FieldMap {
	m := make(FieldMap, len(segmentHeaders)+len(lanes)*len(LaneFields))
	for header, field := range segmentHeaders {
		m[header] = field
	}
	for _, lane := range lanes {
		for header, suffix := range laneHeaders(lane) {
			m[header] = LaneField(lane, suffix)
		}
	}
	return m
}

// Canonical returns the canonical name for a normalized header. Headers
// without a rule pass through unchanged.
func (m FieldMap) Canonical(header string) string {
	if field, ok := m[header]; ok {
		return field
	}
	return header
}

// LaneField returns the canonical column name of a lane field, e.g. "L1_roughness".
func LaneField(lane, suffix string) string {
	return lane + "_" + suffix
}

// laneHeaders returns the normalized header text for each field of a lane.
func laneHeaders(lane string) map[string]string {
	block := "Lane " + lane
	return map[string]string{
		block + "_Start":                       LaneStartLat,
		block + "_Start.1":                     LaneStartLng,
		block + "_End":                         LaneEndLat,
		block + "_End.1":                       LaneEndLng,
		lane + " Lane Roughness BI (in mm/km)": LaneRoughness,
		lane + " Rut Depth (in mm)":            LaneRutDepth,
		lane + " Crack Area (in % area)":       LaneCrackPercent,
		lane + " Area (% area)":                LaneRavellingPercent,
	}
}
