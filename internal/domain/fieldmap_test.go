package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFieldMap(t *testing.T) {
	m := BuildFieldMap([]string{"L1", "R2"})

	assert.Len(t, m, 10+2*8)

	assert.Equal(t, FieldHighway, m.Canonical("NH Number"))
	assert.Equal(t, FieldSegmentLength, m.Canonical("Length"))
	assert.Equal(t, FieldStructure, m.Canonical("Structure Details"))
	assert.Equal(t, FieldIRILimit, m.Canonical("Limitation of BI as per MoRT&H Circular (in mm/km)"))
	assert.Equal(t, FieldRavellingLimit, m.Canonical("Limitation of Ravelling as per Concession Agreement (in % area)"))

	assert.Equal(t, "L1_startLat", m.Canonical("Lane L1_Start"))
	assert.Equal(t, "L1_startLng", m.Canonical("Lane L1_Start.1"))
	assert.Equal(t, "R2_endLat", m.Canonical("Lane R2_End"))
	assert.Equal(t, "R2_endLng", m.Canonical("Lane R2_End.1"))
	assert.Equal(t, "L1_roughness", m.Canonical("L1 Lane Roughness BI (in mm/km)"))
	assert.Equal(t, "R2_rutDepth", m.Canonical("R2 Rut Depth (in mm)"))
	assert.Equal(t, "R2_crackPercent", m.Canonical("R2 Crack Area (in % area)"))
	assert.Equal(t, "L1_ravellingPercent", m.Canonical("L1 Area (% area)"))
}

func TestFieldMap_PassThrough(t *testing.T) {
	m := BuildFieldMap([]string{"L1"})

	assert.Equal(t, "Survey Date", m.Canonical("Survey Date"))
	// Lanes not discovered on the sheet get no rules.
	assert.Equal(t, "Lane L3_Start", m.Canonical("Lane L3_Start"))
}

func TestFieldMap_NoLanes(t *testing.T) {
	m := BuildFieldMap(nil)
	assert.Len(t, m, len(SegmentFields))
}
