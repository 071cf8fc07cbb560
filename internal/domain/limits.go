package domain

// Limits are the per-metric thresholds a lane is classified against.
type Limits struct {
	IRI       float64 `json:"iri"`
	Rutting   float64 `json:"rutting"`
	Cracking  float64 `json:"cracking"`
	Ravelling float64 `json:"ravelling"`
}

// DefaultLimits apply when a row carries no limit of its own.
var DefaultLimits = Limits{
	IRI:       2400,
	Rutting:   5,
	Cracking:  5,
	Ravelling: 5,
}

// ResolveLimits fills each absent row limit from defaults.
func ResolveLimits(iri, rutting, cracking, ravelling *float64, defaults Limits) Limits {
	return Limits{
		IRI:       valueOr(iri, defaults.IRI),
		Rutting:   valueOr(rutting, defaults.Rutting),
		Cracking:  valueOr(cracking, defaults.Cracking),
		Ravelling: valueOr(ravelling, defaults.Ravelling),
	}
}

// Classify returns critical only for a present, non-zero value above limit.
// A measured zero is normal regardless of the limit.
func Classify(value *float64, limit float64) Status {
	if value == nil || *value == 0 {
		return StatusNormal
	}
	if *value > limit {
		return StatusCritical
	}
	return StatusNormal
}

// ClassifyLane derives the status map of a lane from its measurements.
func ClassifyLane(l Lane, limits Limits) LaneStatus {
	return LaneStatus{
		Roughness:    Classify(l.Roughness, limits.IRI),
		RutDepth:     Classify(l.RutDepth, limits.Rutting),
		CrackPercent: Classify(l.CrackPercent, limits.Cracking),
		Ravelling:    Classify(l.RavellingPercent, limits.Ravelling),
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
