package domain

// defaultStructure is recorded when a row names no structure.
const defaultStructure = "plain"

// Options tune TransformTable.
type Options struct {
	// Defaults are the limits used when a row carries none.
	Defaults Limits
	// MergeRows merges rows that describe the same segment into one document.
	MergeRows bool
}

// DefaultOptions returns the standard limits with row merging enabled.
func DefaultOptions() Options {
	return Options{Defaults: DefaultLimits, MergeRows: true}
}

// CriticalCounts counts critical classifications per metric.
type CriticalCounts struct {
	Roughness    int `json:"roughness"`
	RutDepth     int `json:"rutDepth"`
	CrackPercent int `json:"crackPercent"`
	Ravelling    int `json:"ravelling"`
}

// Add counts the critical entries of one lane status.
func (c *CriticalCounts) Add(s LaneStatus) {
	if s.Roughness == StatusCritical {
		c.Roughness++
	}
	if s.RutDepth == StatusCritical {
		c.RutDepth++
	}
	if s.CrackPercent == StatusCritical {
		c.CrackPercent++
	}
	if s.Ravelling == StatusCritical {
		c.Ravelling++
	}
}

// Stats summarizes one table transformation.
type Stats struct {
	Rows          int            `json:"rows"`
	Segments      int            `json:"segments"`
	EmptySegments int            `json:"emptySegments"`
	MergedRows    int            `json:"mergedRows"`
	Lanes         int            `json:"lanes"`
	SkippedLanes  int            `json:"skippedLanes"`
	Critical      CriticalCounts `json:"critical"`
}

// Result is the output of TransformTable.
type Result struct {
	Schema   Schema    `json:"schema"`
	Segments []Segment `json:"segments"`
	Stats    Stats     `json:"stats"`
}

// TransformTable runs discovery, renaming, forward-fill and coercion over t and
// converts every row into a segment document. Rows without a usable lane
// produce nothing.
func TransformTable(t RawTable, opts Options) Result {
	frame := BuildFrame(t)
	frame.ForwardFill()
	frame.Coerce()

	var (
		stats    Stats
		segments []Segment
	)
	for _, row := range frame.Rows() {
		stats.Rows++
		seg, skipped := transformRow(row, frame.Schema.Lanes, opts.Defaults)
		stats.SkippedLanes += skipped
		if len(seg.Lanes) == 0 {
			stats.EmptySegments++
			continue
		}
		segments = append(segments, seg)
	}

	if opts.MergeRows {
		var merged int
		segments, merged = MergeSegments(segments)
		stats.MergedRows = merged
	}

	stats.Segments = len(segments)
	for _, seg := range segments {
		stats.Lanes += len(seg.Lanes)
		for _, l := range seg.Lanes {
			stats.Critical.Add(l.Status)
		}
	}

	return Result{Schema: frame.Schema, Segments: segments, Stats: stats}
}

// TransformRow converts one renamed, forward-filled row into a segment. The
// boolean is false when no lane on the row has a start coordinate or a
// roughness reading.
func TransformRow(row Row, lanes []string, defaults Limits) (Segment, bool) {
	seg, _ := transformRow(row, lanes, defaults)
	return seg, len(seg.Lanes) > 0
}

func transformRow(row Row, lanes []string, defaults Limits) (Segment, int) {
	seg := Segment{
		Highway:        textOrDefault(row.Text(FieldHighway), ""),
		StartChainage:  row.Number(FieldStartChainage),
		EndChainage:    row.Number(FieldEndChainage),
		SegmentLength:  row.Number(FieldSegmentLength),
		Structure:      textOrDefault(row.Text(FieldStructure), defaultStructure),
		Remark:         row.Text(FieldRemark),
		IRILimit:       row.Number(FieldIRILimit),
		RuttingLimit:   row.Number(FieldRuttingLimit),
		CrackingLimit:  row.Number(FieldCrackingLimit),
		RavellingLimit: row.Number(FieldRavellingLimit),
	}
	limits := ResolveLimits(seg.IRILimit, seg.RuttingLimit, seg.CrackingLimit, seg.RavellingLimit, defaults)

	skipped := 0
	for _, id := range lanes {
		lane := buildLane(row, id, limits)
		if !hasLocationOrRoughness(lane) {
			skipped++
			continue
		}
		seg.Lanes = append(seg.Lanes, lane)
	}
	return seg, skipped
}

func buildLane(row Row, id string, limits Limits) Lane {
	l := Lane{
		LaneID:           id,
		StartLat:         row.Number(LaneField(id, LaneStartLat)),
		StartLng:         row.Number(LaneField(id, LaneStartLng)),
		EndLat:           row.Number(LaneField(id, LaneEndLat)),
		EndLng:           row.Number(LaneField(id, LaneEndLng)),
		Roughness:        row.Number(LaneField(id, LaneRoughness)),
		RutDepth:         row.Number(LaneField(id, LaneRutDepth)),
		CrackPercent:     row.Number(LaneField(id, LaneCrackPercent)),
		RavellingPercent: row.Number(LaneField(id, LaneRavellingPercent)),
	}
	l.Status = ClassifyLane(l, limits)
	return l
}

func hasLocationOrRoughness(l Lane) bool {
	return l.StartLat != nil || l.StartLng != nil || l.Roughness != nil
}

// MergeSegments folds segments with the same Key into the first one seen,
// appending lanes in input order. It returns the merged list and the number
// of segments folded away.
//
// Segments missing either chainage have no usable key and pass through
// unmerged. A segment repeating a lane already present under its key starts a
// new document for that key; later rows fold into the newest one.
func MergeSegments(segments []Segment) ([]Segment, int) {
	if len(segments) < 2 {
		return segments, 0
	}

	out := make([]Segment, 0, len(segments))
	pos := make(map[string]int, len(segments))
	for _, seg := range segments {
		if !seg.HasChainage() {
			out = append(out, seg)
			continue
		}
		key := seg.Key()
		if i, ok := pos[key]; ok && !sharesLane(out[i], seg) {
			out[i].Lanes = append(out[i].Lanes, seg.Lanes...)
			continue
		}
		pos[key] = len(out)
		seg.Lanes = append([]Lane(nil), seg.Lanes...)
		out = append(out, seg)
	}
	return out, len(segments) - len(out)
}

func sharesLane(a, b Segment) bool {
	for _, l := range b.Lanes {
		if _, ok := a.FindLane(l.LaneID); ok {
			return true
		}
	}
	return false
}

// StampImport tags every segment with the run ID and the current time.
func StampImport(segments []Segment, importID string) {
	now := clock.Now().UTC()
	for i := range segments {
		segments[i].ImportID = importID
		segments[i].ImportedAt = now
	}
}

func textOrDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
