package domain

import (
	"math"
	"strconv"
	"strings"
)

// measurementMarkers select the columns that are coerced to numbers.
var measurementMarkers = []string{"Lat", "Lng", "roughness", "rutDepth", "crackPercent", "ravellingPercent"}

// Schema describes what discovery found on one sheet.
type Schema struct {
	Lanes   []string `json:"lanes"`
	Columns []string `json:"columns"`
	Dropped int      `json:"dropped"`
}

// HasColumn reports whether a canonical column exists on the sheet.
func (s Schema) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns lists the expected canonical columns the sheet lacks: the
// segment fields and the eight fields of every discovered lane.
func (s Schema) MissingColumns() []string {
	present := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		present[c] = struct{}{}
	}

	var missing []string
	for _, f := range SegmentFields {
		if _, ok := present[f]; !ok {
			missing = append(missing, f)
		}
	}
	for _, lane := range s.Lanes {
		for _, suffix := range LaneFields {
			name := LaneField(lane, suffix)
			if _, ok := present[name]; !ok {
				missing = append(missing, name)
			}
		}
	}
	return missing
}

// Frame is a RawTable after header normalization and renaming. Dropped
// columns are gone and the remaining ones carry canonical names.
type Frame struct {
	Schema Schema
	rows   [][]string
	index  map[string]int
}

// BuildFrame normalizes the headers of t, discovers its lanes and renames the
// surviving columns. The cells of t are copied, never modified.
func BuildFrame(t RawTable) Frame {
	normalized := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		normalized[i] = NormalizeHeader(h)
	}

	lanes := DiscoverLanes(normalized)
	fields := BuildFieldMap(lanes)

	var (
		keep    []int
		columns []string
	)
	index := make(map[string]int)
	for i, name := range normalized {
		if name == "" {
			continue
		}
		canonical := fields.Canonical(name)
		if _, dup := index[canonical]; !dup {
			index[canonical] = len(columns)
		}
		keep = append(keep, i)
		columns = append(columns, canonical)
	}

	rows := make([][]string, len(t.Rows))
	for r, raw := range t.Rows {
		row := make([]string, len(keep))
		for c, src := range keep {
			if src < len(raw) {
				row[c] = raw[src]
			}
		}
		rows[r] = row
	}

	return Frame{
		Schema: Schema{
			Lanes:   lanes,
			Columns: columns,
			Dropped: len(normalized) - len(keep),
		},
		rows:  rows,
		index: index,
	}
}

// ForwardFill replaces blank segment-level cells with the last non-blank value
// above them, modelling merged cells that span a segment's lane sub-rows.
func (f Frame) ForwardFill() {
	for _, field := range SegmentFields {
		col, ok := f.index[field]
		if !ok {
			continue
		}
		last := ""
		for _, row := range f.rows {
			if isBlank(row[col]) {
				row[col] = last
				continue
			}
			last = row[col]
		}
	}
}

// Coerce blanks every measurement cell that does not parse as a number.
func (f Frame) Coerce() {
	for name, col := range f.index {
		if !IsMeasurementColumn(name) {
			continue
		}
		for _, row := range f.rows {
			if ParseNumber(row[col]) == nil {
				row[col] = ""
			}
		}
	}
}

// Rows returns the frame's rows in sheet order.
func (f Frame) Rows() []Row {
	out := make([]Row, len(f.rows))
	for i, cells := range f.rows {
		out[i] = Row{cells: cells, index: f.index}
	}
	return out
}

// IsMeasurementColumn reports whether a canonical column holds a coordinate
// or a condition measurement.
func IsMeasurementColumn(name string) bool {
	for _, m := range measurementMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// Row is one data row addressed by canonical column name. Every accessor
// returns nil for a missing column or a blank cell.
type Row struct {
	cells []string
	index map[string]int
}

// NewRow builds a row from canonical name to cell text. Intended for callers
// that already hold renamed data.
func NewRow(cells map[string]string) Row {
	r := Row{index: make(map[string]int, len(cells))}
	for name, v := range cells {
		r.index[name] = len(r.cells)
		r.cells = append(r.cells, v)
	}
	return r
}

func (r Row) cell(name string) (string, bool) {
	col, ok := r.index[name]
	if !ok || col >= len(r.cells) || isBlank(r.cells[col]) {
		return "", false
	}
	return strings.TrimSpace(r.cells[col]), true
}

// Text returns the trimmed cell text.
func (r Row) Text(name string) *string {
	v, ok := r.cell(name)
	if !ok {
		return nil
	}
	return &v
}

// Number returns the cell parsed as a float.
func (r Row) Number(name string) *float64 {
	v, ok := r.cell(name)
	if !ok {
		return nil
	}
	return ParseNumber(v)
}

// ParseNumber parses s as a float, returning nil for blank, unparsable, NaN
// or infinite input.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
