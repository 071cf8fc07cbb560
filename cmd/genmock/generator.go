package main

import (
	"math/rand/v2"
	"strconv"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
)

var structures = []string{"Plain Road", "Culvert", "Minor Bridge", "Major Bridge", "ROB"}

type generatorConfig struct {
	Highway  string
	Lanes    []string
	Segments int
	Length   float64
	Stacked  bool
	Seed     uint64
}

// generator builds a survey sheet in the shape field teams deliver: segment
// columns, a four-column coordinate block per lane, one column per lane for
// each measurement, the limit columns and a remark.
type generator struct {
	cfg generatorConfig
	rng *rand.Rand
	col map[string]int
}

func newGenerator(cfg generatorConfig) *generator {
	return &generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5eed)),
	}
}

// Table returns the generated sheet. In the stacked layout the segment
// columns are only written on the first row of each segment.
func (g *generator) Table() domain.RawTable {
	headers := g.headers()
	g.col = make(map[string]int, len(headers))
	seen := make(map[domain.HeaderPair]int, len(headers))
	for i, h := range headers {
		// Repeated Start/End labels read back as "Start.1", "End.1".
		key := h
		if n := seen[h]; n > 0 {
			key.Inner += "." + strconv.Itoa(n)
		}
		seen[h]++
		g.col[domain.NormalizeHeader(key)] = i
	}

	t := domain.RawTable{Source: "genmock", Sheet: "Survey", Headers: headers}
	lat, lng := 26.1, 76.2
	for s := 0; s < g.cfg.Segments; s++ {
		start := float64(s) * g.cfg.Length
		seg := g.segmentCells(start)
		nextLat, nextLng := lat+0.0045, lng+0.0003

		if g.cfg.Stacked {
			for i, lane := range g.cfg.Lanes {
				row := make([]string, len(headers))
				if i == 0 {
					g.fill(row, seg)
				}
				g.fill(row, g.laneCells(lane, i, lat, lng, nextLat, nextLng))
				t.Rows = append(t.Rows, row)
			}
		} else {
			row := make([]string, len(headers))
			g.fill(row, seg)
			for i, lane := range g.cfg.Lanes {
				g.fill(row, g.laneCells(lane, i, lat, lng, nextLat, nextLng))
			}
			t.Rows = append(t.Rows, row)
		}
		lat, lng = nextLat, nextLng
	}
	return t
}

func (g *generator) headers() []domain.HeaderPair {
	headers := []domain.HeaderPair{
		{Outer: "NH Number"},
		{Outer: "Start Chainage"},
		{Outer: "End Chainage"},
		{Outer: "Length"},
		{Outer: "Structure Details"},
	}
	for _, lane := range g.cfg.Lanes {
		block := "Lane " + lane
		for _, inner := range []string{"Start", "Start", "End", "End"} {
			headers = append(headers, domain.HeaderPair{Outer: block, Inner: inner})
		}
	}
	measurements := []struct{ outer, suffix string }{
		{"Roughness BI", " Lane Roughness BI (in mm/km)"},
		{"Rut Depth", " Rut Depth (in mm)"},
		{"Cracking", " Crack Area (in % area)"},
		{"Ravelling", " Area (% area)"},
	}
	for _, m := range measurements {
		for _, lane := range g.cfg.Lanes {
			headers = append(headers, domain.HeaderPair{Outer: m.outer, Inner: lane + m.suffix})
		}
	}
	return append(headers,
		domain.HeaderPair{Outer: "Limitation of BI as per MoRT&H Circular (in mm/km)"},
		domain.HeaderPair{Outer: "Limitation of Rut Depth as per Concession Agreement (in mm)"},
		domain.HeaderPair{Outer: "Limitation of Cracking as per Concession Agreement (in % area)"},
		domain.HeaderPair{Outer: "Limitation of Ravelling as per Concession Agreement (in % area)"},
		domain.HeaderPair{Outer: "Remark"},
	)
}

func (g *generator) segmentCells(start float64) map[string]string {
	cells := map[string]string{
		"NH Number":         g.cfg.Highway,
		"Start Chainage":    num(start),
		"End Chainage":      num(start + g.cfg.Length),
		"Length":            num(g.cfg.Length),
		"Structure Details": structures[g.rng.IntN(len(structures))],
	}
	// Most rows rely on the default limits; a few carry their own.
	if g.rng.IntN(4) == 0 {
		cells["Limitation of BI as per MoRT&H Circular (in mm/km)"] = "2400"
		cells["Limitation of Rut Depth as per Concession Agreement (in mm)"] = "5"
		cells["Limitation of Cracking as per Concession Agreement (in % area)"] = "5"
		cells["Limitation of Ravelling as per Concession Agreement (in % area)"] = "5"
	}
	if g.rng.IntN(5) == 0 {
		cells["Remark"] = "Patch work"
	}
	return cells
}

func (g *generator) laneCells(lane string, idx int, lat, lng, nextLat, nextLng float64) map[string]string {
	// Offset each lane slightly across the carriageway.
	offset := float64(idx) * 0.00003
	block := "Lane " + lane
	cells := map[string]string{
		block + "_Start":   coord(lat + offset),
		block + "_Start.1": coord(lng + offset),
		block + "_End":     coord(nextLat + offset),
		block + "_End.1":   coord(nextLng + offset),
	}

	// An occasional lane goes unsurveyed.
	if g.rng.IntN(12) == 0 {
		return map[string]string{}
	}
	cells[lane+" Lane Roughness BI (in mm/km)"] = num(float64(1500 + g.rng.IntN(1500)))
	cells[lane+" Rut Depth (in mm)"] = oneDecimal(g.rng.Float64() * 8)
	cells[lane+" Crack Area (in % area)"] = oneDecimal(g.rng.Float64() * 7)
	cells[lane+" Area (% area)"] = oneDecimal(g.rng.Float64() * 7)
	return cells
}

func (g *generator) fill(row []string, cells map[string]string) {
	for header, v := range cells {
		if i, ok := g.col[header]; ok {
			row[i] = v
		}
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
