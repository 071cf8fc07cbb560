// Command genmock writes a synthetic two-header survey workbook for local
// runs and tests. It can also write the documents the ETL produces for the
// generated sheet, using the real domain transform, so fixtures and
// expectations never drift apart.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/survey.xlsx \
//	  -expected data/mock/survey_segments.json \
//	  -lanes L1,L2,R1,R2 -segments 40 -layout stacked
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/adapter/excel"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

const (
	layoutWide    = "wide"
	layoutStacked = "stacked"
)

// importedAt stamps the expected documents so regenerated fixtures diff cleanly.
var importedAt = time.Date(2024, time.March, 1, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the survey workbook (.xlsx)")
	expected := flag.String("expected", "", "optional output path for the transformed segments JSON")
	lanes := flag.String("lanes", "L1,L2,R1,R2", "comma-separated lane codes")
	segments := flag.Int("segments", 20, "number of segments to generate")
	length := flag.Float64("length", 500, "segment length in metres")
	highway := flag.String("highway", "NH44", "highway number")
	layout := flag.String("layout", layoutStacked, "row layout: wide (all lanes on one row) or stacked (one row per lane)")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *layout != layoutWide && *layout != layoutStacked {
		return fmt.Errorf("unknown layout %q", *layout)
	}

	g := newGenerator(generatorConfig{
		Highway:  *highway,
		Lanes:    splitLanes(*lanes),
		Segments: *segments,
		Length:   *length,
		Stacked:  *layout == layoutStacked,
		Seed:     *seed,
	})
	table := g.Table()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := excel.WriteWorkbook(*out, table); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	log.Printf("wrote workbook: %s (%d rows, %d columns)", *out, len(table.Rows), len(table.Headers))

	// Transform what the reader sees, not the in-memory table, so the
	// expectations include header parsing.
	readBack, err := excel.NewReader(*out, table.Sheet, slog.Default()).Extract(context.Background())
	if err != nil {
		return fmt.Errorf("reading workbook back: %w", err)
	}

	domain.SetClock(clockwork.NewFakeClockAt(importedAt))
	defer domain.SetClock(nil)

	result := domain.TransformTable(readBack, domain.DefaultOptions())
	domain.StampImport(result.Segments, "genmock")

	if *expected != "" {
		if err := writeJSON(*expected, result.Segments); err != nil {
			return fmt.Errorf("writing expected segments: %w", err)
		}
		log.Printf("wrote expected segments: %s", *expected)
	}

	printStats(result)
	return nil
}

func splitLanes(s string) []string {
	var lanes []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			lanes = append(lanes, l)
		}
	}
	return lanes
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(r domain.Result) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Lanes discovered: %s\n", strings.Join(r.Schema.Lanes, ", "))
	fmt.Printf("Rows: %d, segments: %d, empty: %d, merged rows: %d\n",
		r.Stats.Rows, r.Stats.Segments, r.Stats.EmptySegments, r.Stats.MergedRows)
	fmt.Printf("Lanes: %d, skipped: %d\n", r.Stats.Lanes, r.Stats.SkippedLanes)
	fmt.Printf("Critical: roughness=%d, rutDepth=%d, crackPercent=%d, ravelling=%d\n",
		r.Stats.Critical.Roughness, r.Stats.Critical.RutDepth,
		r.Stats.Critical.CrackPercent, r.Stats.Critical.Ravelling)

	if len(r.Segments) == 0 {
		return
	}
	overall := domain.HighwayConditionStats(r.Segments[0].Highway, r.Segments)
	fmt.Printf("Percentages: roughness=%s, rutDepth=%s, crackPercent=%s, ravelling=%s\n",
		overall.Percentages.Roughness, overall.Percentages.RutDepth,
		overall.Percentages.CrackPercent, overall.Percentages.Ravelling)
	for _, lane := range r.Schema.Lanes {
		s := domain.LaneConditionStats(r.Segments[0].Highway, lane, r.Segments)
		fmt.Printf("  %s: lanes=%d mean roughness=%.1f max=%.1f\n",
			lane, s.TotalLanes, s.Averages.Roughness.Mean, s.Averages.Roughness.Max)
	}
}
