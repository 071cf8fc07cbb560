// Command validate performs integrity checks on a survey workbook and the
// documents the ETL builds from it: schema discovery, per-segment invariants
// and, optionally, parity against a JSON export of the segment collection.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -input data/mock/survey.xlsx \
//	  -export data/mock/survey_segments.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/highway-survey-etl/internal/adapter/excel"
	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/joho/godotenv"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	_ = godotenv.Load()

	input := flag.String("input", os.Getenv("INPUT_FILE"), "survey workbook (.xlsx or .csv)")
	sheet := flag.String("sheet", os.Getenv("SHEET_NAME"), "sheet to read (default: first sheet)")
	export := flag.String("export", "", "optional JSON export of the segment collection to compare against")
	noMerge := flag.Bool("no-merge", false, "validate with segment row merging disabled")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := domain.DefaultOptions()
	opts.MergeRows = !*noMerge

	if code := run(os.Stdout, *input, *sheet, *export, opts); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, input, sheet, exportPath string, opts domain.Options) int {
	fmt.Fprintln(w, "=== Highway Survey Integrity Validation ===")
	fmt.Fprintln(w)

	table, err := excel.NewReader(input, sheet, slog.New(slog.NewTextHandler(io.Discard, nil))).Extract(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read survey: %v\n", err)
		return 1
	}
	result := domain.TransformTable(table, opts)

	// Lanes are classified against the limits of their own row, which a
	// merged document no longer carries.
	perRow := opts
	perRow.MergeRows = false
	rows := domain.TransformTable(table, perRow).Segments

	phases := []*phase{
		validateSchema(result.Schema),
		validateSegments(result.Segments, rows, opts),
	}

	if exportPath != "" {
		exported, err := loadJSON[domain.Segment](exportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load export: %v\n", err)
			return 1
		}
		phases = append(phases, validateExportParity(result.Segments, exported))
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sheet %q: %d rows, lanes [%s], %d segments, %d lanes, %d empty rows\n",
		table.Sheet, result.Stats.Rows, strings.Join(result.Schema.Lanes, ", "),
		result.Stats.Segments, result.Stats.Lanes, result.Stats.EmptySegments)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Fprintf(w, "  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Fprintln(w, "\nAll checks passed.")
	return 0
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// validateSchema checks that lanes were discovered and every expected
// canonical column is present.
func validateSchema(s domain.Schema) *phase {
	p := &phase{name: "Phase 1: Schema discovery"}

	if len(s.Lanes) == 0 {
		p.errorf("no lane columns found")
	}
	for _, col := range s.MissingColumns() {
		p.errorf("missing column %s", col)
	}
	return p
}

// validateSegments checks the invariants every produced document must hold.
// Lane statuses are checked on rows, the unmerged segments, against the
// limits each row carries.
func validateSegments(segments, rows []domain.Segment, opts domain.Options) *phase {
	p := &phase{name: "Phase 2: Segment integrity"}

	keys := make(map[string]int, len(segments))
	for i := range segments {
		seg := &segments[i]
		label := fmt.Sprintf("segment %d (%s)", i, seg.Key())

		if seg.Highway == "" {
			p.errorf("%s: missing highway", label)
		}
		if seg.StartChainage != nil && seg.EndChainage != nil && *seg.EndChainage < *seg.StartChainage {
			p.errorf("%s: end chainage %g before start %g", label, *seg.EndChainage, *seg.StartChainage)
		}
		if len(seg.Lanes) == 0 {
			p.errorf("%s: no lanes", label)
		}

		seen := make(map[string]bool, len(seg.Lanes))
		for _, l := range seg.Lanes {
			if seen[l.LaneID] {
				p.errorf("%s: lane %s repeated", label, l.LaneID)
			}
			seen[l.LaneID] = true
		}

		// A repeated key is a second survey pass only when it repeats a lane.
		if opts.MergeRows && seg.HasChainage() {
			if prev, dup := keys[seg.Key()]; dup && !repeatsLane(segments[prev], *seg) {
				p.errorf("%s: duplicate of segment %d", label, prev)
			}
			keys[seg.Key()] = i
		}
	}

	for i := range rows {
		row := &rows[i]
		label := fmt.Sprintf("row segment %d (%s)", i, row.Key())
		limits := domain.ResolveLimits(row.IRILimit, row.RuttingLimit, row.CrackingLimit, row.RavellingLimit, opts.Defaults)
		for _, l := range row.Lanes {
			checkLane(p, label, l, limits)
		}
	}
	return p
}

func repeatsLane(a, b domain.Segment) bool {
	for _, l := range b.Lanes {
		if _, ok := a.FindLane(l.LaneID); ok {
			return true
		}
	}
	return false
}

func checkLane(p *phase, label string, l domain.Lane, limits domain.Limits) {
	if l.StartLat == nil && l.StartLng == nil && l.Roughness == nil {
		p.errorf("%s lane %s: no location or roughness", label, l.LaneID)
	}
	if want := domain.ClassifyLane(l, limits); want != l.Status {
		p.errorf("%s lane %s: status %+v, limits imply %+v", label, l.LaneID, l.Status, want)
	}
	for name, v := range map[string]*float64{
		"rutDepth":         l.RutDepth,
		"crackPercent":     l.CrackPercent,
		"ravellingPercent": l.RavellingPercent,
		"roughness":        l.Roughness,
	} {
		if v != nil && *v < 0 {
			p.errorf("%s lane %s: negative %s %g", label, l.LaneID, name, *v)
		}
	}
}

// validateExportParity compares the documents built from the workbook with an
// export of the collection, ignoring import bookkeeping.
func validateExportParity(built, exported []domain.Segment) *phase {
	p := &phase{name: "Phase 3: Export parity"}

	if len(built) != len(exported) {
		p.errorf("segment count: workbook=%d export=%d", len(built), len(exported))
	}

	byKey := make(map[string]domain.Segment, len(exported))
	for _, seg := range exported {
		byKey[seg.Key()] = seg
	}

	ignore := cmpopts.IgnoreFields(domain.Segment{}, "ImportID", "ImportedAt")
	for _, seg := range built {
		got, ok := byKey[seg.Key()]
		if !ok {
			p.errorf("segment %s: not in export", seg.Key())
			continue
		}
		if diff := cmp.Diff(seg, got, ignore, cmpopts.EquateEmpty()); diff != "" {
			p.errorf("segment %s: mismatch (-workbook +export):\n%s", seg.Key(), diff)
		}
	}
	return p
}
