package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// headerRows is the number of header rows above the data.
const headerRows = 2

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrMissingHeader     = errors.New("input needs two header rows")
)

// Reader loads a survey sheet from an xlsx workbook or a CSV export.
// It implements pipeline.Extractor.
type Reader struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewReader creates a reader for path. An empty sheet selects the first sheet
// of a workbook and is ignored for CSV input.
func NewReader(path, sheet string, logger *slog.Logger) *Reader {
	return &Reader{path: path, sheet: sheet, logger: logger}
}

// Extract reads the whole sheet into a RawTable.
func (r *Reader) Extract(ctx context.Context) (domain.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawTable{}, err
	}

	start := time.Now()
	var (
		table domain.RawTable
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(r.path)); ext {
	case ".xlsx", ".xlsm":
		table, err = r.readWorkbook()
	case ".csv":
		table, err = r.readCSV()
	default:
		return domain.RawTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return domain.RawTable{}, err
	}

	r.logger.Info("survey sheet read",
		"path", r.path,
		"sheet", table.Sheet,
		"columns", len(table.Headers),
		"rows", len(table.Rows),
		"duration", time.Since(start),
	)
	return table, nil
}

func (r *Reader) readWorkbook() (domain.RawTable, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.RawTable{}, fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return domain.RawTable{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < headerRows {
		return domain.RawTable{}, fmt.Errorf("%w: sheet %q has %d rows", ErrMissingHeader, sheet, len(rows))
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read merged cells of %q: %w", sheet, err)
	}
	width := tableWidth(rows)
	header := padRows(rows[:headerRows], width)
	fillMergedHeaders(header, merges)

	return domain.RawTable{
		Source:  r.path,
		Sheet:   sheet,
		Headers: buildHeaders(header[0], header[1]),
		Rows:    dataRows(rows[headerRows:], width),
	}, nil
}

func (r *Reader) readCSV() (domain.RawTable, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < headerRows {
		return domain.RawTable{}, fmt.Errorf("%w: csv has %d rows", ErrMissingHeader, len(rows))
	}

	width := tableWidth(rows)
	header := padRows(rows[:headerRows], width)
	return domain.RawTable{
		Source:  r.path,
		Sheet:   strings.TrimSuffix(filepath.Base(r.path), filepath.Ext(r.path)),
		Headers: buildHeaders(header[0], header[1]),
		Rows:    dataRows(rows[headerRows:], width),
	}, nil
}

// fillMergedHeaders copies the value of each merged range that touches the
// header rows into every header cell the range covers.
func fillMergedHeaders(header [][]string, merges []excelize.MergeCell) {
	for _, mc := range merges {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		value := mc.GetCellValue()
		for row := startRow; row <= endRow && row <= len(header); row++ {
			for col := startCol; col <= endCol && col <= len(header[row-1]); col++ {
				header[row-1][col-1] = value
			}
		}
	}
}

// buildHeaders pairs the two header rows. A blank outer label inherits the one
// to its left while the column still has an inner label; remaining blanks get
// "Unnamed: <col>_level_<n>" placeholders. Repeated pairs get ".1", ".2", ...
// appended to the inner label.
func buildHeaders(outerRow, innerRow []string) []domain.HeaderPair {
	headers := make([]domain.HeaderPair, len(outerRow))
	seen := make(map[domain.HeaderPair]int, len(outerRow))

	last := ""
	for i := range outerRow {
		outer := strings.TrimSpace(outerRow[i])
		inner := strings.TrimSpace(innerRow[i])

		switch {
		case outer != "":
			last = outer
		case inner != "" && last != "":
			outer = last
		default:
			outer = fmt.Sprintf("Unnamed: %d_level_0", i)
			last = ""
		}
		if inner == "" {
			inner = fmt.Sprintf("Unnamed: %d_level_1", i)
		}

		pair := domain.HeaderPair{Outer: outer, Inner: inner}
		if n := seen[pair]; n > 0 {
			seen[pair] = n + 1
			pair.Inner = fmt.Sprintf("%s.%d", inner, n)
		} else {
			seen[pair] = 1
		}
		headers[i] = pair
	}
	return headers
}

// dataRows pads every row to width and skips rows with no content.
func dataRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		out = append(out, padRow(row, width))
	}
	return out
}

func tableWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	return width
}

func padRows(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = padRow(row, width)
	}
	return out
}

func padRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
