package excel

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/highway-survey-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves t as a single-sheet workbook with two header rows.
// Runs of equal outer labels are written once and merged across their
// columns, the way survey sheets are laid out. Numeric cells are stored as
// numbers.
func WriteWorkbook(path string, t domain.RawTable) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	if err := writeHeaders(f, sheet, t.Headers); err != nil {
		return err
	}

	for r, row := range t.Rows {
		for c, v := range row {
			if strings.TrimSpace(v) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+headerRows+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeHeaders(f *excelize.File, sheet string, headers []domain.HeaderPair) error {
	for i := 0; i < len(headers); {
		outer := headers[i].Outer
		end := i
		for end+1 < len(headers) && outer != "" && headers[end+1].Outer == outer {
			end++
		}

		first, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, first, outer); err != nil {
			return fmt.Errorf("write header %s: %w", first, err)
		}
		if end > i {
			last, err := excelize.CoordinatesToCellName(end+1, 1)
			if err != nil {
				return err
			}
			if err := f.MergeCell(sheet, first, last); err != nil {
				return fmt.Errorf("merge %s:%s: %w", first, last, err)
			}
		}

		for c := i; c <= end; c++ {
			cell, err := excelize.CoordinatesToCellName(c+1, 2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, headers[c].Inner); err != nil {
				return fmt.Errorf("write header %s: %w", cell, err)
			}
		}
		i = end + 1
	}
	return nil
}

func cellValue(v string) any {
	if n := domain.ParseNumber(v); n != nil {
		return *n
	}
	return v
}
