// Package output serializes converted workbooks.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/grid"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

// XLSXExt is the extension of exported workbooks.
const XLSXExt = ".xlsx"

// defaultExportName is used when there is no source file name.
const defaultExportName = "workbook" + XLSXExt

// XLSXOptions configures workbook export.
type XLSXOptions struct {
	// AutoFilter adds a filter to the header row of each non-empty sheet.
	AutoFilter bool
}

// WriteXLSX writes wb as an xlsx file to w, one worksheet per grid.
// Data cells keep the type of their JSON leaf when the grid carries one
// (numbers, booleans, strings); otherwise the cell text is written as is.
func WriteXLSX(w io.Writer, wb *models.Workbook, opts XLSXOptions) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}

		if err := writeRows(f, sheet); err != nil {
			return err
		}

		if opts.AutoFilter && len(sheet.Rows) > 1 {
			if ref := grid.UsedRange(sheet.Rows); ref != "" {
				if err := f.AutoFilter(sheet.Name, ref, nil); err != nil {
					return fmt.Errorf("set autofilter on %q: %w", sheet.Name, err)
				}
			}
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeRows(f *excelize.File, sheet models.NamedGrid) error {
	for r, row := range sheet.Rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}

		var leaves []any
		if r > 0 && r-1 < len(sheet.Cells) {
			leaves = sheet.Cells[r-1]
		}

		values := make([]interface{}, len(row))
		for c, text := range row {
			if c < len(leaves) {
				values[c] = clampCell(parser.CellValue(leaves[c]))
			} else {
				values[c] = clampCell(text)
			}
		}
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("write row %d of %q: %w", r+1, sheet.Name, err)
		}
	}
	return nil
}

// clampCell shortens string values to what a cell can hold.
func clampCell(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return clampCellText(s)
	}
	return v
}

// clampCellText cuts text to the number of characters a cell can hold.
func clampCellText(s string) string {
	if utf8.RuneCountInString(s) <= excelize.TotalCellChars {
		return s
	}
	return string([]rune(s)[:excelize.TotalCellChars])
}

// ExportFileName derives the workbook file name from the imported file
// name by replacing its extension ("data.json" -> "data.xlsx").
func ExportFileName(sourceName string) string {
	base := filepath.Base(sourceName)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return defaultExportName
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		return defaultExportName
	}
	return base + XLSXExt
}
