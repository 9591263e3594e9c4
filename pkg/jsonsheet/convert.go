package jsonsheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/grid"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/importer"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

// Conversion progress checkpoints, in percent.
const (
	progressConvertStart   = 10
	progressRecordsReady   = 20
	progressSheetsBuilt    = 60
	progressNormalizeStart = 70
	progressNormalized     = 85
	progressVerified       = 95
)

// Convert turns a parsed document into a workbook.
// Without search terms the workbook has one sheet with every record;
// otherwise one sheet per term with the records that term matches.
// progress may be nil; it receives checkpoints up to 95.
func Convert(ctx context.Context, doc *models.Document, terms []models.SearchTerm, opts Options, progress importer.ProgressFunc) (*models.Workbook, error) {
	if doc == nil {
		return nil, NewConversionError("", "records", errors.New("no document"))
	}
	report(progress, progressConvertStart)

	records := parser.ExtractRecords(doc.Value, opts.ResolvedRecordKey())
	report(progress, progressRecordsReady)

	sheets, err := grid.BuildSheets(ctx, records, terms, grid.BuildParams{
		DefaultSheetName: opts.ResolvedSheetName(),
	})
	if err != nil {
		return nil, NewConversionError("", "sheets", err)
	}
	report(progress, progressSheetsBuilt)

	report(progress, progressNormalizeStart)
	wb, err := grid.Normalize(ctx, doc.Name, sheets)
	if err != nil {
		return nil, NewConversionError("", "normalize", err)
	}
	report(progress, progressNormalized)

	if err := verify(wb); err != nil {
		return nil, err
	}
	report(progress, progressVerified)

	return wb, nil
}

// verify checks that every grid is rectangular and its typed cells line
// up with the data rows.
func verify(wb *models.Workbook) error {
	for _, sheet := range wb.Sheets {
		if len(sheet.Rows) == 0 {
			return NewConversionError(sheet.Name, "grid", errors.New("missing header row"))
		}
		width := sheet.Rows.Width()
		for i, row := range sheet.Rows {
			if len(row) != width {
				return NewConversionError(sheet.Name, "grid",
					fmt.Errorf("row %d has %d cells, want %d", i, len(row), width))
			}
		}
		if sheet.Cells != nil && len(sheet.Cells) != len(sheet.Rows)-1 {
			return NewConversionError(sheet.Name, "grid",
				fmt.Errorf("%d typed rows for %d data rows", len(sheet.Cells), len(sheet.Rows)-1))
		}
	}
	return nil
}

func report(progress importer.ProgressFunc, percent int) {
	if progress != nil {
		progress(percent)
	}
}
