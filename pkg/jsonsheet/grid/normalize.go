package grid

import (
	"context"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

// Normalize builds a rectangular grid for every sheet and returns them as
// a workbook in sheet order.
func Normalize(ctx context.Context, bookName string, sheets []models.Sheet) (*models.Workbook, error) {
	wb := &models.Workbook{
		BookName: bookName,
		Sheets:   make([]models.NamedGrid, 0, len(sheets)),
	}
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, cells := BuildTable(sheet.Records)
		wb.Sheets = append(wb.Sheets, models.NamedGrid{
			Name:  sheet.Name,
			Rows:  rows,
			Cells: cells,
		})
	}
	return wb, nil
}

// BuildGrid lays records out under the union of their keys.
// The header lists keys in first-seen order; absent values are "".
func BuildGrid(records []models.FlatRecord) models.Grid {
	g, _ := BuildTable(records)
	return g
}

// BuildTable is BuildGrid that also returns the leaf behind every data
// cell, nil where the record lacks the key.
func BuildTable(records []models.FlatRecord) (models.Grid, [][]any) {
	header := unionKeys(records)

	g := make(models.Grid, 0, len(records)+1)
	g = append(g, header)
	cells := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		leaves := make([]any, len(header))
		for i, key := range header {
			if v, ok := rec.Get(key); ok {
				row[i] = parser.FormatValue(v)
				leaves[i] = v
			}
		}
		g = append(g, row)
		cells = append(cells, leaves)
	}
	return Pad(g), cells
}

// Pad extends every row with "" to the width of the widest row.
func Pad(g models.Grid) models.Grid {
	width := maxRowWidth(g)
	for i, row := range g {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			g[i] = padded
		}
	}
	return g
}

func unionKeys(records []models.FlatRecord) []string {
	seen := make(map[string]bool)
	header := []string{}
	for _, rec := range records {
		for _, key := range rec.Keys {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}
	return header
}

// maxRowWidth returns the length of the longest row.
func maxRowWidth(g models.Grid) int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
