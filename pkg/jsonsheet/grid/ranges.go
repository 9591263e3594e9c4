package grid

import (
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
)

// ColumnLetter returns the spreadsheet column name for a 0-based index
// (0 -> "A", 25 -> "Z", 26 -> "AA").
func ColumnLetter(index int) string {
	name, err := excelize.ColumnNumberToName(index + 1)
	if err != nil {
		return ""
	}
	return name
}

// ColumnLetters returns the column names for a grid's width.
func ColumnLetters(width int) []string {
	letters := make([]string, width)
	for i := range letters {
		letters[i] = ColumnLetter(i)
	}
	return letters
}

// UsedRange returns the cell range covering the grid's non-empty cells
// (e.g. "A1:D10"), or "" when every cell is empty.
func UsedRange(g models.Grid) string {
	top, bottom := -1, -1
	left, right := 0, 0
	for r, row := range g {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			if top < 0 {
				top, left, right = r, c, c
			}
			bottom = r
			left = min(left, c)
			right = max(right, c)
		}
	}
	if top < 0 {
		return ""
	}

	start, err := excelize.CoordinatesToCellName(left+1, top+1)
	if err != nil {
		return ""
	}
	end, err := excelize.CoordinatesToCellName(right+1, bottom+1)
	if err != nil {
		return ""
	}
	return start + ":" + end
}
