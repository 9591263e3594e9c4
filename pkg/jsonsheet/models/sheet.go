package models

// SearchTerm is a trimmed, lower-cased search phrase of one or more words.
type SearchTerm string

// Sheet is a named group of flattened records destined for one grid.
type Sheet struct {
	// Name is the sheet name (at most 31 characters, unique per workbook).
	Name string `json:"name"`
	// Term is the search term that selected the records, empty when unfiltered.
	Term SearchTerm `json:"term,omitempty"`
	// Records contains the flattened records in source order.
	Records []FlatRecord `json:"-"`
}

// Grid is a rectangular table of cell text. Row 0 is the header.
type Grid [][]string

// Header returns the header row, or nil for an empty grid.
func (g Grid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// DataRows returns every row after the header.
func (g Grid) DataRows() [][]string {
	if len(g) < 2 {
		return nil
	}
	return g[1:]
}

// Width returns the number of cells in each row.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}
