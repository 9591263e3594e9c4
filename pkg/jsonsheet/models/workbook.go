package models

// NamedGrid pairs a sheet name with its grid.
type NamedGrid struct {
	Name string `json:"name"`
	Rows Grid   `json:"rows"`
	// Cells holds the source leaf of every data cell, parallel to
	// Rows.DataRows(); nil means the source is unknown.
	Cells [][]any `json:"-"`
}

// Workbook is an ordered collection of grids keyed by sheet name.
type Workbook struct {
	// BookName is the source file name (no path).
	BookName string `json:"book_name"`
	// Sheets holds the grids in creation order.
	Sheets []NamedGrid `json:"sheets"`
}

// SheetNames returns sheet names in creation order.
func (w *Workbook) SheetNames() []string {
	if w == nil {
		return nil
	}
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Grid returns the grid for the named sheet.
func (w *Workbook) Grid(name string) (Grid, bool) {
	if w == nil {
		return nil, false
	}
	for _, s := range w.Sheets {
		if s.Name == name {
			return s.Rows, true
		}
	}
	return nil, false
}
