package grid

import (
	"context"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

// yieldEvery is how many records are processed between cancellation checks.
const yieldEvery = 256

// BuildParams holds parameters for sheet building.
type BuildParams struct {
	// DefaultSheetName names the sheet when no search terms are given.
	// It is sanitized the same way as names derived from terms.
	DefaultSheetName string
}

// DefaultBuildParams returns default sheet building parameters.
func DefaultBuildParams() BuildParams {
	return BuildParams{
		DefaultSheetName: DefaultSheetName,
	}
}

// BuildSheets groups records into sheets.
// Without terms every record goes to a single default sheet. Otherwise each
// term (duplicates included) gets its own sheet holding the records it
// matches, in source order; a term matching nothing still gets a sheet.
func BuildSheets(ctx context.Context, records []any, terms []models.SearchTerm, params BuildParams) ([]models.Sheet, error) {
	names := NewNameSet()

	if len(terms) == 0 {
		name := params.DefaultSheetName
		if name == "" {
			name = DefaultSheetName
		}
		flat, err := flattenAll(ctx, records)
		if err != nil {
			return nil, err
		}
		return []models.Sheet{{Name: names.Claim(SanitizeSheetName(name)), Records: flat}}, nil
	}

	sheets := make([]models.Sheet, 0, len(terms))
	for _, term := range terms {
		matched, err := filterRecords(ctx, records, term)
		if err != nil {
			return nil, err
		}
		flat, err := flattenAll(ctx, matched)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, models.Sheet{
			Name:    names.Claim(SheetName(term)),
			Term:    term,
			Records: flat,
		})
	}
	return sheets, nil
}

func filterRecords(ctx context.Context, records []any, term models.SearchTerm) ([]any, error) {
	var matched []any
	for i, r := range records {
		if i%yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if parser.Match(term, r) {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func flattenAll(ctx context.Context, records []any) ([]models.FlatRecord, error) {
	out := make([]models.FlatRecord, 0, len(records))
	for i, r := range records {
		if i%yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out = append(out, parser.Flatten(r))
	}
	return out, nil
}
