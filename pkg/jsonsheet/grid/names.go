// Package grid turns flattened records into named rectangular sheets.
package grid

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
)

// DefaultSheetName names the sheet of an unfiltered conversion.
const DefaultSheetName = "Sheet1"

// fallbackSheetName replaces a name that sanitizes to nothing.
const fallbackSheetName = "Sheet"

var invalidSheetChars = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SheetName derives a sheet name from a search term: lower-cased, then
// made safe by SanitizeSheetName.
func SheetName(term models.SearchTerm) string {
	return SanitizeSheetName(strings.ToLower(string(term)))
}

// SanitizeSheetName truncates name to the spreadsheet limit and replaces
// characters spreadsheets reject with '_'. Leading and trailing
// apostrophes are dropped; a blank result becomes "Sheet".
func SanitizeSheetName(name string) string {
	name = truncateRunes(name, excelize.MaxSheetNameLength)
	name = invalidSheetChars.Replace(name)
	name = strings.Trim(name, "'")
	if strings.TrimSpace(name) == "" {
		return fallbackSheetName
	}
	return name
}

// NameSet hands out unique sheet names. Spreadsheet applications compare
// sheet names case-insensitively, so does NameSet.
type NameSet struct {
	used map[string]bool
}

// NewNameSet returns an empty NameSet.
func NewNameSet() *NameSet {
	return &NameSet{used: make(map[string]bool)}
}

// Claim returns name if it is free, otherwise name with the first free
// " (n)" suffix, n >= 2. The result never exceeds the sheet name limit.
func (s *NameSet) Claim(name string) string {
	if !s.used[strings.ToLower(name)] {
		s.used[strings.ToLower(name)] = true
		return name
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := truncateRunes(name, excelize.MaxSheetNameLength-utf8.RuneCountInString(suffix))
		candidate := base + suffix
		if !s.used[strings.ToLower(candidate)] {
			s.used[strings.ToLower(candidate)] = true
			return candidate
		}
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
