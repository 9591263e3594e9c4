package parser

import (
	"strings"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
)

// searchFields lists the record paths whose text is searched, in order.
var searchFields = [][]string{
	{"id"},
	{"source"},
	{"target"},
	{"revision", "revision1"},
	{"revision", "revision2"},
}

// ParseSearchTerms splits comma-separated input into normalized terms.
// Order and duplicates are preserved, blank phrases are dropped.
func ParseSearchTerms(text string) []models.SearchTerm {
	var terms []models.SearchTerm
	for _, part := range strings.Split(text, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		terms = append(terms, models.SearchTerm(part))
	}
	return terms
}

// Candidates returns the lower-cased searchable strings of a record.
// Missing and null fields contribute nothing.
func Candidates(record any) []string {
	var out []string
	for _, path := range searchFields {
		v, ok := Lookup(record, path...)
		if !ok || v == nil {
			continue
		}
		out = append(out, strings.ToLower(FormatValue(v)))
	}
	return out
}

// Match reports whether term matches any searchable field of record.
func Match(term models.SearchTerm, record any) bool {
	return MatchCandidates(term, Candidates(record))
}

// MatchCandidates reports whether term matches any of the candidates.
//
// One word matches as a substring. Two words match adjacent in either
// order. Three or more words must appear exactly in the given order.
func MatchCandidates(term models.SearchTerm, candidates []string) bool {
	words := strings.Fields(strings.ToLower(string(term)))
	if len(words) == 0 {
		return false
	}

	var needles []string
	switch len(words) {
	case 1:
		needles = []string{words[0]}
	case 2:
		needles = []string{words[0] + " " + words[1], words[1] + " " + words[0]}
	default:
		needles = []string{strings.Join(words, " ")}
	}

	for _, c := range candidates {
		for _, n := range needles {
			if strings.Contains(c, n) {
				return true
			}
		}
	}
	return false
}
