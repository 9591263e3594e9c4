package models

// Document is a parsed JSON file together with where it came from.
type Document struct {
	// Name is the imported file name (no path).
	Name string `json:"name"`
	// Size is the file size in bytes as reported by the source.
	Size int64 `json:"size"`
	// Value is the decoded JSON value: nil, bool, json.Number, string,
	// []any or *Object.
	Value any `json:"-"`
}

// FlatRecord maps dotted key paths to leaf values, in first-seen order.
type FlatRecord struct {
	// Keys lists dotted paths in the order they were produced.
	Keys []string
	// Values maps dotted path to a scalar, nil or []any leaf.
	Values map[string]any
}

// NewFlatRecord returns an empty FlatRecord.
func NewFlatRecord() FlatRecord {
	return FlatRecord{Values: make(map[string]any)}
}

// Set assigns value to path, appending path if it is new.
func (r *FlatRecord) Set(path string, value any) {
	if _, ok := r.Values[path]; !ok {
		r.Keys = append(r.Keys, path)
	}
	r.Values[path] = value
}

// Get returns the leaf stored under path.
func (r FlatRecord) Get(path string) (any, bool) {
	v, ok := r.Values[path]
	return v, ok
}
