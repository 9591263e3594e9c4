package parser

import "github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"

// DefaultRecordKey is the document member holding the record array.
const DefaultRecordKey = "parallel"

// ExtractRecords returns the records of a decoded document.
// If doc is an object with key, an array value yields its elements and any
// other value yields a single record. Without key the whole document is
// the single record.
func ExtractRecords(doc any, key string) []any {
	if key == "" {
		key = DefaultRecordKey
	}

	obj, ok := doc.(*models.Object)
	if !ok {
		return []any{doc}
	}

	value, ok := obj.Get(key)
	if !ok {
		return []any{doc}
	}

	if arr, ok := value.([]any); ok {
		return arr
	}
	return []any{value}
}

// Lookup follows path through nested objects.
// It reports false as soon as a step is missing or not an object.
func Lookup(value any, path ...string) (any, bool) {
	cur := value
	for _, key := range path {
		obj, ok := cur.(*models.Object)
		if !ok {
			return nil, false
		}
		cur, ok = obj.Get(key)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
