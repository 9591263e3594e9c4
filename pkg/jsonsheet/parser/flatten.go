package parser

import "github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"

// Flatten collapses a record into dotted key paths.
// Nested objects are recursed into, everything else (including arrays and
// null) becomes a leaf. Empty nested objects contribute no key. A record
// that is not an object flattens to an empty FlatRecord.
func Flatten(record any) models.FlatRecord {
	out := models.NewFlatRecord()
	if obj, ok := record.(*models.Object); ok && obj != nil {
		flattenInto(&out, obj, "")
	}
	return out
}

func flattenInto(out *models.FlatRecord, obj *models.Object, prefix string) {
	for _, key := range obj.Keys {
		value := obj.Values[key]
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if nested, ok := value.(*models.Object); ok && nested != nil {
			flattenInto(out, nested, path)
			continue
		}
		out.Set(path, value)
	}
}
