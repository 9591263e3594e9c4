package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
)

// FormatValue renders a leaf value as cell text.
// nil becomes "", numbers keep their source text, arrays and objects are
// written as compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []any, *models.Object:
		return compactJSON(val)
	default:
		return fmt.Sprint(val)
	}
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// CellValue returns the value to store in a spreadsheet cell for a leaf.
// Numbers become int64 when integral and in range, float64 otherwise;
// booleans stay booleans; strings are kept verbatim even when they look
// numeric. Everything else is written as its cell text.
func CellValue(v any) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		return val.String()
	default:
		return FormatValue(val)
	}
}
