// Package parser provides JSON decoding, flattening and record matching.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
)

// ErrUnexpectedEnd is returned when the input ends before a complete value.
var ErrUnexpectedEnd = errors.New("unexpected end of JSON input")

// DecodeJSON decodes a single JSON value from text.
// Objects are returned as *models.Object so that key order survives,
// numbers as json.Number.
func DecodeJSON(text string) (any, error) {
	return DecodeJSONReader(strings.NewReader(text))
}

// DecodeJSONReader decodes a single JSON value from r.
// Anything other than whitespace after the value is an error.
func DecodeJSONReader(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, normalizeDecodeError(err)
	}

	tok, err := dec.Token()
	switch {
	case errors.Is(err, io.EOF):
		return v, nil
	case err != nil:
		return nil, normalizeDecodeError(err)
	default:
		return nil, fmt.Errorf("unexpected %v after top-level value at offset %d", tok, dec.InputOffset())
	}
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// bool, json.Number, string or nil
		return tok, nil
	}

	switch delim {
	case '{':
		obj := models.NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("invalid object key %v at offset %d", keyTok, dec.InputOffset())
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := make([]any, 0)
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected %q at offset %d", rune(delim), dec.InputOffset())
	}
}

func normalizeDecodeError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEnd
	}
	return err
}
