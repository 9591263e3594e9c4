package importer

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

// File is an input to import.
type File struct {
	// Name is the file name; only its base is kept.
	Name string
	// Size is the byte length if known, otherwise 0.
	Size int64
	// Body yields the file content.
	Body io.Reader
}

// Import reads f, parses it as JSON and returns the document.
// Progress goes 0 -> 70 while reading, 75 once the text is decoded and 85
// when parsing starts; reporting 100 is left to whoever commits the result.
func Import(ctx context.Context, f File, opts Options, progress ProgressFunc) (*models.Document, error) {
	report(progress, 0)

	text, err := Read(ctx, f.Body, f.Size, opts, progress)
	if err != nil {
		return nil, err
	}
	report(progress, ProgressParseQueued)

	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	report(progress, ProgressParsing)

	value, err := Parse(ctx, text)
	if err != nil {
		return nil, err
	}

	return &models.Document{
		Name:  filepath.Base(f.Name),
		Size:  f.Size,
		Value: value,
	}, nil
}

// Parse decodes text on a separate goroutine so the caller can stop
// waiting as soon as ctx is cancelled. The abandoned parse finishes in the
// background and its result is dropped.
func Parse(ctx context.Context, text string) (any, error) {
	type result struct {
		value any
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := parser.DecodeJSON(text)
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ErrCancelled
	case r := <-done:
		if r.err != nil {
			return nil, &SyntaxError{Err: r.err}
		}
		return r.value, nil
	}
}

// IsJSONFile reports whether a file looks like JSON by its content type or
// its extension.
func IsJSONFile(name, contentType string) bool {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/json" {
			return true
		}
	}
	return strings.EqualFold(filepath.Ext(name), ".json")
}
