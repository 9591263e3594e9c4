// Package jsonsheet converts JSON documents into spreadsheet workbooks.
package jsonsheet

import (
	"log"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/grid"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/importer"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/output"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

// Options configures conversion behavior.
type Options struct {
	// RecordKey names the document member holding the records.
	// If empty, defaults to "parallel".
	RecordKey string
	// DefaultSheetName names the sheet of an unfiltered conversion.
	// If empty, defaults to "Sheet1".
	DefaultSheetName string
}

// DefaultOptions returns default conversion options.
func DefaultOptions() Options {
	return Options{
		RecordKey:        parser.DefaultRecordKey,
		DefaultSheetName: grid.DefaultSheetName,
	}
}

// ResolvedRecordKey returns the record key, falling back to the default.
func (o Options) ResolvedRecordKey() string {
	if o.RecordKey != "" {
		return o.RecordKey
	}
	return parser.DefaultRecordKey
}

// ResolvedSheetName returns the default sheet name, falling back to "Sheet1".
func (o Options) ResolvedSheetName() string {
	if o.DefaultSheetName != "" {
		return o.DefaultSheetName
	}
	return grid.DefaultSheetName
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// Import controls chunked reading.
	Import importer.Options
	// Convert controls record extraction and sheet naming.
	Convert Options
	// Export controls xlsx output.
	Export output.XLSXOptions
	// Logger receives progress and failure messages. If nil, log.Default() is used.
	Logger *log.Logger
}

// DefaultSessionOptions returns default session options.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Import:  importer.DefaultOptions(),
		Convert: DefaultOptions(),
	}
}
