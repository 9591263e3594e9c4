package jsonsheet

import (
	"errors"
	"fmt"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/importer"
)

// ErrImportCancelled indicates an import was cancelled or superseded.
var ErrImportCancelled = importer.ErrCancelled

// ErrDecode indicates the input bytes could not be decoded to text.
var ErrDecode = importer.ErrDecode

// ErrInvalidJSON indicates the input text is not valid JSON.
var ErrInvalidJSON = importer.ErrInvalidJSON

// ErrFileTooLarge indicates the input exceeded the configured size limit.
var ErrFileTooLarge = importer.ErrTooLarge

// ErrConversion matches every *ConversionError.
var ErrConversion = errors.New("conversion failed")

// ErrNoWorkbook indicates an export was requested before any conversion.
var ErrNoWorkbook = errors.New("no workbook to export")

// ErrSheetNotFound indicates a sheet name that is not in the current workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ConversionError represents an error during conversion.
type ConversionError struct {
	SheetName string
	Component string // "records", "sheets", "normalize", "grid"
	Err       error
}

func (e *ConversionError) Error() string {
	if e.SheetName == "" {
		return fmt.Sprintf("Error converting to Excel format (%s): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("Error converting to Excel format in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// NewConversionError creates a new ConversionError.
func NewConversionError(sheetName, component string, err error) *ConversionError {
	return &ConversionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}

// errorMessage is the text stored in session state for err.
func errorMessage(err error) string {
	if errors.Is(err, ErrImportCancelled) {
		return "Import cancelled"
	}
	return err.Error()
}
