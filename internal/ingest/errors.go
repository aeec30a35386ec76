package ingest

import (
	"errors"
	"strings"
)

// Terminal ingestion failures. Each aborts the whole operation before
// anything is staged.
var (
	ErrInvalidFileType = errors.New("invalid file type: please select a CSV file")
	ErrFileTooShort    = errors.New("CSV file must have a header row and at least one data row")
	ErrMissingColumns  = errors.New("missing required columns")
	ErrJSONParse       = errors.New("invalid JSON document")
)

// MissingColumnsError lists the required fields no header satisfied, in
// required-field order.
type MissingColumnsError struct {
	Fields []string
}

func (e *MissingColumnsError) Error() string {
	return ErrMissingColumns.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}
