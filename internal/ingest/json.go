package ingest

import (
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/persist"
)

// ImportJSON validates a backup document. The returned patch carries only the
// collections present in data; nothing is applied on failure.
func ImportJSON(data []byte) (core.StatePatch, error) {
	patch, err := persist.DecodeDocument(data)
	if err != nil {
		return core.StatePatch{}, fmt.Errorf("%w: %v", ErrJSONParse, err)
	}
	return patch, nil
}
