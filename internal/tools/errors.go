package tools

import "errors"

var (
	// ErrUnknownTool is returned for a name not in the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMissingInput is returned when a required input field is empty.
	ErrMissingInput = errors.New("missing required input")
)
