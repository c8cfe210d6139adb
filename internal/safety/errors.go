package safety

import "errors"

// Sentinel errors for the safety package. Callers match with errors.Is.
var (
	// ErrInvalidExecutable is returned when the requested executable is
	// neither the PATH-lookup sentinel nor the configured override.
	ErrInvalidExecutable = errors.New("invalid executable")

	// ErrPathEscape is returned when a working directory or file path
	// resolves outside the base directory.
	ErrPathEscape = errors.New("path escapes base directory")

	// ErrMissingPath is returned when a required file path is empty.
	ErrMissingPath = errors.New("file path is required")
)
