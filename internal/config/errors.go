package config

import "errors"

// Sentinel errors for the config package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrInvalidValue is returned when a recognized variable or config field
	// cannot be parsed.
	ErrInvalidValue = errors.New("invalid configuration value")

	// ErrRelativeExecutable is returned when the executable override is not
	// an absolute path.
	ErrRelativeExecutable = errors.New("executable override must be an absolute path")

	// ErrUnknownClient is returned for a client identity outside the enumeration.
	ErrUnknownClient = errors.New("unknown client identity")
)
