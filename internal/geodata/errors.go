package geodata

import "errors"

// Load failures are fatal at startup and never retried automatically.
var (
	// ErrLoad covers network, auth and malformed-source failures.
	ErrLoad = errors.New("dataset load failed")

	// ErrParse covers numeric or date fields that fail strict parsing.
	// Financial fields are never silently zero-filled.
	ErrParse = errors.New("dataset field parse failed")
)
