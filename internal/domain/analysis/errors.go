package analysis

import "errors"

// Sentinel error kinds for analysis helpers.
var (
	ErrInvalidConfidence = errors.New("confidence must be in (0,1)")
	ErrEmptyPattern      = errors.New("activity pattern has no observations")
)
