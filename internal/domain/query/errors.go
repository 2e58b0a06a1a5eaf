package query

import "errors"

// Sentinel error kinds for filter construction.
var (
	ErrInvalidHour      = errors.New("invalid hour range")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidWindow    = errors.New("invalid moon window")
	ErrNoValues         = errors.New("predicate needs at least one value")
)
