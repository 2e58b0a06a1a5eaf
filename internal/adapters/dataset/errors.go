package dataset

import "errors"

// Sentinel kinds for dataset loading errors.
var (
	ErrDecode            = errors.New("dataset: decode failed")
	ErrValidation        = errors.New("dataset: validation failed")
	ErrInvalidTimestamp  = errors.New("dataset: invalid timestamp")
	ErrUnknownLocation   = errors.New("dataset: unknown location")
	ErrDuplicateLocation = errors.New("dataset: duplicate location")
)
