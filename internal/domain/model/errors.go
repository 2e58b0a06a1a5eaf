package model

import "errors"

// Sentinel error kinds for domain model validation.
var (
	ErrInvalidLocation = errors.New("invalid location")
)
