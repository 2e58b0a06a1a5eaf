package segment

import "errors"

// Sentinel error kinds for segmentation.
var (
	ErrInvalidInterval = errors.New("event interval must be positive")
	ErrInvalidGrouping = errors.New("invalid grouping")
)
