package config

import "errors"

// Sentinel errors returned by New/Load/Validate; match with errors.Is.
var (
	// ErrInvalidConfig marks a setting outside its accepted range.
	ErrInvalidConfig = errors.New("config: invalid setting")
	// ErrLoadConfig marks a file or environment source that could not be read.
	ErrLoadConfig = errors.New("config: load failed")
)
