package service

import "errors"

// Sentinel kinds for analysis runs.
var (
	ErrNoDataset      = errors.New("no dataset")
	ErrInvalidSetting = errors.New("invalid analysis setting")
	ErrSpeciesFailed  = errors.New("species analysis failed")
)
