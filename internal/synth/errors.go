package synth

import "errors"

// ErrInvalidConfig is returned by Generate for out-of-range settings.
var ErrInvalidConfig = errors.New("synth: invalid config")
