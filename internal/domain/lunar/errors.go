package lunar

import "errors"

// Sentinel error kinds for moon phase windows.
var ErrInvalidWindow = errors.New("invalid moon window")
