package effort

import "errors"

// Sentinel error kinds for effort accounting.
var ErrInvalidMonth = errors.New("invalid month")
