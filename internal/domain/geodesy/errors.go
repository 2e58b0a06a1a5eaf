package geodesy

import "errors"

// Sentinel error kinds for coordinate conversion.
var (
	ErrLatitudeOutOfRange  = errors.New("latitude out of range")
	ErrLongitudeOutOfRange = errors.New("longitude out of range")
	ErrNoBand              = errors.New("latitude has no utm band")
	ErrInvalidZone         = errors.New("invalid utm zone")
	ErrInvalidBand         = errors.New("invalid utm band")
	ErrInvalidCoordinate   = errors.New("invalid utm coordinate")
)
