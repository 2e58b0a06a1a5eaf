// Package geodesy converts between WGS84 latitude/longitude and UTM grid
// coordinates, and provides a few distance and area helpers for camera sites.
//
// The projection uses the Krüger series for the transverse Mercator, which is
// accurate to well under a millimetre inside a 6° zone.
package geodesy

import (
	"fmt"
	"math"

	"github.com/okian/camtrap/internal/domain/model"
)

// WGS84 ellipsoid and UTM grid parameters.
const (
	SemiMajorAxis      = 6378137.0
	Flattening         = 1 / 298.257223563
	ScaleFactor        = 0.9996
	FalseEasting       = 500000.0
	FalseNorthingSouth = 10000000.0

	// MinLatitude and MaxLatitude bound the UTM band table.
	MinLatitude = -80.0
	MaxLatitude = 84.0

	zoneCount  = 60
	zoneWidth  = 6.0
	bandHeight = 8.0
)

// bandLetters lists the latitude bands from south to north. I and O are skipped.
const bandLetters = "CDEFGHJKLMNPQRSTUVWX"

type krueger struct {
	n     float64
	a     float64 // rectifying radius
	alpha [3]float64
	beta  [3]float64
	delta [3]float64
}

var wgs84 = newKrueger(SemiMajorAxis, Flattening)

func newKrueger(a, f float64) krueger {
	n := f / (2 - f)
	n2, n3 := n*n, n*n*n
	return krueger{
		n: n,
		a: a / (1 + n) * (1 + n2/4 + n2*n2/64),
		alpha: [3]float64{
			n/2 - 2*n2/3 + 5*n3/16,
			13*n2/48 - 3*n3/5,
			61 * n3 / 240,
		},
		beta: [3]float64{
			n/2 - 2*n2/3 + 37*n3/96,
			n2/48 + n3/15,
			17 * n3 / 480,
		},
		delta: [3]float64{
			2*n - 2*n2/3 - 2*n3,
			7*n2/3 - 8*n3/5,
			56 * n3 / 15,
		},
	}
}

// Zone returns the UTM zone number for a longitude, clamped to 1..60.
func Zone(lng float64) int {
	z := int(math.Floor((lng+180)/zoneWidth)) + 1
	if z < 1 {
		return 1
	}
	if z > zoneCount {
		return zoneCount
	}
	return z
}

// Band returns the latitude band letter. Latitudes outside [-80, 84] have no band.
func Band(lat float64) (byte, error) {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return 0, fmt.Errorf("%w: %.6f", ErrNoBand, lat)
	}
	idx := int(math.Floor((lat - MinLatitude) / bandHeight))
	// X spans 72..84, so the top edge folds into the last letter.
	if idx >= len(bandLetters) {
		idx = len(bandLetters) - 1
	}
	return bandLetters[idx], nil
}

// ToUTM projects a WGS84 latitude/longitude into its natural UTM zone.
func ToUTM(lat, lng float64) (model.UTMCoordinate, error) {
	if err := checkLongitude(lng); err != nil {
		return model.UTMCoordinate{}, err
	}
	return ToUTMInZone(lat, lng, Zone(lng))
}

// ToUTMInZone projects into a caller-chosen zone. It is used when several
// points must share one grid, e.g. for area computations.
func ToUTMInZone(lat, lng float64, zone int) (model.UTMCoordinate, error) {
	if err := checkLatitude(lat); err != nil {
		return model.UTMCoordinate{}, err
	}
	if err := checkLongitude(lng); err != nil {
		return model.UTMCoordinate{}, err
	}
	if zone < 1 || zone > zoneCount {
		return model.UTMCoordinate{}, fmt.Errorf("%w: %d", ErrInvalidZone, zone)
	}
	band, err := Band(lat)
	if err != nil {
		return model.UTMCoordinate{}, err
	}

	easting, northing := wgs84.forward(lat, lng, centralMeridian(zone))
	if lat < 0 {
		northing += FalseNorthingSouth
	}
	return model.UTMCoordinate{
		Easting:  easting,
		Northing: northing,
		Zone:     zone,
		Band:     band,
	}, nil
}

// ToLatLng converts a UTM coordinate back to WGS84 degrees.
// Bands C through M are in the southern hemisphere.
func ToLatLng(c model.UTMCoordinate) (lat, lng float64, err error) {
	if c.Zone < 1 || c.Zone > zoneCount {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidZone, c.Zone)
	}
	if !validBand(c.Band) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidBand, c.Band)
	}
	if math.IsNaN(c.Easting) || math.IsNaN(c.Northing) || math.IsInf(c.Easting, 0) || math.IsInf(c.Northing, 0) {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidCoordinate, c)
	}

	northing := c.Northing
	if c.Band < 'N' {
		northing -= FalseNorthingSouth
	}
	lat, lng = wgs84.inverse(c.Easting, northing, centralMeridian(c.Zone))
	return lat, lng, nil
}

func (k krueger) forward(lat, lng, lng0 float64) (easting, northing float64) {
	phi := lat * math.Pi / 180
	dl := (lng - lng0) * math.Pi / 180

	c := 2 * math.Sqrt(k.n) / (1 + k.n)
	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - c*math.Atanh(c*sinPhi))

	xi := math.Atan2(t, math.Cos(dl))
	eta := math.Atanh(math.Sin(dl) / math.Sqrt(1+t*t))

	x, y := eta, xi
	for j := 1; j <= 3; j++ {
		a := k.alpha[j-1]
		fj := float64(2 * j)
		x += a * math.Cos(fj*xi) * math.Sinh(fj*eta)
		y += a * math.Sin(fj*xi) * math.Cosh(fj*eta)
	}
	return FalseEasting + ScaleFactor*k.a*x, ScaleFactor * k.a * y
}

func (k krueger) inverse(easting, northing, lng0 float64) (lat, lng float64) {
	xi := northing / (ScaleFactor * k.a)
	eta := (easting - FalseEasting) / (ScaleFactor * k.a)

	xp, ep := xi, eta
	for j := 1; j <= 3; j++ {
		b := k.beta[j-1]
		fj := float64(2 * j)
		xp -= b * math.Sin(fj*xi) * math.Cosh(fj*eta)
		ep -= b * math.Cos(fj*xi) * math.Sinh(fj*eta)
	}

	chi := math.Asin(math.Sin(xp) / math.Cosh(ep))
	phi := chi
	for j := 1; j <= 3; j++ {
		phi += k.delta[j-1] * math.Sin(float64(2*j)*chi)
	}
	dl := math.Atan2(math.Sinh(ep), math.Cos(xp))

	return phi * 180 / math.Pi, lng0 + dl*180/math.Pi
}

func centralMeridian(zone int) float64 {
	return float64(zone-1)*zoneWidth - 180 + zoneWidth/2
}

// checkLatitude rejects values that are not latitudes at all; valid
// latitudes beyond the band table fail later with ErrNoBand.
func checkLatitude(lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: %.6f", ErrLatitudeOutOfRange, lat)
	}
	return nil
}

func checkLongitude(lng float64) error {
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: %.6f", ErrLongitudeOutOfRange, lng)
	}
	return nil
}

func validBand(b byte) bool {
	for i := 0; i < len(bandLetters); i++ {
		if bandLetters[i] == b {
			return true
		}
	}
	return false
}
