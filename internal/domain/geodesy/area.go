package geodesy

import (
	"math"
	"sort"

	"github.com/okian/camtrap/internal/domain/model"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometres between two
// locations using the spherical law of cosines.
func Distance(a, b model.Location) float64 {
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0
	}
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dl := (b.Longitude - a.Longitude) * math.Pi / 180

	c := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dl)
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * earthRadiusKm
}

type point struct{ x, y float64 }

// TrapArea returns the area in square kilometres of the convex polygon
// enclosing the given locations. All points are projected into the zone of
// the mean longitude. Fewer than three distinct points enclose no area.
func TrapArea(locations []model.Location) (float64, error) {
	if len(locations) < 3 {
		return 0, nil
	}

	meanLng := 0.0
	for _, l := range locations {
		if err := checkLongitude(l.Longitude); err != nil {
			return 0, err
		}
		meanLng += l.Longitude
	}
	zone := Zone(meanLng / float64(len(locations)))

	seen := make(map[point]struct{}, len(locations))
	pts := make([]point, 0, len(locations))
	for _, l := range locations {
		c, err := ToUTMInZone(l.Latitude, l.Longitude, zone)
		if err != nil {
			return 0, err
		}
		p := point{x: c.Easting, y: c.Northing}
		if l.Latitude < 0 {
			p.y -= FalseNorthingSouth
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pts = append(pts, p)
	}
	if len(pts) < 3 {
		return 0, nil
	}

	hull := convexHull(pts)
	sum := 0.0
	for i := range hull {
		j := (i + 1) % len(hull)
		sum += hull[i].x*hull[j].y - hull[j].x*hull[i].y
	}
	return math.Abs(sum) / 2 / 1e6, nil
}

// convexHull uses Andrew's monotone chain and returns the hull counter-clockwise.
func convexHull(pts []point) []point {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].x != pts[j].x {
			return pts[i].x < pts[j].x
		}
		return pts[i].y < pts[j].y
	})
	cross := func(o, a, b point) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}

	hull := make([]point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
