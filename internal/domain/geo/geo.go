// Package geo decides whether a reported coordinate falls inside the
// organization's check-in geofence.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in decimal degrees
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPoint creates a point
func NewPoint(lat, lon float64) Point {
	return Point{Latitude: lat, Longitude: lon}
}

// Valid reports whether the point is finite and inside the lat/lon ranges
func (p Point) Valid() bool {
	if !finite(p.Latitude) || !finite(p.Longitude) {
		return false
	}
	return math.Abs(p.Latitude) <= 90 && math.Abs(p.Longitude) <= 180
}

// Distance returns the great-circle distance between a and b in kilometres.
// Invalid points yield +Inf.
func Distance(a, b Point) float64 {
	if !a.Valid() || !b.Valid() {
		return math.Inf(1)
	}
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h slightly past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// IsWithinRadius reports whether p lies within radiusKm (inclusive) of any
// center. Non-finite input, a negative radius or no centers give false.
func IsWithinRadius(p Point, centers []Point, radiusKm float64) bool {
	if !p.Valid() || !finite(radiusKm) || radiusKm < 0 {
		return false
	}
	for _, c := range centers {
		if Distance(p, c) <= radiusKm {
			return true
		}
	}
	return false
}

// Nearest returns the center closest to p and its distance. ok is false when
// there is no valid center.
func Nearest(p Point, centers []Point) (center Point, distanceKm float64, ok bool) {
	distanceKm = math.Inf(1)
	for _, c := range centers {
		if d := Distance(p, c); d < distanceKm {
			center, distanceKm, ok = c, d, true
		}
	}
	return center, distanceKm, ok
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
