// Package geofence validates clock-in proximity to a work site using
// great-circle distance on the WGS84 sphere.
package geofence

import (
	"errors"
	"fmt"
	"math"

	"shiftguard/internal/domain"
)

// DefaultRadiusMeters is the site radius applied when the caller does not
// configure one.
const DefaultRadiusMeters = 50.0

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// ErrInvalidCoordinate marks malformed input (|lat|>90 or |lng|>180). It is
// a caller error, never a validation verdict.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Result is the outcome of a proximity check.
type Result struct {
	Within         bool
	DistanceMeters float64
	RadiusMeters   float64
	Severity       domain.Severity
}

// Distance returns the haversine great-circle distance in meters between two
// coordinates. Poles and antimeridian-crossing pairs are handled by the
// formula itself; no special casing is needed.
func Distance(a, b domain.Coordinate) (float64, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, a.Lat, a.Lng)
	}
	if !b.Valid() {
		return 0, fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinate, b.Lat, b.Lng)
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c, nil
}

// Check compares the user position against the site radius. The boundary is
// inclusive: distance == radius passes. Failure severity scales with the
// overage: within 1.5x the radius is medium, within 3x is high, beyond that
// critical.
func Check(user, site domain.Coordinate, radiusMeters float64) (Result, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	dist, err := Distance(user, site)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		DistanceMeters: dist,
		RadiusMeters:   radiusMeters,
	}
	if dist <= radiusMeters {
		res.Within = true
		return res, nil
	}

	switch {
	case dist <= 1.5*radiusMeters:
		res.Severity = domain.SeverityMedium
	case dist <= 3*radiusMeters:
		res.Severity = domain.SeverityHigh
	default:
		res.Severity = domain.SeverityCritical
	}
	return res, nil
}
