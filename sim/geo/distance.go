// Package geo provides the great-circle distance used to derive transport
// lead times and nearest-source decisions. It has no dependencies on sim/.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the sphere radius used for all distances:
// 3443.8985 nautical miles expressed in kilometres.
const EarthRadiusKm = 1.852001 * 3443.8985

// cosineTolerance bounds how far rounding may push the spherical cosine
// outside [-1, 1] before the input is considered corrupt.
const cosineTolerance = 1.01

// DomainError reports coordinates whose spherical cosine cannot be mapped
// back onto [-1, 1]. It indicates corrupt location data.
type DomainError struct {
	Lat1, Lon1 float64
	Lat2, Lon2 float64
	Cosine     float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("great-circle distance undefined for (%g, %g) -> (%g, %g): cosine %g out of range",
		e.Lat1, e.Lon1, e.Lat2, e.Lon2, e.Cosine)
}

// GreatCircleKm returns the distance in kilometres between two points given
// in degrees. Identical points yield exactly 0.
func GreatCircleKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if lat1 == lat2 && lon1 == lon2 {
		return 0.0, nil
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := lon2*math.Pi/180 - lon1*math.Pi/180

	v := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	v, ok := clampCosine(v)
	if !ok {
		return 0, &DomainError{Lat1: lat1, Lon1: lon1, Lat2: lat2, Lon2: lon2, Cosine: v}
	}
	return EarthRadiusKm * math.Acos(v), nil
}

// clampCosine snaps values slightly outside [-1, 1] back onto the boundary.
// NaN and anything beyond the tolerance is rejected.
func clampCosine(v float64) (float64, bool) {
	switch {
	case v > 1.0 && v <= cosineTolerance:
		v = 1.0
	case v < -1.0 && v >= -cosineTolerance:
		v = -1.0
	}
	if !(v >= -1.0 && v <= 1.0) {
		return v, false
	}
	return v, true
}
