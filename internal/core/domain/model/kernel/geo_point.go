package kernel

import (
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0088

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// GeoPoint is a WGS84 coordinate. The zero value is a valid point (0, 0) but
// addresses keep coordinates optional through a *GeoPoint.
type GeoPoint struct {
	lat float64
	lng float64
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if math.IsNaN(lat) || lat < minLatitude || lat > maxLatitude {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("latitude", lat, minLatitude, maxLatitude)
	}
	if math.IsNaN(lng) || lng < minLongitude || lng > maxLongitude {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("longitude", lng, minLongitude, maxLongitude)
	}
	return GeoPoint{lat: lat, lng: lng}, nil
}

// Lat returns the latitude in degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// DistanceTo returns the haversine great-circle distance in kilometres.
func (p GeoPoint) DistanceTo(other GeoPoint) float64 {
	const degToRad = math.Pi / 180
	dLat := (other.lat - p.lat) * degToRad
	dLng := (other.lng - p.lng) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(p.lat*degToRad)*math.Cos(other.lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// IsEqual compares both coordinates exactly.
func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lng == other.lng
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.lat, p.lng)
}
