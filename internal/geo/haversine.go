package geo

import (
	"math"

	"courier-dispatch/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between a and b.
func DistanceKm(a, b domain.Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Offset returns the point distanceKm north (positive) or south of p.
// Useful for building fixtures at known distances.
func Offset(p domain.Point, northKm float64) domain.Point {
	return domain.Point{Lat: p.Lat + northKm/EarthRadiusKm*180/math.Pi, Lng: p.Lng}
}
