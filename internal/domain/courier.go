package domain

import "time"

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point lies within latitude/longitude bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DefaultRating is the rating of a courier with no reviews yet.
const DefaultRating = 5.0

// Courier is a courier availability record as seen by matching.
type Courier struct {
	ID                  int64
	Location            Point
	Rating              float64
	CompletedDeliveries int64
	Available           bool
	UpdatedAt           time.Time
}

// LocationUpdate is a position report from the tracking channel.
// A nil Available means "keep the current flag".
type LocationUpdate struct {
	CourierID int64
	Location  Point
	Available *bool
}

// Candidate is a courier found near a point together with its distance.
type Candidate struct {
	Courier    Courier
	DistanceKm float64
}
