package domain

import "time"

// OfferNotice tells one courier that an order is waiting to be claimed.
type OfferNotice struct {
	EventID         string
	CourierID       int64
	OrderID         int64
	Rank            int
	PickupAddress   string
	DeliveryAddress string
	Pickup          Point
	DistanceKm      float64
	CourierPayout   float64
	CreatedAt       time.Time
}
