package kafka

import (
	"errors"
	"time"

	"courier-dispatch/internal/domain"
)

var errMissingCoordinates = errors.New("lat and lng are required")

// LocationDTO is a courier location event on the locations topic.
type LocationDTO struct {
	CourierID int64    `json:"courier_id"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Available *bool    `json:"available,omitempty"`
}

// ToDomain converts the event into a location update. An event without
// both coordinates is rejected rather than placed at 0,0.
func (dto LocationDTO) ToDomain() (domain.LocationUpdate, error) {
	if dto.Lat == nil || dto.Lng == nil {
		return domain.LocationUpdate{}, errMissingCoordinates
	}
	return domain.LocationUpdate{
		CourierID: dto.CourierID,
		Location:  domain.Point{Lat: *dto.Lat, Lng: *dto.Lng},
		Available: dto.Available,
	}, nil
}

// OfferDTO is an offer notification on the offers topic.
type OfferDTO struct {
	EventID         string    `json:"event_id"`
	CourierID       int64     `json:"courier_id"`
	OrderID         int64     `json:"order_id"`
	Rank            int       `json:"rank"`
	PickupAddress   string    `json:"pickup_address"`
	DeliveryAddress string    `json:"delivery_address"`
	PickupLat       float64   `json:"pickup_lat"`
	PickupLng       float64   `json:"pickup_lng"`
	DistanceKm      float64   `json:"distance_km"`
	CourierPayout   float64   `json:"courier_payout"`
	CreatedAt       time.Time `json:"created_at"`
}

// OfferFromDomain converts an offer notice to its wire form.
func OfferFromDomain(n domain.OfferNotice) OfferDTO {
	return OfferDTO{
		EventID:         n.EventID,
		CourierID:       n.CourierID,
		OrderID:         n.OrderID,
		Rank:            n.Rank,
		PickupAddress:   n.PickupAddress,
		DeliveryAddress: n.DeliveryAddress,
		PickupLat:       n.Pickup.Lat,
		PickupLng:       n.Pickup.Lng,
		DistanceKm:      n.DistanceKm,
		CourierPayout:   n.CourierPayout,
		CreatedAt:       n.CreatedAt,
	}
}
