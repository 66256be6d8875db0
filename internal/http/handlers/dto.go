package handlers

import "time"

type priceDTO struct {
	BasePrice          float64 `json:"base_price"`
	DistanceKm         float64 `json:"distance_km"`
	PricePerKm         float64 `json:"price_per_km"`
	DeliveryFee        float64 `json:"delivery_fee"`
	TotalPrice         float64 `json:"total_price"`
	PlatformCommission float64 `json:"platform_commission"`
	CourierPayout      float64 `json:"courier_payout"`
}

type orderResponse struct {
	ID              int64      `json:"id"`
	ClientID        int64      `json:"client_id"`
	CourierID       *int64     `json:"courier_id"`
	PickupAddress   string     `json:"pickup_address"`
	DeliveryAddress string     `json:"delivery_address"`
	PickupLat       float64    `json:"pickup_lat"`
	PickupLng       float64    `json:"pickup_lng"`
	DropoffLat      float64    `json:"dropoff_lat"`
	DropoffLng      float64    `json:"dropoff_lng"`
	Description     string     `json:"description,omitempty"`
	PackageType     string     `json:"package_type,omitempty"`
	Status          string     `json:"status"`
	Price           priceDTO   `json:"price"`
	CreatedAt       time.Time  `json:"created_at"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	PickedUpAt      *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type createOrderRequest struct {
	PickupAddress   string   `json:"pickup_address"`
	DeliveryAddress string   `json:"delivery_address"`
	PickupLat       *float64 `json:"pickup_lat"`
	PickupLng       *float64 `json:"pickup_lng"`
	DropoffLat      *float64 `json:"dropoff_lat"`
	DropoffLng      *float64 `json:"dropoff_lng"`
	Description     string   `json:"description"`
	PackageType     string   `json:"package_type"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type advanceResponse struct {
	Order      orderResponse `json:"order"`
	NextStatus *string       `json:"next_status"`
}

type findCouriersRequest struct {
	PickupLat *float64 `json:"pickup_lat"`
	PickupLng *float64 `json:"pickup_lng"`
	RadiusKm  *float64 `json:"radius_km,omitempty"`
}

type candidateDTO struct {
	CourierID           int64   `json:"courier_id"`
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`
	Rating              float64 `json:"rating"`
	CompletedDeliveries int64   `json:"completed_deliveries"`
	DistanceKm          float64 `json:"distance_km"`
}

type findCouriersResponse struct {
	Couriers []candidateDTO `json:"couriers"`
	Pricing  priceDTO       `json:"pricing"`
	RadiusKm float64        `json:"radius_km"`
}

type updateLocationRequest struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Available *bool    `json:"available,omitempty"`
}

type setAvailabilityRequest struct {
	Available *bool `json:"available"`
}

type courierResponse struct {
	ID                  int64     `json:"id"`
	Lat                 float64   `json:"lat"`
	Lng                 float64   `json:"lng"`
	Rating              float64   `json:"rating"`
	CompletedDeliveries int64     `json:"completed_deliveries"`
	Available           bool      `json:"available"`
	UpdatedAt           time.Time `json:"updated_at"`
}
