package handlers

import (
	"fmt"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

func priceToResponse(p domain.PriceBreakdown) priceDTO {
	return priceDTO{
		BasePrice:          p.BasePrice,
		DistanceKm:         p.DistanceKm,
		PricePerKm:         p.PricePerKm,
		DeliveryFee:        p.DeliveryFee,
		TotalPrice:         p.TotalPrice,
		PlatformCommission: p.PlatformCommission,
		CourierPayout:      p.CourierPayout,
	}
}

func orderToResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		ClientID:        o.ClientID,
		CourierID:       o.CourierID,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		PickupLat:       o.Pickup.Lat,
		PickupLng:       o.Pickup.Lng,
		DropoffLat:      o.Dropoff.Lat,
		DropoffLng:      o.Dropoff.Lng,
		Description:     o.Description,
		PackageType:     o.PackageType,
		Status:          string(o.Status),
		Price:           priceToResponse(o.Price),
		CreatedAt:       o.CreatedAt,
		AcceptedAt:      o.AcceptedAt,
		PickedUpAt:      o.PickedUpAt,
		DeliveredAt:     o.DeliveredAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func ordersToResponse(list []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

// pointFrom rejects absent coordinates so an omitted field never becomes 0,0.
func pointFrom(lat, lng *float64, what string) (domain.Point, error) {
	if lat == nil || lng == nil {
		return domain.Point{}, fmt.Errorf("%w: %s coordinates are required", apperr.ErrInvalid, what)
	}
	return domain.Point{Lat: *lat, Lng: *lng}, nil
}

func (r createOrderRequest) toModel(clientID int64) (domain.NewOrder, error) {
	pickup, err := pointFrom(r.PickupLat, r.PickupLng, "pickup")
	if err != nil {
		return domain.NewOrder{}, err
	}
	dropoff, err := pointFrom(r.DropoffLat, r.DropoffLng, "dropoff")
	if err != nil {
		return domain.NewOrder{}, err
	}
	return domain.NewOrder{
		ClientID:        clientID,
		PickupAddress:   r.PickupAddress,
		DeliveryAddress: r.DeliveryAddress,
		Pickup:          pickup,
		Dropoff:         dropoff,
		Description:     r.Description,
		PackageType:     r.PackageType,
		RouteDistanceKm: r.DistanceKm,
	}, nil
}

func advanceToResponse(res domain.AdvanceResult) advanceResponse {
	out := advanceResponse{Order: orderToResponse(res.Order)}
	if res.Next != nil {
		next := string(*res.Next)
		out.NextStatus = &next
	}
	return out
}

func matchToResponse(res domain.MatchResult) findCouriersResponse {
	out := findCouriersResponse{
		Couriers: make([]candidateDTO, 0, len(res.Candidates)),
		Pricing:  priceToResponse(res.Price),
		RadiusKm: res.RadiusKm,
	}
	for _, c := range res.Candidates {
		out.Couriers = append(out.Couriers, candidateDTO{
			CourierID:           c.Courier.ID,
			Lat:                 c.Courier.Location.Lat,
			Lng:                 c.Courier.Location.Lng,
			Rating:              c.Courier.Rating,
			CompletedDeliveries: c.Courier.CompletedDeliveries,
			DistanceKm:          c.DistanceKm,
		})
	}
	return out
}

func courierToResponse(c domain.Courier) courierResponse {
	return courierResponse{
		ID:                  c.ID,
		Lat:                 c.Location.Lat,
		Lng:                 c.Location.Lng,
		Rating:              c.Rating,
		CompletedDeliveries: c.CompletedDeliveries,
		Available:           c.Available,
		UpdatedAt:           c.UpdatedAt,
	}
}
