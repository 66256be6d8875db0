package domain

import "time"

// PriceBreakdown is a derived quote; it is recomputed, never edited.
type PriceBreakdown struct {
	BasePrice          float64
	DistanceKm         float64
	PricePerKm         float64
	DeliveryFee        float64
	TotalPrice         float64
	PlatformCommission float64
	CourierPayout      float64
}

// Order is a pickup request moving through the delivery lifecycle.
type Order struct {
	ID              int64
	ClientID        int64
	CourierID       *int64
	PickupAddress   string
	DeliveryAddress string
	Pickup          Point
	Dropoff         Point
	Description     string
	PackageType     string
	Status          OrderStatus
	Price           PriceBreakdown
	CreatedAt       time.Time
	AcceptedAt      *time.Time
	PickedUpAt      *time.Time
	DeliveredAt     *time.Time
	UpdatedAt       time.Time
}

// Assigned reports whether a courier owns the order.
func (o *Order) Assigned() bool { return o.CourierID != nil }

// Offerable reports whether the order can still be claimed.
func (o *Order) Offerable() bool {
	return o.Status == OrderPending && o.CourierID == nil
}

func (o *Order) assignedTo(courierID int64) bool {
	return o.CourierID != nil && *o.CourierID == courierID
}

// CanView reports whether a may read the order. Couriers also see
// orders that are still on offer.
func (o *Order) CanView(a Actor) bool {
	switch a.Role {
	case ActorClient:
		return o.ClientID == a.ID
	case ActorCourier:
		return o.assignedTo(a.ID) || o.Offerable()
	}
	return false
}

// CanChangeStatus reports whether a may move the order to to.
// Only the assigned courier moves it forward; the owning client may
// also cancel.
func (o *Order) CanChangeStatus(a Actor, to OrderStatus) bool {
	if a.Role == ActorCourier && o.assignedTo(a.ID) {
		return true
	}
	return to == OrderCancelled && a.Role == ActorClient && o.ClientID == a.ID
}

// ApplyStamp sets the timestamp field named by st.
func (o *Order) ApplyStamp(st Stamp, at time.Time) {
	t := at
	switch st {
	case StampAcceptedAt:
		o.AcceptedAt = &t
	case StampPickedUpAt:
		o.PickedUpAt = &t
	case StampDeliveredAt:
		o.DeliveredAt = &t
	}
}

// ActorRole is the side a caller acts for.
type ActorRole string

// List of actor roles
const (
	ActorClient  ActorRole = "client"
	ActorCourier ActorRole = "courier"
)

// Actor is the caller a read or status change is attributed to.
type Actor struct {
	Role ActorRole
	ID   int64
}

// NewOrder carries the client's request. RouteDistanceKm is the requested
// route distance estimate; nil means "use the placeholder".
type NewOrder struct {
	ClientID        int64
	PickupAddress   string
	DeliveryAddress string
	Pickup          Point
	Dropoff         Point
	Description     string
	PackageType     string
	RouteDistanceKm *float64
}

// Rejection records that a courier declined an order.
type Rejection struct {
	OrderID    int64
	CourierID  int64
	RejectedAt time.Time
}

// StatusChange describes a conditional status write.
type StatusChange struct {
	OrderID int64
	From    OrderStatus
	To      OrderStatus
	Stamp   Stamp
	At      time.Time
}

// AdvanceResult is returned after a successful status change.
type AdvanceResult struct {
	Order Order
	Next  *OrderStatus
}

// MatchResult is a ranked candidate list plus the quote for the best one.
type MatchResult struct {
	Candidates []Candidate
	Price      PriceBreakdown
	RadiusKm   float64
}
