package domain

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// List of order statuses
const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderPickingUp OrderStatus = "picking_up"
	OrderInTransit OrderStatus = "in_transit"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// forward is the delivery chain; each status maps to its successor.
var forward = map[OrderStatus]OrderStatus{
	OrderPending:   OrderAccepted,
	OrderAccepted:  OrderPickingUp,
	OrderPickingUp: OrderInTransit,
	OrderInTransit: OrderDelivered,
}

var allowedOrderStatuses = [...]OrderStatus{
	OrderPending, OrderAccepted, OrderPickingUp, OrderInTransit, OrderDelivered, OrderCancelled,
}

// Valid checks if the OrderStatus is known.
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Next returns the status that follows s in the delivery chain.
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := forward[s]
	return n, ok
}

// CanTransition reports whether from -> to is a single forward step
// or a cancellation of a non-terminal order.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderCancelled {
		return from.Valid() && !from.Terminal()
	}
	n, ok := forward[from]
	return ok && n == to
}

// Stamp names the timestamp field a transition writes besides updated_at.
type Stamp string

// List of status timestamps
const (
	StampNone        Stamp = ""
	StampAcceptedAt  Stamp = "accepted_at"
	StampPickedUpAt  Stamp = "picked_up_at"
	StampDeliveredAt Stamp = "delivered_at"
)

var stamps = map[OrderStatus]Stamp{
	OrderAccepted:  StampAcceptedAt,
	OrderPickingUp: StampPickedUpAt,
	OrderDelivered: StampDeliveredAt,
}

// StampFor returns the timestamp field written when entering s.
func StampFor(s OrderStatus) Stamp {
	return stamps[s]
}
