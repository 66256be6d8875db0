package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

type rejectionKey struct {
	orderID   int64
	courierID int64
}

// Store keeps orders and rejections in process memory.
// All writes happen under one mutex, so Claim is a true compare-and-set.
type Store struct {
	mu         sync.RWMutex
	seq        int64
	orders     map[int64]domain.Order
	rejections map[rejectionKey]time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		orders:     make(map[int64]domain.Order),
		rejections: make(map[rejectionKey]time.Time),
	}
}

// Create stores o and assigns its ID.
func (s *Store) Create(_ context.Context, o *domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	o.ID = s.seq
	s.orders[o.ID] = cloneOrder(*o)
	return o.ID, nil
}

// Get returns the order. An unknown id wraps apperr.ErrNotFound.
func (s *Store) Get(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
	}
	out := cloneOrder(o)
	return &out, nil
}

// Claim assigns courierID if the order is still pending and unassigned.
// It returns nil when the order is missing or no longer claimable.
func (s *Store) Claim(_ context.Context, orderID, courierID int64, at time.Time) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || !o.Offerable() {
		return nil, nil
	}
	cid := courierID
	o.CourierID = &cid
	o.Status = domain.OrderAccepted
	o.ApplyStamp(domain.StampAcceptedAt, at)
	o.UpdatedAt = at
	s.orders[orderID] = o
	out := cloneOrder(o)
	return &out, nil
}

// UpdateStatus applies ch only if the order is still in ch.From.
func (s *Store) UpdateStatus(_ context.Context, ch domain.StatusChange) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[ch.OrderID]
	if !ok || o.Status != ch.From {
		return nil, nil
	}
	o.Status = ch.To
	o.ApplyStamp(ch.Stamp, ch.At)
	o.UpdatedAt = ch.At
	s.orders[ch.OrderID] = o
	out := cloneOrder(o)
	return &out, nil
}

// ListByClient returns a client's orders, newest first.
func (s *Store) ListByClient(_ context.Context, clientID int64) ([]domain.Order, error) {
	return s.filter(func(o domain.Order) bool { return o.ClientID == clientID }, newestFirst), nil
}

// ListByCourier returns a courier's orders, newest first.
func (s *Store) ListByCourier(_ context.Context, courierID int64) ([]domain.Order, error) {
	return s.filter(func(o domain.Order) bool {
		return o.CourierID != nil && *o.CourierID == courierID
	}, newestFirst), nil
}

// ListOfferable returns pending unassigned orders, oldest first.
func (s *Store) ListOfferable(_ context.Context) ([]domain.Order, error) {
	return s.filter(func(o domain.Order) bool { return o.Offerable() }, oldestFirst), nil
}

// UpsertRejection records a rejection; repeats overwrite the timestamp.
func (s *Store) UpsertRejection(_ context.Context, r domain.Rejection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejections[rejectionKey{orderID: r.OrderID, courierID: r.CourierID}] = r.RejectedAt
	return nil
}

// ListRejections returns every rejection recorded for courierID.
func (s *Store) ListRejections(_ context.Context, courierID int64) ([]domain.Rejection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Rejection
	for k, at := range s.rejections {
		if k.courierID == courierID {
			out = append(out, domain.Rejection{OrderID: k.orderID, CourierID: k.courierID, RejectedAt: at})
		}
	}
	return out, nil
}

// DeleteRejectionsBefore removes rejections older than cutoff.
func (s *Store) DeleteRejectionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, at := range s.rejections {
		if at.Before(cutoff) {
			delete(s.rejections, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) filter(keep func(domain.Order) bool, less func(a, b domain.Order) bool) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func oldestFirst(a, b domain.Order) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func newestFirst(a, b domain.Order) bool { return oldestFirst(b, a) }

// cloneOrder copies pointer fields so callers never alias stored state.
func cloneOrder(o domain.Order) domain.Order {
	o.CourierID = clonePtr(o.CourierID)
	o.AcceptedAt = clonePtr(o.AcceptedAt)
	o.PickedUpAt = clonePtr(o.PickedUpAt)
	o.DeliveredAt = clonePtr(o.DeliveredAt)
	return o
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
