//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

import (
	"context"
	"time"

	"courier-dispatch/internal/domain"
)

// Store persists orders and rejections.
// Get wraps apperr.ErrNotFound when the id is unknown.
// Claim and UpdateStatus return a nil order when their condition did not hold.
type Store interface {
	Create(ctx context.Context, o *domain.Order) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	Claim(ctx context.Context, orderID, courierID int64, at time.Time) (*domain.Order, error)
	UpdateStatus(ctx context.Context, ch domain.StatusChange) (*domain.Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.Order, error)
	ListByCourier(ctx context.Context, courierID int64) ([]domain.Order, error)
	UpsertRejection(ctx context.Context, r domain.Rejection) error
}

// Quoter prices a route distance.
type Quoter interface {
	Quote(distanceKm float64) (domain.PriceBreakdown, error)
}

// CompletionRecorder bumps a courier's completed delivery count.
type CompletionRecorder interface {
	IncrementCompleted(ctx context.Context, courierID int64) error
}

// CreatedHook is told about every new order.
type CreatedHook interface {
	OrderCreated(ctx context.Context, o domain.Order)
}
