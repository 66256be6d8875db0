//go:generate mockgen -source=contracts.go -destination=courier_mocks_test.go -package=courier_test

package courier

import (
	"context"

	"courier-dispatch/internal/domain"
)

// courierRepository stores courier availability records.
type courierRepository interface {
	Get(ctx context.Context, id int64) (*domain.Courier, error)
	ApplyLocation(ctx context.Context, u domain.LocationUpdate) (domain.Courier, error)
	SetAvailability(ctx context.Context, id int64, available bool) (bool, error)
	IncrementCompleted(ctx context.Context, id int64) error
}

// Mirror receives a copy of every changed record, e.g. a Redis GEO index.
type Mirror interface {
	Put(ctx context.Context, c domain.Courier) error
}
