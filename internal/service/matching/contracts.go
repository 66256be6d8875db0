//go:generate mockgen -source=contracts.go -destination=matching_mocks_test.go -package=matching_test

package matching

import (
	"context"

	"courier-dispatch/internal/domain"
)

// GeoIndex finds available couriers around a point.
type GeoIndex interface {
	FindNear(ctx context.Context, p domain.Point, radiusKm float64) ([]domain.Candidate, error)
}

// Quoter prices a distance.
type Quoter interface {
	Quote(distanceKm float64) (domain.PriceBreakdown, error)
}
