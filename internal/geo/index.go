package geo

import (
	"context"

	"courier-dispatch/internal/domain"
)

// Index answers proximity queries over courier availability records.
type Index interface {
	FindNear(ctx context.Context, p domain.Point, radiusKm float64) ([]domain.Candidate, error)
}

// Source returns a point-in-time snapshot of available couriers.
type Source interface {
	ListAvailable(ctx context.Context) ([]domain.Courier, error)
}

// SnapshotIndex filters a point-in-time snapshot with the haversine formula.
type SnapshotIndex struct {
	src Source
}

// NewSnapshotIndex returns an Index reading couriers from src.
func NewSnapshotIndex(src Source) *SnapshotIndex {
	return &SnapshotIndex{src: src}
}

// FindNear returns available couriers within radiusKm of p, unordered.
func (i *SnapshotIndex) FindNear(ctx context.Context, p domain.Point, radiusKm float64) ([]domain.Candidate, error) {
	couriers, err := i.src.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return Within(couriers, p, radiusKm), nil
}

// Within keeps the available couriers whose distance to p is at most radiusKm.
func Within(couriers []domain.Courier, p domain.Point, radiusKm float64) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(couriers))
	for _, c := range couriers {
		if !c.Available {
			continue
		}
		d := DistanceKm(p, c.Location)
		if d <= radiusKm {
			out = append(out, domain.Candidate{Courier: c, DistanceKm: d})
		}
	}
	return out
}
