//go:generate mockgen -source=offers.go -destination=offers_mocks_test.go -package=offers_test

package offers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// DefaultCooldown is how long a rejected order stays hidden from the courier.
const DefaultCooldown = time.Hour

// Source reads a point-in-time snapshot of offerable orders and rejections.
type Source interface {
	ListOfferable(ctx context.Context) ([]domain.Order, error)
	ListRejections(ctx context.Context, courierID int64) ([]domain.Rejection, error)
}

// RejectionActive reports whether a rejection made at rejectedAt still
// hides the order at now.
func RejectionActive(now, rejectedAt time.Time, window time.Duration) bool {
	return now.Sub(rejectedAt) < window
}

// Feed derives the orders a courier may claim.
type Feed struct {
	src     Source
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewFeed creates a Feed. now may be nil for the wall clock.
func NewFeed(src Source, window, timeout time.Duration, now func() time.Time) *Feed {
	if window <= 0 {
		window = DefaultCooldown
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Feed{src: src, window: window, timeout: timeout, now: now}
}

// Window returns the rejection cooldown.
func (f *Feed) Window() time.Duration { return f.window }

// OffersFor returns pending, unassigned orders the courier has not rejected
// within the cooldown window, oldest first.
func (f *Feed) OffersFor(ctx context.Context, courierID int64) ([]domain.Order, error) {
	if courierID <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	pending, err := f.src.ListOfferable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list offerable: %w", err)
	}
	rejections, err := f.src.ListRejections(ctx, courierID)
	if err != nil {
		return nil, fmt.Errorf("list rejections: %w", err)
	}

	now := f.now()
	hidden := make(map[int64]struct{}, len(rejections))
	for _, r := range rejections {
		if RejectionActive(now, r.RejectedAt, f.window) {
			hidden[r.OrderID] = struct{}{}
		}
	}

	out := make([]domain.Order, 0, len(pending))
	for _, o := range pending {
		if !o.Offerable() {
			continue
		}
		if _, ok := hidden[o.ID]; ok {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
