//go:generate mockgen -source=dispatch.go -destination=dispatch_mocks_test.go -package=dispatch_test

package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Matcher ranks couriers around a pickup point.
type Matcher interface {
	Match(ctx context.Context, pickup domain.Point) (domain.MatchResult, error)
}

// Notifier surfaces an offer to one courier.
type Notifier interface {
	Notify(ctx context.Context, n domain.OfferNotice) error
}

// Dispatcher offers each new order to the couriers ranked around its
// pickup point. It runs in the background and never fails the caller.
type Dispatcher struct {
	matcher  Matcher
	notifier Notifier
	timeout  time.Duration
	logger   logx.Logger
	newID    func() string
	now      func() time.Time

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. timeout bounds one dispatch run.
func NewDispatcher(m Matcher, n Notifier, timeout time.Duration, logger logx.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Dispatcher{
		matcher:  m,
		notifier: n,
		timeout:  timeout,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OrderCreated starts a dispatch run for o and returns immediately.
func (d *Dispatcher) OrderCreated(ctx context.Context, o domain.Order) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Dispatch(ctx, o)
	}()
}

// Wait blocks until all started dispatch runs are done.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Dispatch matches o and notifies every ranked courier. It returns the
// number of notifications delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, o domain.Order) int {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err := d.matcher.Match(ctx, o.Pickup)
	if err != nil {
		if errors.Is(err, apperr.ErrNoCourierAvailable) {
			d.logger.Info("no courier to offer",
				logx.String("event", "match_empty"),
				logx.Int64("order_id", o.ID),
			)
			return 0
		}
		d.logger.Error("dispatch match", logx.Int64("order_id", o.ID), logx.Err(err))
		return 0
	}

	sent := 0
	for i, c := range res.Candidates {
		n := domain.OfferNotice{
			EventID:         d.newID(),
			CourierID:       c.Courier.ID,
			OrderID:         o.ID,
			Rank:            i + 1,
			PickupAddress:   o.PickupAddress,
			DeliveryAddress: o.DeliveryAddress,
			Pickup:          o.Pickup,
			DistanceKm:      c.DistanceKm,
			CourierPayout:   o.Price.CourierPayout,
			CreatedAt:       d.now(),
		}
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.logger.Warn("offer notification failed",
				logx.Int64("order_id", o.ID),
				logx.Int64("courier_id", c.Courier.ID),
				logx.Err(err),
			)
			continue
		}
		sent++
	}

	d.logger.Info("order dispatched",
		logx.String("event", "order_dispatched"),
		logx.Int64("order_id", o.ID),
		logx.Int("candidates", len(res.Candidates)),
		logx.Int("notified", sent),
	)
	return sent
}
