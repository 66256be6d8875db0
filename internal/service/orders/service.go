package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Service owns the order lifecycle.
type Service struct {
	store            Store
	quoter           Quoter
	placeholderKm    float64
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time

	completions CompletionRecorder
	onCreated   CreatedHook
	claims      *prometheus.CounterVec
}

// Option configures optional collaborators of Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCompletionRecorder records delivered orders against the courier.
func WithCompletionRecorder(r CompletionRecorder) Option {
	return func(s *Service) { s.completions = r }
}

// WithCreatedHook registers h to be told about new orders.
func WithCreatedHook(h CreatedHook) Option {
	return func(s *Service) { s.onCreated = h }
}

// WithClaimsCounter counts claim attempts by result label.
func WithClaimsCounter(c *prometheus.CounterVec) Option {
	return func(s *Service) { s.claims = c }
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// NewService creates an order Service. placeholderKm prices orders that
// arrive without a route distance estimate.
func NewService(store Store, quoter Quoter, placeholderKm float64, timeout time.Duration, logger logx.Logger, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	s := &Service{
		store:            store,
		quoter:           quoter,
		placeholderKm:    placeholderKm,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in and stores a pending, unassigned order.
func (s *Service) Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	if err := validateNewOrder(&in); err != nil {
		return nil, err
	}

	distance := s.placeholderKm
	if in.RouteDistanceKm != nil {
		distance = *in.RouteDistanceKm
	}
	price, err := s.quoter.Quote(distance)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &domain.Order{
		ClientID:        in.ClientID,
		PickupAddress:   in.PickupAddress,
		DeliveryAddress: in.DeliveryAddress,
		Pickup:          in.Pickup,
		Dropoff:         in.Dropoff,
		Description:     in.Description,
		PackageType:     in.PackageType,
		Status:          domain.OrderPending,
		Price:           price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.store.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.Int64("order_id", o.ID),
		logx.Int64("client_id", o.ClientID),
		logx.Float64("distance_km", distance),
		logx.Float64("total_price", price.TotalPrice),
	)

	if s.onCreated != nil {
		s.onCreated.OrderCreated(ctx, *o)
	}
	return o, nil
}

// Claim hands a pending order to courierID. Exactly one concurrent caller
// wins; the rest get apperr.ErrAlreadyClaimed.
func (s *Service) Claim(ctx context.Context, orderID, courierID int64) (*domain.Order, error) {
	if orderID <= 0 || courierID <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.store.Claim(ctx, orderID, courierID, s.now())
	if err != nil {
		s.countClaim("error")
		return nil, fmt.Errorf("claim order: %w", err)
	}
	if o == nil {
		_, err := s.store.Get(ctx, orderID)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			s.countClaim("not_found")
			return nil, err
		case err != nil:
			s.countClaim("error")
			return nil, fmt.Errorf("get order: %w", err)
		}
		s.countClaim("lost")
		return nil, apperr.ErrAlreadyClaimed
	}

	s.countClaim("won")
	s.logger.Info("order claimed",
		logx.String("event", "order_claimed"),
		logx.Int64("order_id", o.ID),
		logx.Int64("courier_id", courierID),
	)
	return o, nil
}

// Reject hides orderID from courierID's offers for the cooldown window.
// The order itself is not touched.
func (s *Service) Reject(ctx context.Context, orderID, courierID int64) error {
	if orderID <= 0 || courierID <= 0 {
		return apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.store.Get(ctx, orderID); err != nil {
		return fmt.Errorf("get order: %w", err)
	}

	r := domain.Rejection{OrderID: orderID, CourierID: courierID, RejectedAt: s.now()}
	if err := s.store.UpsertRejection(ctx, r); err != nil {
		return fmt.Errorf("upsert rejection: %w", err)
	}

	s.logger.Info("offer rejected",
		logx.String("event", "offer_rejected"),
		logx.Int64("order_id", orderID),
		logx.Int64("courier_id", courierID),
	)
	return nil
}

// Advance moves the order one step along the delivery chain, or to
// cancelled. Entering accepted is only possible through Claim.
func (s *Service) Advance(ctx context.Context, orderID int64, to domain.OrderStatus) (domain.AdvanceResult, error) {
	return s.advance(ctx, orderID, to, nil)
}

// AdvanceAs is Advance on behalf of by. Forward steps belong to the
// assigned courier; others get apperr.ErrForbidden.
func (s *Service) AdvanceAs(ctx context.Context, by domain.Actor, orderID int64, to domain.OrderStatus) (domain.AdvanceResult, error) {
	return s.advance(ctx, orderID, to, &by)
}

func (s *Service) advance(ctx context.Context, orderID int64, to domain.OrderStatus, by *domain.Actor) (domain.AdvanceResult, error) {
	if orderID <= 0 || !to.Valid() {
		return domain.AdvanceResult{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cur, err := s.store.Get(ctx, orderID)
	if err != nil {
		return domain.AdvanceResult{}, fmt.Errorf("get order: %w", err)
	}

	from := cur.Status
	if to == domain.OrderAccepted {
		return domain.AdvanceResult{}, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, from, to)
	}
	// The assignment only changes together with the status, so the
	// conditional write below also guards this check.
	if by != nil && !cur.CanChangeStatus(*by, to) {
		return domain.AdvanceResult{}, fmt.Errorf("%w: %s %d on order %d", apperr.ErrForbidden, by.Role, by.ID, orderID)
	}
	if !domain.CanTransition(from, to) {
		return domain.AdvanceResult{}, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, from, to)
	}

	updated, err := s.store.UpdateStatus(ctx, domain.StatusChange{
		OrderID: orderID,
		From:    from,
		To:      to,
		Stamp:   domain.StampFor(to),
		At:      s.now(),
	})
	if err != nil {
		return domain.AdvanceResult{}, fmt.Errorf("update status: %w", err)
	}
	if updated == nil {
		return domain.AdvanceResult{}, fmt.Errorf("%w: %s changed concurrently", apperr.ErrInvalidTransition, from)
	}

	s.logger.Info("order advanced",
		logx.String("event", "order_advanced"),
		logx.Int64("order_id", orderID),
		logx.String("from", string(from)),
		logx.String("to", string(to)),
	)

	if to == domain.OrderDelivered {
		s.recordCompletion(ctx, updated)
	}

	res := domain.AdvanceResult{Order: *updated}
	if next, ok := to.Next(); ok {
		res.Next = &next
	}
	return res, nil
}

// Cancel moves a non-terminal order to cancelled.
func (s *Service) Cancel(ctx context.Context, orderID int64) (*domain.Order, error) {
	res, err := s.advance(ctx, orderID, domain.OrderCancelled, nil)
	if err != nil {
		return nil, err
	}
	return &res.Order, nil
}

// CancelAs cancels on behalf of the owning client or the assigned courier.
func (s *Service) CancelAs(ctx context.Context, by domain.Actor, orderID int64) (*domain.Order, error) {
	res, err := s.advance(ctx, orderID, domain.OrderCancelled, &by)
	if err != nil {
		return nil, err
	}
	return &res.Order, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetAs returns one order if by may see it.
func (s *Service) GetAs(ctx context.Context, by domain.Actor, orderID int64) (*domain.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanView(by) {
		return nil, fmt.Errorf("%w: %s %d on order %d", apperr.ErrForbidden, by.Role, by.ID, orderID)
	}
	return o, nil
}

// ListByClient returns the client's orders, newest first.
func (s *Service) ListByClient(ctx context.Context, clientID int64) ([]domain.Order, error) {
	if clientID <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.ListByClient(ctx, clientID)
}

// ListByCourier returns the courier's orders, newest first.
func (s *Service) ListByCourier(ctx context.Context, courierID int64) ([]domain.Order, error) {
	if courierID <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.store.ListByCourier(ctx, courierID)
}

func (s *Service) recordCompletion(ctx context.Context, o *domain.Order) {
	if s.completions == nil || o.CourierID == nil {
		return
	}
	if err := s.completions.IncrementCompleted(ctx, *o.CourierID); err != nil {
		s.logger.Warn("record completed delivery",
			logx.Int64("order_id", o.ID),
			logx.Int64("courier_id", *o.CourierID),
			logx.Err(err),
		)
	}
}

func (s *Service) countClaim(result string) {
	if s.claims != nil {
		s.claims.WithLabelValues(result).Inc()
	}
}

func validateNewOrder(in *domain.NewOrder) error {
	in.PickupAddress = strings.TrimSpace(in.PickupAddress)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	in.Description = strings.TrimSpace(in.Description)
	in.PackageType = strings.TrimSpace(in.PackageType)

	switch {
	case in.ClientID <= 0:
		return fmt.Errorf("%w: client id", apperr.ErrInvalid)
	case in.PickupAddress == "" || in.DeliveryAddress == "":
		return fmt.Errorf("%w: addresses are required", apperr.ErrInvalid)
	case !in.Pickup.Valid():
		return fmt.Errorf("%w: pickup coordinates out of range", apperr.ErrInvalid)
	case !in.Dropoff.Valid():
		return fmt.Errorf("%w: delivery coordinates out of range", apperr.ErrInvalid)
	}
	return nil
}
