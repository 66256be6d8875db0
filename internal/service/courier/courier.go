package courier

import (
	"context"
	"fmt"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/logx"
)

// Service keeps courier positions and availability current.
type Service struct {
	repo             courierRepository
	mirror           Mirror
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates and configures a courier Service. mirror may be nil.
func NewService(r courierRepository, mirror Mirror, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{repo: r, mirror: mirror, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Get retrieves a courier record by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	if id <= 0 {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.Get(ctx, id)
}

// UpdateLocation records a courier position. Unknown couriers are created
// as available.
func (s *Service) UpdateLocation(ctx context.Context, u domain.LocationUpdate) (domain.Courier, error) {
	if u.CourierID <= 0 {
		return domain.Courier{}, fmt.Errorf("%w: courier id", apperr.ErrInvalid)
	}
	if !u.Location.Valid() {
		return domain.Courier{}, fmt.Errorf("%w: coordinates out of range", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.repo.ApplyLocation(ctx, u)
	if err != nil {
		return domain.Courier{}, fmt.Errorf("apply location: %w", err)
	}
	s.mirrorPut(ctx, c)
	return c, nil
}

// SetAvailability toggles whether a courier takes new orders.
func (s *Service) SetAvailability(ctx context.Context, id int64, available bool) (*domain.Courier, error) {
	if id <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.repo.SetAvailability(ctx, id, available)
	if err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mirrorPut(ctx, *c)
	return c, nil
}

// IncrementCompleted counts a finished delivery for the courier and
// refreshes the mirrored record with the new total.
func (s *Service) IncrementCompleted(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.IncrementCompleted(ctx, id); err != nil {
		return fmt.Errorf("increment completed: %w", err)
	}
	if s.mirror == nil {
		return nil
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	s.mirrorPut(ctx, *c)
	return nil
}

func (s *Service) mirrorPut(ctx context.Context, c domain.Courier) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Put(ctx, c); err != nil {
		s.logger.Warn("mirror courier record",
			logx.Int64("courier_id", c.ID),
			logx.Err(err),
		)
	}
}
