package app

import (
	"context"
	"errors"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/transport/kafka"
)

type locationUpdater interface {
	UpdateLocation(ctx context.Context, u domain.LocationUpdate) (domain.Courier, error)
}

// makeLocationsKafka applies location events. Events the courier service
// rejects as invalid are never retried.
func makeLocationsKafka(svc locationUpdater) kafka.HandleFunc {
	return func(ctx context.Context, u domain.LocationUpdate) error {
		_, err := svc.UpdateLocation(ctx, u)
		if errors.Is(err, apperr.ErrInvalid) {
			return kafka.Permanent(err)
		}
		return err
	}
}
