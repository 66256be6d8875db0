package handlers

import (
	"context"

	"courier-dispatch/internal/domain"
)

type ordersUsecase interface {
	Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	GetAs(ctx context.Context, by domain.Actor, orderID int64) (*domain.Order, error)
	Claim(ctx context.Context, orderID, courierID int64) (*domain.Order, error)
	Reject(ctx context.Context, orderID, courierID int64) error
	AdvanceAs(ctx context.Context, by domain.Actor, orderID int64, to domain.OrderStatus) (domain.AdvanceResult, error)
	CancelAs(ctx context.Context, by domain.Actor, orderID int64) (*domain.Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]domain.Order, error)
	ListByCourier(ctx context.Context, courierID int64) ([]domain.Order, error)
}

type offersUsecase interface {
	OffersFor(ctx context.Context, courierID int64) ([]domain.Order, error)
}

type matchingUsecase interface {
	Match(ctx context.Context, pickup domain.Point) (domain.MatchResult, error)
	MatchWithin(ctx context.Context, pickup domain.Point, radiusKm float64) (domain.MatchResult, error)
}

type courierUsecase interface {
	UpdateLocation(ctx context.Context, u domain.LocationUpdate) (domain.Courier, error)
	SetAvailability(ctx context.Context, id int64, available bool) (*domain.Courier, error)
}
