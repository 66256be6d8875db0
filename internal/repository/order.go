package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

const orderColumns = `id, client_id, courier_id, pickup_address, delivery_address,
    pickup_lat, pickup_lng, delivery_lat, delivery_lng, description, package_type, status,
    base_price, distance_km, price_per_km, delivery_fee, total_price, platform_commission, courier_payout,
    created_at, accepted_at, picked_up_at, delivered_at, updated_at`

// OrderRepo stores orders and courier rejections.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.ClientID, &o.CourierID, &o.PickupAddress, &o.DeliveryAddress,
		&o.Pickup.Lat, &o.Pickup.Lng, &o.Dropoff.Lat, &o.Dropoff.Lng, &o.Description, &o.PackageType, &status,
		&o.Price.BasePrice, &o.Price.DistanceKm, &o.Price.PricePerKm, &o.Price.DeliveryFee,
		&o.Price.TotalPrice, &o.Price.PlatformCommission, &o.Price.CourierPayout,
		&o.CreatedAt, &o.AcceptedAt, &o.PickedUpAt, &o.DeliveredAt, &o.UpdatedAt,
	)
	o.Status = domain.OrderStatus(status)
	return o, err
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	out := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// queryOne runs a single-row query; a missing row yields nil so that
// conditional writes can report an unmet condition.
func (r *OrderRepo) queryOne(ctx context.Context, sql string, args ...any) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Create inserts o and fills its ID.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) (int64, error) {
	err := r.db.QueryRow(ctx, `
        INSERT INTO orders (
            client_id, pickup_address, delivery_address,
            pickup_lat, pickup_lng, delivery_lat, delivery_lng, description, package_type, status,
            base_price, distance_km, price_per_km, delivery_fee, total_price, platform_commission, courier_payout,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
        RETURNING id
    `,
		o.ClientID, o.PickupAddress, o.DeliveryAddress,
		o.Pickup.Lat, o.Pickup.Lng, o.Dropoff.Lat, o.Dropoff.Lng, o.Description, o.PackageType, string(o.Status),
		o.Price.BasePrice, o.Price.DistanceKm, o.Price.PricePerKm, o.Price.DeliveryFee,
		o.Price.TotalPrice, o.Price.PlatformCommission, o.Price.CourierPayout,
		o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return o.ID, nil
}

// Get returns an order by id. An unknown id wraps apperr.ErrNotFound.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := r.queryOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if o == nil {
		return nil, fmt.Errorf("order %d: %w", id, apperr.ErrNotFound)
	}
	return o, nil
}

// Claim assigns the order in one conditional write. It returns nil when the
// order is missing, already assigned or no longer pending.
func (r *OrderRepo) Claim(ctx context.Context, orderID, courierID int64, at time.Time) (*domain.Order, error) {
	o, err := r.queryOne(ctx, `
        UPDATE orders
        SET courier_id = $2, status = 'accepted', accepted_at = $3, updated_at = $3
        WHERE id = $1 AND status = 'pending' AND courier_id IS NULL
        RETURNING `+orderColumns,
		orderID, courierID, at,
	)
	if err != nil {
		return nil, fmt.Errorf("claim order %d: %w", orderID, err)
	}
	return o, nil
}

// UpdateStatus applies ch only while the order is still in ch.From.
func (r *OrderRepo) UpdateStatus(ctx context.Context, ch domain.StatusChange) (*domain.Order, error) {
	set := `status = $3, updated_at = $4`
	switch ch.Stamp {
	case domain.StampNone:
	case domain.StampAcceptedAt, domain.StampPickedUpAt, domain.StampDeliveredAt:
		set += `, ` + string(ch.Stamp) + ` = $4`
	default:
		return nil, fmt.Errorf("unknown stamp column %q", ch.Stamp)
	}

	o, err := r.queryOne(ctx, `
        UPDATE orders
        SET `+set+`
        WHERE id = $1 AND status = $2
        RETURNING `+orderColumns,
		ch.OrderID, string(ch.From), string(ch.To), ch.At,
	)
	if err != nil {
		return nil, fmt.Errorf("update order %d status: %w", ch.OrderID, err)
	}
	return o, nil
}

// ListByClient returns a client's orders, newest first.
func (r *OrderRepo) ListByClient(ctx context.Context, clientID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+orderColumns+` FROM orders
        WHERE client_id = $1
        ORDER BY created_at DESC, id DESC
    `, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client orders: %w", err)
	}
	return scanOrders(rows)
}

// ListByCourier returns a courier's orders, newest first.
func (r *OrderRepo) ListByCourier(ctx context.Context, courierID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+orderColumns+` FROM orders
        WHERE courier_id = $1
        ORDER BY created_at DESC, id DESC
    `, courierID)
	if err != nil {
		return nil, fmt.Errorf("list courier orders: %w", err)
	}
	return scanOrders(rows)
}

// ListOfferable returns pending unassigned orders, oldest first.
func (r *OrderRepo) ListOfferable(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+orderColumns+` FROM orders
        WHERE status = 'pending' AND courier_id IS NULL
        ORDER BY created_at ASC, id ASC
    `)
	if err != nil {
		return nil, fmt.Errorf("list offerable orders: %w", err)
	}
	return scanOrders(rows)
}
