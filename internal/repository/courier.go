package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

const courierColumns = `id, lat, lng, rating, completed_deliveries, available, updated_at`

// CourierRepo stores courier availability records.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

func scanCourier(row pgx.Row) (domain.Courier, error) {
	var c domain.Courier
	err := row.Scan(&c.ID, &c.Location.Lat, &c.Location.Lng, &c.Rating, &c.CompletedDeliveries, &c.Available, &c.UpdatedAt)
	return c, err
}

// Get returns a courier by its ID. An unknown id wraps apperr.ErrNotFound.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx, `SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("courier %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return &c, nil
}

// ApplyLocation upserts a courier position. New couriers start available.
func (r *CourierRepo) ApplyLocation(ctx context.Context, u domain.LocationUpdate) (domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx, `
        INSERT INTO couriers (id, lat, lng, available, updated_at)
        VALUES ($1, $2, $3, COALESCE($4, TRUE), now())
        ON CONFLICT (id) DO UPDATE
        SET lat        = EXCLUDED.lat,
            lng        = EXCLUDED.lng,
            available  = COALESCE($4, couriers.available),
            updated_at = now()
        RETURNING `+courierColumns,
		u.CourierID, u.Location.Lat, u.Location.Lng, u.Available,
	))
	if err != nil {
		return domain.Courier{}, fmt.Errorf("apply location %d: %w", u.CourierID, err)
	}
	return c, nil
}

// SetAvailability flips the availability flag and reports whether the courier exists.
func (r *CourierRepo) SetAvailability(ctx context.Context, id int64, available bool) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET available = $2, updated_at = now()
        WHERE id = $1
    `, id, available)
	if err != nil {
		return false, fmt.Errorf("set availability %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// IncrementCompleted bumps the completed delivery counter.
func (r *CourierRepo) IncrementCompleted(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET completed_deliveries = completed_deliveries + 1
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("increment completed %d: %w", id, err)
	}
	return nil
}

// ListAvailable returns a point-in-time snapshot of available couriers.
func (r *CourierRepo) ListAvailable(ctx context.Context) ([]domain.Courier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+courierColumns+` FROM couriers WHERE available ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list available couriers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Courier, 0)
	for rows.Next() {
		c, err := scanCourier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
