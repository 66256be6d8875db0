package repository

import (
	"context"
	"fmt"
	"time"

	"courier-dispatch/internal/apperr"
	"courier-dispatch/internal/domain"
)

// UpsertRejection records a rejection; a repeat overwrites the timestamp.
func (r *OrderRepo) UpsertRejection(ctx context.Context, rj domain.Rejection) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO order_rejections (order_id, courier_id, rejected_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (order_id, courier_id) DO UPDATE
        SET rejected_at = EXCLUDED.rejected_at
    `, rj.OrderID, rj.CourierID, rj.RejectedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("upsert rejection: %w", err)
	}
	return nil
}

// ListRejections returns every rejection a courier has made. Filtering by
// age happens in the caller.
func (r *OrderRepo) ListRejections(ctx context.Context, courierID int64) ([]domain.Rejection, error) {
	rows, err := r.db.Query(ctx, `
        SELECT order_id, courier_id, rejected_at
        FROM order_rejections
        WHERE courier_id = $1
    `, courierID)
	if err != nil {
		return nil, fmt.Errorf("list rejections: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Rejection, 0)
	for rows.Next() {
		var rj domain.Rejection
		if err := rows.Scan(&rj.OrderID, &rj.CourierID, &rj.RejectedAt); err != nil {
			return nil, err
		}
		out = append(out, rj)
	}
	return out, rows.Err()
}

// DeleteRejectionsBefore removes rejections older than cutoff.
func (r *OrderRepo) DeleteRejectionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM order_rejections WHERE rejected_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete rejections: %w", err)
	}
	return ct.RowsAffected(), nil
}
