package dbhelper

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

const waiterCallColumns = `id, restaurant_id, table_number, table_otp, reason, resolved, created_at, resolved_at`

func scanWaiterCall(row scanner) (*models.WaiterCall, error) {
	var c models.WaiterCall
	err := row.Scan(&c.ID, &c.RestaurantID, &c.TableNumber, &c.TableOTP, &c.Reason, &c.Resolved, &c.CreatedAt, &c.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateWaiterCall(ctx context.Context, c *models.WaiterCall) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waiter_calls (`+waiterCallColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.RestaurantID, c.TableNumber, c.TableOTP, c.Reason, c.Resolved, c.CreatedAt, c.ResolvedAt)
	return mapErr(err, "waiter call")
}

func (s *Store) ListWaiterCalls(ctx context.Context, restaurantID uuid.UUID, includeResolved bool) ([]models.WaiterCall, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+waiterCallColumns+` FROM waiter_calls
		WHERE restaurant_id = $1 AND ($2::boolean OR NOT resolved)
		ORDER BY created_at DESC`, restaurantID, includeResolved)
	if err != nil {
		return nil, mapErr(err, "waiter calls")
	}
	defer rows.Close()

	out := make([]models.WaiterCall, 0)
	for rows.Next() {
		c, err := scanWaiterCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) ResolveWaiterCall(ctx context.Context, id, restaurantID uuid.UUID, at time.Time) (*models.WaiterCall, error) {
	c, err := scanWaiterCall(s.db.QueryRowContext(ctx, `
		UPDATE waiter_calls SET resolved = TRUE, resolved_at = COALESCE(resolved_at, $3)
		WHERE id = $1 AND restaurant_id = $2
		RETURNING `+waiterCallColumns, id, restaurantID, at))
	return c, mapErr(err, "waiter call")
}
