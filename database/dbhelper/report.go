package dbhelper

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

// Totals sums paid bills and counts non-cancelled orders in [from, to).
func (s *Store) Totals(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (models.Totals, error) {
	var t models.Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(total) FROM bills
			          WHERE restaurant_id = $1 AND status = 'paid' AND date >= $2 AND date < $3), 0),
			(SELECT COUNT(*) FROM bills
			 WHERE restaurant_id = $1 AND status = 'paid' AND date >= $2 AND date < $3),
			(SELECT COUNT(*) FROM orders
			 WHERE restaurant_id = $1 AND status <> 'cancelled' AND created_at >= $2 AND created_at < $3)`,
		restaurantID, from, to).Scan(&t.Revenue, &t.Bills, &t.Orders)
	if err != nil {
		return models.Totals{}, mapErr(err, "report")
	}
	return t, nil
}
