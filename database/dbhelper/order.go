package dbhelper

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
)

const orderColumns = `id, restaurant_id, table_otp, customer_name, phone, items, status, total_price, revision,
	created_at, updated_at`

func scanOrder(row scanner) (*models.Order, error) {
	var (
		o     models.Order
		items []byte
	)
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableOTP, &o.CustomerName, &o.Phone, &items, &o.Status,
		&o.TotalPrice, &o.Revision, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order %s items: %w", o.ID, err)
	}
	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	items, err := jsonb(o.Items)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.RestaurantID, o.TableOTP, o.CustomerName, o.Phone, items, o.Status, o.TotalPrice, o.Revision,
		o.CreatedAt, o.UpdatedAt)
	return mapErr(err, "order")
}

func (s *Store) GetOrder(ctx context.Context, id, restaurantID uuid.UUID) (*models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE id = $1 AND restaurant_id = $2`, id, restaurantID))
	return o, mapErr(err, "order")
}

// ListOrders returns the newest orders first.
func (s *Store) ListOrders(ctx context.Context, f services.OrderFilter) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id = $1 AND ($2::text = '' OR table_otp = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		ORDER BY created_at DESC`, f.RestaurantID, f.TableOTP, sql.NullTime{Time: f.Since, Valid: !f.Since.IsZero()})
	if err != nil {
		return nil, mapErr(err, "orders")
	}
	defer rows.Close()

	out := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// SaveOrder is a compare-and-swap on the revision column.
func (s *Store) SaveOrder(ctx context.Context, o *models.Order) error {
	items, err := jsonb(o.Items)
	if err != nil {
		return err
	}
	var revision int
	err = s.db.QueryRowContext(ctx, `
		UPDATE orders
		SET customer_name = $4, phone = $5, items = $6, status = $7, total_price = $8,
		    updated_at = $9, revision = revision + 1
		WHERE id = $1 AND restaurant_id = $2 AND revision = $3
		RETURNING revision`,
		o.ID, o.RestaurantID, o.Revision, o.CustomerName, o.Phone, items, o.Status, o.TotalPrice, o.UpdatedAt).
		Scan(&revision)
	if err == nil {
		o.Revision = revision
		return nil
	}
	if err := mapErr(err, "order"); !isNotFound(err) {
		return err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND restaurant_id = $2)`,
		o.ID, o.RestaurantID).Scan(&exists); err != nil {
		return mapErr(err, "order")
	}
	if !exists {
		return fmt.Errorf("order: %w", models.ErrNotFound)
	}
	return models.ErrRevisionMismatch
}

func (s *Store) DeleteOrder(ctx context.Context, id, restaurantID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	return affected(res, err, "order")
}
