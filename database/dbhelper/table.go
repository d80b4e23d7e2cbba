package dbhelper

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

const tableColumns = `id, restaurant_id, number, capacity, location, occupied, otp, otp_generated_at,
	payment_initiated, payment_type, created_at`

func scanTable(row scanner) (*models.Table, error) {
	var t models.Table
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Number, &t.Capacity, &t.Location, &t.Occupied, &t.OTP,
		&t.OTPGeneratedAt, &t.PaymentInitiated, &t.PaymentType, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) CreateTable(ctx context.Context, t *models.Table) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tables (`+tableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.RestaurantID, t.Number, t.Capacity, t.Location, t.Occupied, t.OTP, t.OTPGeneratedAt,
		t.PaymentInitiated, t.PaymentType, t.CreatedAt)
	return mapErr(err, "table")
}

func (s *Store) GetTable(ctx context.Context, id, restaurantID uuid.UUID) (*models.Table, error) {
	t, err := scanTable(s.db.QueryRowContext(ctx, `
		SELECT `+tableColumns+` FROM tables
		WHERE id = $1 AND restaurant_id = $2`, id, restaurantID))
	return t, mapErr(err, "table")
}

func (s *Store) GetTableByOTP(ctx context.Context, otp string, restaurantID uuid.UUID) (*models.Table, error) {
	t, err := scanTable(s.db.QueryRowContext(ctx, `
		SELECT `+tableColumns+` FROM tables
		WHERE otp = $1 AND restaurant_id = $2`, otp, restaurantID))
	return t, mapErr(err, "table")
}

func (s *Store) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]models.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tableColumns+` FROM tables
		WHERE restaurant_id = $1
		ORDER BY number`, restaurantID)
	if err != nil {
		return nil, mapErr(err, "tables")
	}
	defer rows.Close()

	out := make([]models.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTable(ctx context.Context, t *models.Table) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tables
		SET number = $3, capacity = $4, location = $5, occupied = $6
		WHERE id = $1 AND restaurant_id = $2`,
		t.ID, t.RestaurantID, t.Number, t.Capacity, t.Location, t.Occupied)
	return affected(res, err, "table")
}

// The session writers below touch only their own columns so that concurrent
// writers never restore each other's stale values.

func (s *Store) MarkTableOccupied(ctx context.Context, id, restaurantID uuid.UUID) (*models.Table, error) {
	t, err := scanTable(s.db.QueryRowContext(ctx, `
		UPDATE tables SET occupied = TRUE
		WHERE id = $1 AND restaurant_id = $2
		RETURNING `+tableColumns, id, restaurantID))
	return t, mapErr(err, "table")
}

func (s *Store) SetTableOTP(ctx context.Context, id, restaurantID uuid.UUID, otp string, at time.Time) (*models.Table, error) {
	t, err := scanTable(s.db.QueryRowContext(ctx, `
		UPDATE tables SET otp = $3, otp_generated_at = $4
		WHERE id = $1 AND restaurant_id = $2
		RETURNING `+tableColumns, id, restaurantID, otp, at))
	return t, mapErr(err, "table")
}

func (s *Store) SetTablePayment(ctx context.Context, id, restaurantID uuid.UUID, initiated bool, paymentType models.PaymentType) (*models.Table, error) {
	t, err := scanTable(s.db.QueryRowContext(ctx, `
		UPDATE tables SET payment_initiated = $3, payment_type = $4
		WHERE id = $1 AND restaurant_id = $2
		RETURNING `+tableColumns, id, restaurantID, initiated, paymentType))
	return t, mapErr(err, "table")
}

// closeTableSession frees the table holding otp and rotates its code.
func closeTableSession(ctx context.Context, q SQLExecutor, restaurantID uuid.UUID, otp, newOTP string, at time.Time) (*models.Table, error) {
	t, err := scanTable(q.QueryRowContext(ctx, `
		UPDATE tables
		SET occupied = FALSE, payment_initiated = FALSE, payment_type = $4, otp = $3, otp_generated_at = $5
		WHERE otp = $1 AND restaurant_id = $2
		RETURNING `+tableColumns, otp, restaurantID, newOTP, models.PaymentTypeNone, at))
	return t, mapErr(err, "table")
}

func (s *Store) DeleteTable(ctx context.Context, id, restaurantID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tables WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	return affected(res, err, "table")
}
