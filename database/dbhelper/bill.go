package dbhelper

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/database"
	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
)

const billColumns = `id, restaurant_id, bill_number, table_number, table_otp, customer_name, customer_phone, items,
	subtotal, service_charge, gst, total, payment_method, cashier_name, restaurant_details, status, notes, date,
	created_at, updated_at`

func scanBill(row scanner) (*models.Bill, error) {
	var (
		b              models.Bill
		items, details []byte
	)
	err := row.Scan(&b.ID, &b.RestaurantID, &b.BillNumber, &b.TableNumber, &b.TableOTP, &b.CustomerName,
		&b.CustomerPhone, &items, &b.Subtotal, &b.ServiceCharge, &b.GST, &b.Total, &b.PaymentMethod,
		&b.CashierName, &details, &b.Status, &b.Notes, &b.Date, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("decode bill %s items: %w", b.ID, err)
	}
	if err := json.Unmarshal(details, &b.Restaurant); err != nil {
		return nil, fmt.Errorf("decode bill %s restaurant: %w", b.ID, err)
	}
	return &b, nil
}

func billDocuments(b *models.Bill) (items, details string, err error) {
	if items, err = jsonb(b.Items); err != nil {
		return "", "", err
	}
	if details, err = jsonb(b.Restaurant); err != nil {
		return "", "", err
	}
	return items, details, nil
}

func (s *Store) CreateBill(ctx context.Context, b *models.Bill) error {
	items, details, err := billDocuments(b)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bills (`+billColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		b.ID, b.RestaurantID, b.BillNumber, b.TableNumber, b.TableOTP, b.CustomerName, b.CustomerPhone, items,
		b.Subtotal, b.ServiceCharge, b.GST, b.Total, b.PaymentMethod, b.CashierName, details, b.Status, b.Notes,
		b.Date, b.CreatedAt, b.UpdatedAt)
	return mapErr(err, "bill "+b.BillNumber)
}

func (s *Store) GetBill(ctx context.Context, id, restaurantID uuid.UUID) (*models.Bill, error) {
	b, err := scanBill(s.db.QueryRowContext(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE id = $1 AND restaurant_id = $2`, id, restaurantID))
	return b, mapErr(err, "bill")
}

// ListBills returns the newest bills first. A zero limit means no limit.
func (s *Store) ListBills(ctx context.Context, f services.BillFilter) ([]models.Bill, error) {
	var limit sql.NullInt64
	if f.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(f.Limit), Valid: true}
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+billColumns+` FROM bills
		WHERE restaurant_id = $1
		  AND ($2::text = '' OR table_otp = $2)
		  AND ($3::text = '' OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4`, f.RestaurantID, f.TableOTP, f.Status, limit)
	if err != nil {
		return nil, mapErr(err, "bills")
	}
	defer rows.Close()

	out := make([]models.Bill, 0)
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBill(ctx context.Context, b *models.Bill) error {
	return updateBill(ctx, s.db, b)
}

func updateBill(ctx context.Context, q SQLExecutor, b *models.Bill) error {
	items, details, err := billDocuments(b)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE bills
		SET customer_name = $3, customer_phone = $4, items = $5, subtotal = $6, service_charge = $7, gst = $8,
		    total = $9, payment_method = $10, cashier_name = $11, restaurant_details = $12, status = $13,
		    notes = $14, updated_at = $15
		WHERE id = $1 AND restaurant_id = $2`,
		b.ID, b.RestaurantID, b.CustomerName, b.CustomerPhone, items, b.Subtotal, b.ServiceCharge, b.GST,
		b.Total, b.PaymentMethod, b.CashierName, details, b.Status, b.Notes, b.UpdatedAt)
	return affected(res, err, "bill")
}

func (s *Store) DeleteBill(ctx context.Context, id, restaurantID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	return affected(res, err, "bill")
}

// PayBill stores the paid bill and ends the table session in one transaction.
func (s *Store) PayBill(ctx context.Context, b *models.Bill, newOTP string, at time.Time) (*models.Table, error) {
	var closed *models.Table
	err := database.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := updateBill(ctx, tx, b); err != nil {
			return err
		}
		if b.TableOTP == "" {
			return nil
		}
		t, err := closeTableSession(ctx, tx, b.RestaurantID, b.TableOTP, newOTP, at)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		closed = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}
