package dbhelper

import (
	"context"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

const restaurantColumns = `id, name, address, phone, email, gst_number, logo_url, service_charge_rate, gst_rate, created_at`

func scanRestaurant(row scanner) (*models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Address, &r.Phone, &r.Email, &r.GSTNumber, &r.LogoURL,
		&r.ServiceChargeRate, &r.GSTRate, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO restaurants (`+restaurantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.Name, r.Address, r.Phone, r.Email, r.GSTNumber, r.LogoURL, r.ServiceChargeRate, r.GSTRate, r.CreatedAt)
	return mapErr(err, "restaurant")
}

func (s *Store) GetRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	r, err := scanRestaurant(s.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	return r, mapErr(err, "restaurant")
}

func (s *Store) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY name`)
	if err != nil {
		return nil, mapErr(err, "restaurants")
	}
	defer rows.Close()

	out := make([]models.Restaurant, 0)
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE restaurants
		SET name = $2, address = $3, phone = $4, email = $5, gst_number = $6, logo_url = $7,
		    service_charge_rate = $8, gst_rate = $9
		WHERE id = $1`,
		r.ID, r.Name, r.Address, r.Phone, r.Email, r.GSTNumber, r.LogoURL, r.ServiceChargeRate, r.GSTRate)
	return affected(res, err, "restaurant")
}

func (s *Store) DeleteRestaurant(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	return affected(res, err, "restaurant")
}
