package dbhelper

import (
	"context"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
)

func (s *Store) CreateFoodType(ctx context.Context, ft *models.FoodType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO food_types (id, restaurant_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		ft.ID, ft.RestaurantID, ft.Name, ft.Description, ft.CreatedAt)
	return mapErr(err, "food type")
}

func (s *Store) GetFoodType(ctx context.Context, id, restaurantID uuid.UUID) (*models.FoodType, error) {
	var ft models.FoodType
	err := s.db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, name, description, created_at FROM food_types
		WHERE id = $1 AND restaurant_id = $2`, id, restaurantID).
		Scan(&ft.ID, &ft.RestaurantID, &ft.Name, &ft.Description, &ft.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "food type")
	}
	return &ft, nil
}

func (s *Store) ListFoodTypes(ctx context.Context, restaurantID uuid.UUID) ([]models.FoodType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, restaurant_id, name, description, created_at FROM food_types
		WHERE restaurant_id = $1
		ORDER BY name`, restaurantID)
	if err != nil {
		return nil, mapErr(err, "food types")
	}
	defer rows.Close()

	out := make([]models.FoodType, 0)
	for rows.Next() {
		var ft models.FoodType
		if err := rows.Scan(&ft.ID, &ft.RestaurantID, &ft.Name, &ft.Description, &ft.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ft)
	}
	return out, rows.Err()
}

func (s *Store) UpdateFoodType(ctx context.Context, ft *models.FoodType) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE food_types SET name = $3, description = $4
		WHERE id = $1 AND restaurant_id = $2`,
		ft.ID, ft.RestaurantID, ft.Name, ft.Description)
	return affected(res, err, "food type")
}

// DeleteFoodType fails with models.ErrConflict while foods still use the type.
func (s *Store) DeleteFoodType(ctx context.Context, id, restaurantID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM food_types WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	return affected(res, err, "food type")
}

const foodColumns = `id, restaurant_id, food_type_id, name, description, price, image_url, is_veg, is_available,
	created_at, updated_at`

func scanFood(row scanner) (*models.Food, error) {
	var f models.Food
	err := row.Scan(&f.ID, &f.RestaurantID, &f.FoodTypeID, &f.Name, &f.Description, &f.Price, &f.ImageURL,
		&f.IsVeg, &f.IsAvailable, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) CreateFood(ctx context.Context, f *models.Food) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO foods (`+foodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		f.ID, f.RestaurantID, f.FoodTypeID, f.Name, f.Description, f.Price, f.ImageURL,
		f.IsVeg, f.IsAvailable, f.CreatedAt, f.UpdatedAt)
	return mapErr(err, "food")
}

func (s *Store) GetFood(ctx context.Context, id, restaurantID uuid.UUID) (*models.Food, error) {
	f, err := scanFood(s.db.QueryRowContext(ctx, `
		SELECT `+foodColumns+` FROM foods
		WHERE id = $1 AND restaurant_id = $2`, id, restaurantID))
	return f, mapErr(err, "food")
}

func (s *Store) ListFoods(ctx context.Context, filter services.FoodFilter) ([]models.Food, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+foodColumns+` FROM foods
		WHERE restaurant_id = $1
		  AND ($2::uuid IS NULL OR food_type_id = $2)
		  AND (NOT $3::boolean OR is_available)
		ORDER BY name`,
		filter.RestaurantID, nullUUID(filter.FoodTypeID), filter.AvailableOnly)
	if err != nil {
		return nil, mapErr(err, "foods")
	}
	defer rows.Close()

	out := make([]models.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (s *Store) UpdateFood(ctx context.Context, f *models.Food) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE foods
		SET food_type_id = $3, name = $4, description = $5, price = $6, image_url = $7,
		    is_veg = $8, is_available = $9, updated_at = $10
		WHERE id = $1 AND restaurant_id = $2`,
		f.ID, f.RestaurantID, f.FoodTypeID, f.Name, f.Description, f.Price, f.ImageURL,
		f.IsVeg, f.IsAvailable, f.UpdatedAt)
	return affected(res, err, "food")
}

func (s *Store) DeleteFood(ctx context.Context, id, restaurantID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM foods WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	return affected(res, err, "food")
}
