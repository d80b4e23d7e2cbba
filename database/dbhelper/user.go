package dbhelper

import (
	"context"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

const userColumns = `id, name, email, password, role, restaurant_id, created_at, archived_at`

func scanUser(row scanner) (*models.User, error) {
	var (
		u   models.User
		rid uuid.NullUUID
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &rid, &u.CreatedAt, &u.ArchivedAt); err != nil {
		return nil, err
	}
	if rid.Valid {
		u.RestaurantID = &rid.UUID
	}
	return &u, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password, role, restaurant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.Password, u.Role, nullUUID(u.RestaurantID), u.CreatedAt)
	return mapErr(err, "user")
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id = $1 AND archived_at IS NULL`, id))
	return u, mapErr(err, "user")
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email))
	return u, mapErr(err, "user")
}

// ListUsers returns active users, optionally only those of one restaurant.
func (s *Store) ListUsers(ctx context.Context, restaurantID *uuid.UUID) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE archived_at IS NULL AND ($1::uuid IS NULL OR restaurant_id = $1)
		ORDER BY created_at`, nullUUID(restaurantID))
	if err != nil {
		return nil, mapErr(err, "users")
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, password = $4, role = $5, restaurant_id = $6
		WHERE id = $1 AND archived_at IS NULL`,
		u.ID, u.Name, u.Email, u.Password, u.Role, nullUUID(u.RestaurantID))
	return affected(res, err, "user")
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET archived_at = NOW()
		WHERE id = $1 AND archived_at IS NULL`, id)
	return affected(res, err, "user")
}
