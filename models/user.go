package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCook     Role = "cook"
	RoleBilling  Role = "billing"
	RoleCustomer Role = "customer"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCook || r == RoleBilling || r == RoleCustomer
}

// StaffRoles are the roles allowed behind the staff console.
var StaffRoles = []Role{RoleAdmin, RoleCook, RoleBilling}

type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Password     string     `db:"password" json:"-"`
	Role         Role       `db:"role" json:"role"`
	RestaurantID *uuid.UUID `db:"restaurant_id" json:"restaurantId,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	ArchivedAt   *time.Time `db:"archived_at" json:"archivedAt,omitempty"`
}
