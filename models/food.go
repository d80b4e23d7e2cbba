package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FoodType names are unique per restaurant.
type FoodType struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"restaurantId"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type Food struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RestaurantID uuid.UUID       `db:"restaurant_id" json:"restaurantId"`
	FoodTypeID   uuid.UUID       `db:"food_type_id" json:"foodType"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description,omitempty"`
	Price        decimal.Decimal `db:"price" json:"price"`
	ImageURL     string          `db:"image_url" json:"imageUrl,omitempty"`
	IsVeg        bool            `db:"is_veg" json:"isVeg"`
	IsAvailable  bool            `db:"is_available" json:"isAvailable"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}
