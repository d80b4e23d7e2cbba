package models

import (
	"time"

	"github.com/google/uuid"
)

type WaiterCall struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RestaurantID uuid.UUID  `db:"restaurant_id" json:"restaurantId"`
	TableNumber  int        `db:"table_number" json:"tableNumber"`
	TableOTP     string     `db:"table_otp" json:"tableOtp"`
	Reason       string     `db:"reason" json:"reason,omitempty"`
	Resolved     bool       `db:"resolved" json:"resolved"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	ResolvedAt   *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
}
