package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Restaurant is the tenant root. Every other entity carries its ID.
type Restaurant struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Address           string          `db:"address" json:"address"`
	Phone             string          `db:"phone" json:"phone"`
	Email             string          `db:"email" json:"email"`
	GSTNumber         string          `db:"gst_number" json:"gstNumber"`
	LogoURL           string          `db:"logo_url" json:"logoUrl"`
	ServiceChargeRate decimal.Decimal `db:"service_charge_rate" json:"serviceChargeRate"`
	GSTRate           decimal.Decimal `db:"gst_rate" json:"gstRate"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
}

// Snapshot copies the branding fields printed on a bill.
func (r *Restaurant) Snapshot() RestaurantSnapshot {
	return RestaurantSnapshot{
		Name:      r.Name,
		Address:   r.Address,
		Phone:     r.Phone,
		GSTNumber: r.GSTNumber,
		LogoURL:   r.LogoURL,
	}
}
