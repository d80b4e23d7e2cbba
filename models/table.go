package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPValidity is how long a table OTP authorizes customers after it was issued.
const OTPValidity = 8 * time.Hour

type PaymentType string

const (
	PaymentTypeNone PaymentType = ""
	PaymentTypeCash PaymentType = "cash"
	PaymentTypeCard PaymentType = "card"
	PaymentTypeUPI  PaymentType = "upi"
)

func (p PaymentType) IsValid() bool {
	return p == PaymentTypeNone || p == PaymentTypeCash || p == PaymentTypeCard || p == PaymentTypeUPI
}

type Table struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	RestaurantID     uuid.UUID   `db:"restaurant_id" json:"restaurantId"`
	Number           int         `db:"number" json:"tableNumber"`
	Capacity         int         `db:"capacity" json:"capacity"`
	Location         string      `db:"location" json:"location,omitempty"`
	Occupied         bool        `db:"occupied" json:"isOccupied"`
	OTP              string      `db:"otp" json:"otp"`
	OTPGeneratedAt   time.Time   `db:"otp_generated_at" json:"otpGeneratedAt"`
	PaymentInitiated bool        `db:"payment_initiated" json:"paymentInitiated"`
	PaymentType      PaymentType `db:"payment_type" json:"paymentType,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
}

// OTPValid reports whether the table OTP still authorizes access at now.
// The window is half open: exactly OTPValidity after issuance is expired.
func (t *Table) OTPValid(now time.Time) bool {
	return now.Sub(t.OTPGeneratedAt) < OTPValidity
}

// OTPExpiresAt is the first instant at which the current OTP is rejected.
func (t *Table) OTPExpiresAt() time.Time {
	return t.OTPGeneratedAt.Add(OTPValidity)
}
