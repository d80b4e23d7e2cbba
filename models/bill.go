package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillPending   BillStatus = "pending"
	BillPaid      BillStatus = "paid"
	BillCancelled BillStatus = "cancelled"
)

func (s BillStatus) IsValid() bool {
	return s == BillPending || s == BillPaid || s == BillCancelled
}

// BillItem is a snapshot; it does not follow later edits to foods or orders.
type BillItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type RestaurantSnapshot struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTNumber string `json:"gstNumber,omitempty"`
	LogoURL   string `json:"logoUrl,omitempty"`
}

type Bill struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	RestaurantID  uuid.UUID          `db:"restaurant_id" json:"restaurantId"`
	BillNumber    string             `db:"bill_number" json:"billNumber"`
	TableNumber   int                `db:"table_number" json:"tableNumber"`
	TableOTP      string             `db:"table_otp" json:"tableOtp"`
	CustomerName  string             `db:"customer_name" json:"customerName"`
	CustomerPhone string             `db:"customer_phone" json:"customerPhone"`
	Items         []BillItem         `db:"items" json:"items"`
	Subtotal      decimal.Decimal    `db:"subtotal" json:"subtotal"`
	ServiceCharge decimal.Decimal    `db:"service_charge" json:"serviceCharge"`
	GST           decimal.Decimal    `db:"gst" json:"gst"`
	Total         decimal.Decimal    `db:"total" json:"total"`
	PaymentMethod PaymentType        `db:"payment_method" json:"paymentMethod"`
	CashierName   string             `db:"cashier_name" json:"cashierName"`
	Restaurant    RestaurantSnapshot `db:"restaurant_details" json:"restaurantDetails"`
	Status        BillStatus         `db:"status" json:"status"`
	Notes         string             `db:"notes" json:"notes,omitempty"`
	Date          time.Time          `db:"date" json:"date"`
	CreatedAt     time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updatedAt"`
}

// ApplyTotalFallback fills Total from its parts when the caller left it zero.
// It runs at creation only; edits keep whatever total they carry.
func (b *Bill) ApplyTotalFallback() {
	if b.Total.IsZero() {
		b.Total = b.Subtotal.Add(b.ServiceCharge).Add(b.GST)
	}
}

// ItemsSubtotal sums price × quantity over the bill snapshot.
func (b *Bill) ItemsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range b.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
