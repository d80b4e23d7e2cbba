package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemCompleted ItemStatus = "completed"
)

func (s ItemStatus) IsValid() bool {
	return s == ItemPending || s == ItemPreparing || s == ItemReady || s == ItemCompleted
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	FoodType *uuid.UUID      `json:"foodType,omitempty"`
	Note     string          `json:"note,omitempty"`
	Status   ItemStatus      `json:"status"`
}

// LineTotal is price × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RestaurantID uuid.UUID       `db:"restaurant_id" json:"restaurantId"`
	TableOTP     string          `db:"table_otp" json:"tableOtp"`
	CustomerName string          `db:"customer_name" json:"customerName"`
	Phone        string          `db:"phone" json:"phone"`
	Items        []OrderItem     `db:"items" json:"items"`
	Status       OrderStatus     `db:"status" json:"status"`
	TotalPrice   decimal.Decimal `db:"total_price" json:"totalPrice"`
	Revision     int             `db:"revision" json:"revision"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// AggregateStatus derives the order status from its item statuses.
// Precedence is evaluated top to bottom: all completed, any ready, any preparing, pending.
func AggregateStatus(items []OrderItem) OrderStatus {
	allCompleted := len(items) > 0
	for _, it := range items {
		if it.Status != ItemCompleted {
			allCompleted = false
			break
		}
	}
	if allCompleted {
		return OrderCompleted
	}
	if hasItemStatus(items, ItemReady) {
		return OrderReady
	}
	if hasItemStatus(items, ItemPreparing) {
		return OrderPreparing
	}
	return OrderPending
}

func hasItemStatus(items []OrderItem, s ItemStatus) bool {
	for _, it := range items {
		if it.Status == s {
			return true
		}
	}
	return false
}

// ItemsTotal sums price × quantity over items.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Recalculate refreshes the derived fields after the item list changed.
func (o *Order) Recalculate() {
	o.Status = AggregateStatus(o.Items)
	o.TotalPrice = ItemsTotal(o.Items)
}
