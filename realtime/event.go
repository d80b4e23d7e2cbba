// Package realtime fans out mutation events to the clients of one restaurant.
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventNewOrder          = "newOrder"
	EventOrderUpdated      = "orderUpdated"
	EventOrderDeleted      = "orderDeleted"
	EventNewBill           = "newBill"
	EventBillUpdated       = "billUpdated"
	EventPaymentCompleted  = "paymentCompleted"
	EventCallWaiter        = "callWaiter"
	EventMenuUpdate        = "menuUpdate"
	EventStockUpdate       = "stockUpdate"
	EventTableStatusChange = "tableStatusChange"
)

// staffEvents may be emitted by staff connections and are relayed to their restaurant.
var staffEvents = map[string]bool{
	EventCallWaiter:  true,
	EventMenuUpdate:  true,
	EventStockUpdate: true,
}

// customerEvents are the emits allowed on a table OTP connection.
var customerEvents = map[string]bool{
	EventCallWaiter: true,
}

type Event struct {
	Name         string    `json:"event"`
	RestaurantID uuid.UUID `json:"restaurantId"`
	Data         any       `json:"data,omitempty"`
	At           time.Time `json:"at"`
}

func NewEvent(name string, restaurantID uuid.UUID, data any) Event {
	return Event{Name: name, RestaurantID: restaurantID, Data: data, At: time.Now().UTC()}
}

// Topic is the per-restaurant channel an event travels on.
func Topic(restaurantID uuid.UUID) string {
	return "restaurant." + restaurantID.String()
}

// Publisher delivers an event at most once to the current subscribers of its restaurant.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}
