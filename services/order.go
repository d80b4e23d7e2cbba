package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
)

// maxWriteAttempts bounds the read-modify-write loop on a contended order.
const maxWriteAttempts = 3

type NewOrderItem struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"min=1"`
	FoodType *uuid.UUID      `json:"foodType,omitempty"`
	Note     string          `json:"note,omitempty" validate:"max=500"`
}

type CreateOrderInput struct {
	RestaurantID uuid.UUID        `json:"restaurantId"`
	TableOTP     string           `json:"tableOtp" validate:"required"`
	CustomerName string           `json:"customerName" validate:"max=100"`
	Phone        string           `json:"phone" validate:"max=20"`
	Items        []NewOrderItem   `json:"items" validate:"required,min=1,dive"`
	TotalPrice   *decimal.Decimal `json:"totalPrice,omitempty"`
}

type OrderService struct {
	orders OrderRepository
	tables TableRepository
	events broadcaster
	log    logrus.FieldLogger
	now    Clock
}

func NewOrderService(orders OrderRepository, tables TableRepository, pub realtime.Publisher, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		orders: orders,
		tables: tables,
		events: broadcaster{pub: pub, log: log},
		log:    log,
		now:    time.Now,
	}
}

// Create places a customer order against the table holding in.TableOTP.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := requireRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	for i, it := range in.Items {
		if it.Price.IsNegative() {
			return nil, invalid("items[%d].price must not be negative", i)
		}
	}
	if in.TotalPrice != nil && in.TotalPrice.IsNegative() {
		return nil, invalid("totalPrice must not be negative")
	}

	table, err := s.tables.GetTableByOTP(ctx, in.TableOTP, in.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("table for otp: %w", err)
	}
	now := s.now()
	if !table.OTPValid(now) {
		return nil, models.ErrOTPExpired
	}

	order := &models.Order{
		ID:           uuid.New(),
		RestaurantID: in.RestaurantID,
		TableOTP:     in.TableOTP,
		CustomerName: in.CustomerName,
		Phone:        in.Phone,
		Items:        make([]models.OrderItem, len(in.Items)),
		Revision:     1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, it := range in.Items {
		order.Items[i] = models.OrderItem{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			FoodType: it.FoodType,
			Note:     it.Note,
			Status:   models.ItemPending,
		}
	}
	order.Status = models.AggregateStatus(order.Items)
	if in.TotalPrice != nil {
		order.TotalPrice = *in.TotalPrice
	} else {
		order.TotalPrice = models.ItemsTotal(order.Items)
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.events.emit(ctx, realtime.EventNewOrder, order.RestaurantID, order)

	if !table.Occupied {
		occupied, err := s.tables.MarkTableOccupied(ctx, table.ID, table.RestaurantID)
		if err != nil {
			s.log.WithError(err).WithField("table_id", table.ID).Warn("failed to mark table occupied")
		} else {
			s.events.emit(ctx, realtime.EventTableStatusChange, occupied.RestaurantID, occupied)
		}
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	if err := requireRestaurant(f.RestaurantID); err != nil {
		return nil, err
	}
	return s.orders.ListOrders(ctx, f)
}

func (s *OrderService) Get(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.orders.GetOrder(ctx, id, restaurantID)
}

// mutate runs a read-modify-write on one order, retrying from a fresh read
// when another writer bumped the revision in between.
func (s *OrderService) mutate(ctx context.Context, restaurantID, id uuid.UUID, fn func(o *models.Order) error) (*models.Order, error) {
	var err error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		var order *models.Order
		order, err = s.orders.GetOrder(ctx, id, restaurantID)
		if err != nil {
			return nil, err
		}
		if err = fn(order); err != nil {
			return nil, err
		}
		order.UpdatedAt = s.now()
		err = s.orders.SaveOrder(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, models.ErrRevisionMismatch) {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"order_id": id, "attempt": attempt}).Debug("order revision moved, retrying")
	}
	return nil, err
}

// UpdateItemStatus sets one item's status and re-derives the order status.
// The total price is left as stored.
func (s *OrderService) UpdateItemStatus(ctx context.Context, restaurantID, id uuid.UUID, index int, status models.ItemStatus) (*models.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("unknown item status %q", status)
	}

	order, err := s.mutate(ctx, restaurantID, id, func(o *models.Order) error {
		if o.Status == models.OrderCancelled {
			return fmt.Errorf("%w: order is cancelled", models.ErrConflict)
		}
		if index < 0 || index >= len(o.Items) {
			return fmt.Errorf("item %d: %w", index, models.ErrNotFound)
		}
		o.Items[index].Status = status
		o.Status = models.AggregateStatus(o.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventOrderUpdated, order.RestaurantID, order)
	return order, nil
}

// DeleteItem removes one item and re-sums the total over the survivors.
// Removing the last item deletes the order; the result is then nil.
func (s *OrderService) DeleteItem(ctx context.Context, restaurantID, id uuid.UUID, index int) (*models.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}

	var emptied bool
	order, err := s.mutate(ctx, restaurantID, id, func(o *models.Order) error {
		if index < 0 || index >= len(o.Items) {
			return fmt.Errorf("item %d: %w", index, models.ErrNotFound)
		}
		if len(o.Items) == 1 {
			emptied = true
			return errOrderEmptied
		}
		o.Items = append(o.Items[:index:index], o.Items[index+1:]...)
		cancelled := o.Status == models.OrderCancelled
		o.Recalculate()
		if cancelled {
			o.Status = models.OrderCancelled
		}
		return nil
	})
	if emptied {
		if err := s.orders.DeleteOrder(ctx, id, restaurantID); err != nil {
			return nil, err
		}
		s.events.emit(ctx, realtime.EventOrderDeleted, restaurantID, map[string]uuid.UUID{"id": id})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventOrderUpdated, order.RestaurantID, order)
	return order, nil
}

var errOrderEmptied = errors.New("order has no items left")

// Cancel is the administrative override to the cancelled status.
func (s *OrderService) Cancel(ctx context.Context, restaurantID, id uuid.UUID) (*models.Order, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	order, err := s.mutate(ctx, restaurantID, id, func(o *models.Order) error {
		if o.Status == models.OrderCancelled {
			return fmt.Errorf("%w: order is already cancelled", models.ErrConflict)
		}
		o.Status = models.OrderCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventOrderUpdated, order.RestaurantID, order)
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := requireRestaurant(restaurantID); err != nil {
		return err
	}
	if err := s.orders.DeleteOrder(ctx, id, restaurantID); err != nil {
		return err
	}
	s.events.emit(ctx, realtime.EventOrderDeleted, restaurantID, map[string]uuid.UUID{"id": id})
	return nil
}
