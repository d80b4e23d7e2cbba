package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
)

type WaiterCallInput struct {
	RestaurantID uuid.UUID `json:"restaurantId"`
	TableOTP     string    `json:"tableOtp" validate:"required"`
	Reason       string    `json:"reason" validate:"max=200"`
}

type WaiterService struct {
	calls  WaiterCallRepository
	tables TableRepository
	events broadcaster
	now    Clock
}

func NewWaiterService(calls WaiterCallRepository, tables TableRepository, pub realtime.Publisher, log logrus.FieldLogger) *WaiterService {
	return &WaiterService{
		calls:  calls,
		tables: tables,
		events: broadcaster{pub: pub, log: log},
		now:    time.Now,
	}
}

// Call records a request for a waiter from a seated table and notifies staff.
func (s *WaiterService) Call(ctx context.Context, in WaiterCallInput) (*models.WaiterCall, error) {
	if err := requireRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	table, err := s.tables.GetTableByOTP(ctx, in.TableOTP, in.RestaurantID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("table for otp: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !table.OTPValid(now) {
		return nil, models.ErrOTPExpired
	}
	c := &models.WaiterCall{
		ID:           uuid.New(),
		RestaurantID: in.RestaurantID,
		TableNumber:  table.Number,
		TableOTP:     in.TableOTP,
		Reason:       in.Reason,
		CreatedAt:    now,
	}
	if err := s.calls.CreateWaiterCall(ctx, c); err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventCallWaiter, c.RestaurantID, c)
	return c, nil
}

func (s *WaiterService) List(ctx context.Context, restaurantID uuid.UUID, includeResolved bool) ([]models.WaiterCall, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.calls.ListWaiterCalls(ctx, restaurantID, includeResolved)
}

func (s *WaiterService) Resolve(ctx context.Context, restaurantID, id uuid.UUID) (*models.WaiterCall, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.calls.ResolveWaiterCall(ctx, id, restaurantID, s.now())
}
