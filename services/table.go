package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
)

type CreateTableInput struct {
	RestaurantID uuid.UUID `json:"restaurantId"`
	Number       int       `json:"tableNumber" validate:"min=1"`
	Capacity     int       `json:"capacity" validate:"min=0,max=100"`
	Location     string    `json:"location" validate:"max=100"`
}

type UpdateTableInput struct {
	Number   *int    `json:"tableNumber,omitempty" validate:"omitempty,min=1"`
	Capacity *int    `json:"capacity,omitempty" validate:"omitempty,min=0,max=100"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100"`
	Occupied *bool   `json:"isOccupied,omitempty"`
}

// TableService owns tables and their OTP sessions.
type TableService struct {
	tables TableRepository
	events broadcaster
	now    Clock
	otp    OTPSource
}

func NewTableService(tables TableRepository, pub realtime.Publisher, log logrus.FieldLogger) *TableService {
	return &TableService{
		tables: tables,
		events: broadcaster{pub: pub, log: log},
		now:    time.Now,
		otp:    defaultOTP,
	}
}

func (s *TableService) Create(ctx context.Context, in CreateTableInput) (*models.Table, error) {
	if err := requireRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	otp, err := freshOTP(ctx, s.tables, s.otp, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &models.Table{
		ID:             uuid.New(),
		RestaurantID:   in.RestaurantID,
		Number:         in.Number,
		Capacity:       in.Capacity,
		Location:       in.Location,
		OTP:            otp,
		OTPGeneratedAt: now,
		CreatedAt:      now,
	}
	if err := s.tables.CreateTable(ctx, t); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	s.events.emit(ctx, realtime.EventTableStatusChange, t.RestaurantID, t)
	return t, nil
}

func (s *TableService) List(ctx context.Context, restaurantID uuid.UUID) ([]models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.tables.ListTables(ctx, restaurantID)
}

func (s *TableService) Get(ctx context.Context, restaurantID, id uuid.UUID) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.tables.GetTable(ctx, id, restaurantID)
}

func (s *TableService) Update(ctx context.Context, restaurantID, id uuid.UUID, in UpdateTableInput) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	t, err := s.tables.GetTable(ctx, id, restaurantID)
	if err != nil {
		return nil, err
	}
	if in.Number != nil {
		t.Number = *in.Number
	}
	if in.Capacity != nil {
		t.Capacity = *in.Capacity
	}
	if in.Location != nil {
		t.Location = *in.Location
	}
	if in.Occupied != nil {
		t.Occupied = *in.Occupied
	}
	if err := s.tables.UpdateTable(ctx, t); err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventTableStatusChange, t.RestaurantID, t)
	return t, nil
}

func (s *TableService) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := requireRestaurant(restaurantID); err != nil {
		return err
	}
	return s.tables.DeleteTable(ctx, id, restaurantID)
}

// RefreshOTP issues a new code and restarts the validity window. Orders keep
// the code they were placed with.
func (s *TableService) RefreshOTP(ctx context.Context, restaurantID, id uuid.UUID) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	otp, err := freshOTP(ctx, s.tables, s.otp, restaurantID)
	if err != nil {
		return nil, err
	}
	t, err := s.tables.SetTableOTP(ctx, id, restaurantID, otp, s.now())
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventTableStatusChange, t.RestaurantID, t)
	return t, nil
}

// VerifyOTP is the customer login: the code must belong to a table of the
// restaurant and still be inside its validity window.
func (s *TableService) VerifyOTP(ctx context.Context, restaurantID uuid.UUID, otp string) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if otp == "" {
		return nil, invalid("otp is required")
	}
	t, err := s.tables.GetTableByOTP(ctx, otp, restaurantID)
	if err != nil {
		return nil, err
	}
	if !t.OTPValid(s.now()) {
		return nil, models.ErrOTPExpired
	}
	return t, nil
}

func (s *TableService) UpdatePayment(ctx context.Context, restaurantID, id uuid.UUID, initiated bool, paymentType models.PaymentType) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if !paymentType.IsValid() {
		return nil, invalid("unknown payment type %q", paymentType)
	}
	t, err := s.tables.SetTablePayment(ctx, id, restaurantID, initiated, paymentType)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventTableStatusChange, t.RestaurantID, t)
	return t, nil
}
