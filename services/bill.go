package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
)

const recentBillsLimit = 10

type BillItemInput struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"min=1"`
}

type CreateBillInput struct {
	RestaurantID  uuid.UUID          `json:"restaurantId"`
	BillNumber    string             `json:"billNumber" validate:"required,max=64"`
	TableNumber   int                `json:"tableNumber" validate:"min=0"`
	TableOTP      string             `json:"tableOtp"`
	CustomerName  string             `json:"customerName" validate:"max=100"`
	CustomerPhone string             `json:"customerPhone" validate:"max=20"`
	Items         []BillItemInput    `json:"items" validate:"dive"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	ServiceCharge decimal.Decimal    `json:"serviceCharge"`
	GST           decimal.Decimal    `json:"gst"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod models.PaymentType `json:"paymentMethod"`
	CashierName   string             `json:"cashierName" validate:"max=100"`
	Notes         string             `json:"notes" validate:"max=1000"`
	Date          *time.Time         `json:"date,omitempty"`
}

type BillUpdate struct {
	CustomerName  *string             `json:"customerName,omitempty"`
	CustomerPhone *string             `json:"customerPhone,omitempty"`
	Items         *[]BillItemInput    `json:"items,omitempty" validate:"omitempty,dive"`
	Subtotal      *decimal.Decimal    `json:"subtotal,omitempty"`
	ServiceCharge *decimal.Decimal    `json:"serviceCharge,omitempty"`
	GST           *decimal.Decimal    `json:"gst,omitempty"`
	Total         *decimal.Decimal    `json:"total,omitempty"`
	PaymentMethod *models.PaymentType `json:"paymentMethod,omitempty"`
	CashierName   *string             `json:"cashierName,omitempty"`
	Status        *models.BillStatus  `json:"status,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
}

// BillService generates bills and closes table sessions once they are paid.
type BillService struct {
	bills       BillRepository
	restaurants RestaurantRepository
	tables      TableRepository
	events      broadcaster
	now         Clock
	otp         OTPSource
}

func NewBillService(bills BillRepository, restaurants RestaurantRepository, tables TableRepository, pub realtime.Publisher, log logrus.FieldLogger) *BillService {
	return &BillService{
		bills:       bills,
		restaurants: restaurants,
		tables:      tables,
		events:      broadcaster{pub: pub, log: log},
		now:         time.Now,
		otp:         defaultOTP,
	}
}

func toBillItems(in []BillItemInput) []models.BillItem {
	items := make([]models.BillItem, len(in))
	for i, it := range in {
		items[i] = models.BillItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return items
}

func checkAmounts(amounts ...decimal.Decimal) error {
	for _, a := range amounts {
		if a.IsNegative() {
			return invalid("amounts must not be negative")
		}
	}
	return nil
}

func (s *BillService) Create(ctx context.Context, in CreateBillInput) (*models.Bill, error) {
	if err := requireRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !in.PaymentMethod.IsValid() {
		return nil, invalid("unknown payment method %q", in.PaymentMethod)
	}
	if err := checkAmounts(in.Subtotal, in.ServiceCharge, in.GST, in.Total); err != nil {
		return nil, err
	}
	for _, it := range in.Items {
		if err := checkAmounts(it.Price); err != nil {
			return nil, err
		}
	}

	restaurant, err := s.restaurants.GetRestaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("restaurant: %w", err)
	}

	now := s.now()
	b := &models.Bill{
		ID:            uuid.New(),
		RestaurantID:  in.RestaurantID,
		BillNumber:    in.BillNumber,
		TableNumber:   in.TableNumber,
		TableOTP:      in.TableOTP,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Items:         toBillItems(in.Items),
		Subtotal:      in.Subtotal,
		ServiceCharge: in.ServiceCharge,
		GST:           in.GST,
		Total:         in.Total,
		PaymentMethod: in.PaymentMethod,
		CashierName:   in.CashierName,
		Restaurant:    restaurant.Snapshot(),
		Status:        models.BillPending,
		Notes:         in.Notes,
		Date:          now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Date != nil {
		b.Date = *in.Date
	}
	b.ApplyTotalFallback()

	if err := s.bills.CreateBill(ctx, b); err != nil {
		return nil, fmt.Errorf("bill %s: %w", b.BillNumber, err)
	}
	s.events.emit(ctx, realtime.EventNewBill, b.RestaurantID, b)
	return b, nil
}

func (s *BillService) List(ctx context.Context, f BillFilter) ([]models.Bill, error) {
	if err := requireRestaurant(f.RestaurantID); err != nil {
		return nil, err
	}
	return s.bills.ListBills(ctx, f)
}

func (s *BillService) Recent(ctx context.Context, restaurantID uuid.UUID) ([]models.Bill, error) {
	return s.List(ctx, BillFilter{RestaurantID: restaurantID, Limit: recentBillsLimit})
}

func (s *BillService) Get(ctx context.Context, restaurantID, id uuid.UUID) (*models.Bill, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.bills.GetBill(ctx, id, restaurantID)
}

// CheckTable returns the latest bill raised for a table OTP that was not cancelled.
func (s *BillService) CheckTable(ctx context.Context, restaurantID uuid.UUID, otp string) (*models.Bill, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if otp == "" {
		return nil, invalid("tableOtp is required")
	}
	bills, err := s.bills.ListBills(ctx, BillFilter{RestaurantID: restaurantID, TableOTP: otp})
	if err != nil {
		return nil, err
	}
	for i := range bills {
		if bills[i].Status != models.BillCancelled {
			return &bills[i], nil
		}
	}
	return nil, fmt.Errorf("bill for table otp: %w", models.ErrNotFound)
}

// Update edits a bill. The total is not recomputed from its parts.
// Moving a bill to paid closes the table session in the same transaction.
func (s *BillService) Update(ctx context.Context, restaurantID, id uuid.UUID, in BillUpdate) (*models.Bill, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	b, err := s.bills.GetBill(ctx, id, restaurantID)
	if err != nil {
		return nil, err
	}
	wasPaid := b.Status == models.BillPaid

	if in.CustomerName != nil {
		b.CustomerName = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		b.CustomerPhone = *in.CustomerPhone
	}
	if in.Items != nil {
		b.Items = toBillItems(*in.Items)
	}
	for _, p := range []struct {
		src *decimal.Decimal
		dst *decimal.Decimal
	}{
		{in.Subtotal, &b.Subtotal},
		{in.ServiceCharge, &b.ServiceCharge},
		{in.GST, &b.GST},
		{in.Total, &b.Total},
	} {
		if p.src == nil {
			continue
		}
		if err := checkAmounts(*p.src); err != nil {
			return nil, err
		}
		*p.dst = *p.src
	}
	if in.PaymentMethod != nil {
		if !in.PaymentMethod.IsValid() {
			return nil, invalid("unknown payment method %q", *in.PaymentMethod)
		}
		b.PaymentMethod = *in.PaymentMethod
	}
	if in.CashierName != nil {
		b.CashierName = *in.CashierName
	}
	if in.Notes != nil {
		b.Notes = *in.Notes
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, invalid("unknown bill status %q", *in.Status)
		}
		b.Status = *in.Status
	}
	now := s.now()
	b.UpdatedAt = now

	if b.Status == models.BillPaid && !wasPaid {
		return s.pay(ctx, b, now)
	}
	if err := s.bills.UpdateBill(ctx, b); err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventBillUpdated, b.RestaurantID, b)
	return b, nil
}

func (s *BillService) pay(ctx context.Context, b *models.Bill, now time.Time) (*models.Bill, error) {
	otp, err := freshOTP(ctx, s.tables, s.otp, b.RestaurantID)
	if err != nil {
		return nil, err
	}
	table, err := s.bills.PayBill(ctx, b, otp, now)
	if err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventBillUpdated, b.RestaurantID, b)
	s.events.emit(ctx, realtime.EventPaymentCompleted, b.RestaurantID, b)
	if table != nil {
		s.events.emit(ctx, realtime.EventTableStatusChange, table.RestaurantID, table)
	}
	return b, nil
}

func (s *BillService) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := requireRestaurant(restaurantID); err != nil {
		return err
	}
	return s.bills.DeleteBill(ctx, id, restaurantID)
}
