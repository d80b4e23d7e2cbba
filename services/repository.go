package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

// Repositories return models.ErrNotFound when a row is absent in the given
// restaurant and models.ErrConflict on unique violations.

type OrderFilter struct {
	RestaurantID uuid.UUID
	TableOTP     string
	// Since drops orders placed before it; zero keeps every order.
	Since time.Time
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id, restaurantID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	// SaveOrder persists o only if the stored revision still equals o.Revision,
	// returning models.ErrRevisionMismatch otherwise. On success o.Revision is bumped.
	SaveOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id, restaurantID uuid.UUID) error
}

type TableRepository interface {
	CreateTable(ctx context.Context, t *models.Table) error
	GetTable(ctx context.Context, id, restaurantID uuid.UUID) (*models.Table, error)
	GetTableByOTP(ctx context.Context, otp string, restaurantID uuid.UUID) (*models.Table, error)
	ListTables(ctx context.Context, restaurantID uuid.UUID) ([]models.Table, error)
	// UpdateTable writes the layout columns only: number, capacity, location, occupied.
	UpdateTable(ctx context.Context, t *models.Table) error
	MarkTableOccupied(ctx context.Context, id, restaurantID uuid.UUID) (*models.Table, error)
	SetTableOTP(ctx context.Context, id, restaurantID uuid.UUID, otp string, at time.Time) (*models.Table, error)
	SetTablePayment(ctx context.Context, id, restaurantID uuid.UUID, initiated bool, paymentType models.PaymentType) (*models.Table, error)
	DeleteTable(ctx context.Context, id, restaurantID uuid.UUID) error
}

type FoodFilter struct {
	RestaurantID  uuid.UUID
	FoodTypeID    *uuid.UUID
	AvailableOnly bool
}

type MenuRepository interface {
	CreateFoodType(ctx context.Context, ft *models.FoodType) error
	GetFoodType(ctx context.Context, id, restaurantID uuid.UUID) (*models.FoodType, error)
	ListFoodTypes(ctx context.Context, restaurantID uuid.UUID) ([]models.FoodType, error)
	UpdateFoodType(ctx context.Context, ft *models.FoodType) error
	DeleteFoodType(ctx context.Context, id, restaurantID uuid.UUID) error

	CreateFood(ctx context.Context, f *models.Food) error
	GetFood(ctx context.Context, id, restaurantID uuid.UUID) (*models.Food, error)
	ListFoods(ctx context.Context, f FoodFilter) ([]models.Food, error)
	UpdateFood(ctx context.Context, f *models.Food) error
	DeleteFood(ctx context.Context, id, restaurantID uuid.UUID) error
}

type BillFilter struct {
	RestaurantID uuid.UUID
	TableOTP     string
	Status       models.BillStatus
	Limit        int
}

type BillRepository interface {
	CreateBill(ctx context.Context, b *models.Bill) error
	GetBill(ctx context.Context, id, restaurantID uuid.UUID) (*models.Bill, error)
	ListBills(ctx context.Context, f BillFilter) ([]models.Bill, error)
	UpdateBill(ctx context.Context, b *models.Bill) error
	DeleteBill(ctx context.Context, id, restaurantID uuid.UUID) error
	// PayBill stores b and, in the same transaction, closes the session of the
	// table currently holding b.TableOTP by rotating its OTP. It returns that
	// table, or nil when the OTP was already rotated.
	PayBill(ctx context.Context, b *models.Bill, newOTP string, at time.Time) (*models.Table, error)
}

type RestaurantRepository interface {
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	GetRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, r *models.Restaurant) error
	DeleteRestaurant(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, restaurantID *uuid.UUID) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type WaiterCallRepository interface {
	CreateWaiterCall(ctx context.Context, c *models.WaiterCall) error
	ListWaiterCalls(ctx context.Context, restaurantID uuid.UUID, includeResolved bool) ([]models.WaiterCall, error)
	ResolveWaiterCall(ctx context.Context, id, restaurantID uuid.UUID, at time.Time) (*models.WaiterCall, error)
}

type ReportRepository interface {
	Totals(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) (models.Totals, error)
}
