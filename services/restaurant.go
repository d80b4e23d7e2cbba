package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/dinein/models"
)

type RestaurantInput struct {
	Name              string          `json:"name" validate:"required,max=120"`
	Address           string          `json:"address" validate:"max=500"`
	Phone             string          `json:"phone" validate:"max=20"`
	Email             string          `json:"email" validate:"omitempty,email"`
	GSTNumber         string          `json:"gstNumber" validate:"max=20"`
	LogoURL           string          `json:"logoUrl" validate:"omitempty,url"`
	ServiceChargeRate decimal.Decimal `json:"serviceChargeRate"`
	GSTRate           decimal.Decimal `json:"gstRate"`
}

type RestaurantService struct {
	restaurants RestaurantRepository
	now         Clock
}

func NewRestaurantService(restaurants RestaurantRepository) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, now: time.Now}
}

func checkRates(in RestaurantInput) error {
	hundred := decimal.NewFromInt(100)
	for _, rate := range []decimal.Decimal{in.ServiceChargeRate, in.GSTRate} {
		if rate.IsNegative() || rate.GreaterThan(hundred) {
			return invalid("rates must be between 0 and 100")
		}
	}
	return nil
}

func (s *RestaurantService) Create(ctx context.Context, in RestaurantInput) (*models.Restaurant, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkRates(in); err != nil {
		return nil, err
	}
	r := &models.Restaurant{ID: uuid.New(), CreatedAt: s.now()}
	applyRestaurant(r, in)
	if err := s.restaurants.CreateRestaurant(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func applyRestaurant(r *models.Restaurant, in RestaurantInput) {
	r.Name = in.Name
	r.Address = in.Address
	r.Phone = in.Phone
	r.Email = in.Email
	r.GSTNumber = in.GSTNumber
	r.LogoURL = in.LogoURL
	r.ServiceChargeRate = in.ServiceChargeRate
	r.GSTRate = in.GSTRate
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.restaurants.ListRestaurants(ctx)
}

func (s *RestaurantService) Get(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	return s.restaurants.GetRestaurant(ctx, id)
}

// Update replaces every editable field of the branch.
func (s *RestaurantService) Update(ctx context.Context, id uuid.UUID, in RestaurantInput) (*models.Restaurant, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkRates(in); err != nil {
		return nil, err
	}
	r, err := s.restaurants.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	applyRestaurant(r, in)
	if err := s.restaurants.UpdateRestaurant(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RestaurantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.restaurants.DeleteRestaurant(ctx, id)
}
