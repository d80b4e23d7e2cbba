package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
)

// ImageUploader stores a food picture on the image host and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type Upload struct {
	Filename string
	Body     io.Reader
}

type FoodTypeInput struct {
	RestaurantID uuid.UUID `json:"restaurantId"`
	Name         string    `json:"name" validate:"required,max=60"`
	Description  string    `json:"description" validate:"max=300"`
}

type FoodInput struct {
	RestaurantID uuid.UUID       `json:"restaurantId"`
	FoodTypeID   uuid.UUID       `json:"foodType"`
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description" validate:"max=500"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"imageUrl" validate:"omitempty,url"`
	IsVeg        bool            `json:"isVeg"`
	IsAvailable  *bool           `json:"isAvailable,omitempty"`
}

type FoodUpdate struct {
	FoodTypeID  *uuid.UUID       `json:"foodType,omitempty"`
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"imageUrl,omitempty" validate:"omitempty,url"`
	IsVeg       *bool            `json:"isVeg,omitempty"`
	IsAvailable *bool            `json:"isAvailable,omitempty"`
}

// MenuService manages food types and foods of a restaurant.
type MenuService struct {
	menu     MenuRepository
	uploader ImageUploader
	events   broadcaster
	now      Clock
}

func NewMenuService(menu MenuRepository, uploader ImageUploader, pub realtime.Publisher, log logrus.FieldLogger) *MenuService {
	return &MenuService{
		menu:     menu,
		uploader: uploader,
		events:   broadcaster{pub: pub, log: log},
		now:      time.Now,
	}
}

func (s *MenuService) CreateFoodType(ctx context.Context, in FoodTypeInput) (*models.FoodType, error) {
	if err := requireRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ft := &models.FoodType{
		ID:           uuid.New(),
		RestaurantID: in.RestaurantID,
		Name:         in.Name,
		Description:  in.Description,
		CreatedAt:    s.now(),
	}
	if err := s.menu.CreateFoodType(ctx, ft); err != nil {
		return nil, fmt.Errorf("food type %q: %w", in.Name, err)
	}
	s.events.emit(ctx, realtime.EventMenuUpdate, ft.RestaurantID, ft)
	return ft, nil
}

func (s *MenuService) ListFoodTypes(ctx context.Context, restaurantID uuid.UUID) ([]models.FoodType, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.menu.ListFoodTypes(ctx, restaurantID)
}

func (s *MenuService) UpdateFoodType(ctx context.Context, id uuid.UUID, in FoodTypeInput) (*models.FoodType, error) {
	if err := requireRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ft, err := s.menu.GetFoodType(ctx, id, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	ft.Name = in.Name
	ft.Description = in.Description
	if err := s.menu.UpdateFoodType(ctx, ft); err != nil {
		return nil, fmt.Errorf("food type %q: %w", in.Name, err)
	}
	s.events.emit(ctx, realtime.EventMenuUpdate, ft.RestaurantID, ft)
	return ft, nil
}

func (s *MenuService) DeleteFoodType(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := requireRestaurant(restaurantID); err != nil {
		return err
	}
	if err := s.menu.DeleteFoodType(ctx, id, restaurantID); err != nil {
		return err
	}
	s.events.emit(ctx, realtime.EventMenuUpdate, restaurantID, map[string]uuid.UUID{"deletedFoodType": id})
	return nil
}

func (s *MenuService) upload(ctx context.Context, img *Upload) (string, error) {
	if img == nil {
		return "", nil
	}
	if s.uploader == nil {
		return "", invalid("image uploads are not configured")
	}
	url, err := s.uploader.Upload(ctx, img.Filename, img.Body)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

func (s *MenuService) CreateFood(ctx context.Context, in FoodInput, img *Upload) (*models.Food, error) {
	if err := requireRestaurant(in.RestaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, invalid("price must not be negative")
	}
	if _, err := s.menu.GetFoodType(ctx, in.FoodTypeID, in.RestaurantID); err != nil {
		return nil, fmt.Errorf("food type: %w", err)
	}

	imageURL := in.ImageURL
	if img != nil {
		url, err := s.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	now := s.now()
	f := &models.Food{
		ID:           uuid.New(),
		RestaurantID: in.RestaurantID,
		FoodTypeID:   in.FoodTypeID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		ImageURL:     imageURL,
		IsVeg:        in.IsVeg,
		IsAvailable:  in.IsAvailable == nil || *in.IsAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.menu.CreateFood(ctx, f); err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	s.events.emit(ctx, realtime.EventMenuUpdate, f.RestaurantID, f)
	return f, nil
}

func (s *MenuService) ListFoods(ctx context.Context, f FoodFilter) ([]models.Food, error) {
	if err := requireRestaurant(f.RestaurantID); err != nil {
		return nil, err
	}
	return s.menu.ListFoods(ctx, f)
}

func (s *MenuService) GetFood(ctx context.Context, restaurantID, id uuid.UUID) (*models.Food, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.menu.GetFood(ctx, id, restaurantID)
}

func (s *MenuService) UpdateFood(ctx context.Context, restaurantID, id uuid.UUID, in FoodUpdate, img *Upload) (*models.Food, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	f, err := s.menu.GetFood(ctx, id, restaurantID)
	if err != nil {
		return nil, err
	}
	if in.FoodTypeID != nil {
		if _, err := s.menu.GetFoodType(ctx, *in.FoodTypeID, restaurantID); err != nil {
			return nil, fmt.Errorf("food type: %w", err)
		}
		f.FoodTypeID = *in.FoodTypeID
	}
	if in.Name != nil {
		f.Name = *in.Name
	}
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, invalid("price must not be negative")
		}
		f.Price = *in.Price
	}
	if in.ImageURL != nil {
		f.ImageURL = *in.ImageURL
	}
	if in.IsVeg != nil {
		f.IsVeg = *in.IsVeg
	}
	stockChanged := in.IsAvailable != nil && *in.IsAvailable != f.IsAvailable
	if in.IsAvailable != nil {
		f.IsAvailable = *in.IsAvailable
	}
	if img != nil {
		url, err := s.upload(ctx, img)
		if err != nil {
			return nil, err
		}
		f.ImageURL = url
	}
	f.UpdatedAt = s.now()

	if err := s.menu.UpdateFood(ctx, f); err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventMenuUpdate, f.RestaurantID, f)
	if stockChanged {
		s.events.emit(ctx, realtime.EventStockUpdate, f.RestaurantID, f)
	}
	return f, nil
}

// SetAvailability toggles whether a food can be ordered.
func (s *MenuService) SetAvailability(ctx context.Context, restaurantID, id uuid.UUID, available bool) (*models.Food, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	f, err := s.menu.GetFood(ctx, id, restaurantID)
	if err != nil {
		return nil, err
	}
	f.IsAvailable = available
	f.UpdatedAt = s.now()
	if err := s.menu.UpdateFood(ctx, f); err != nil {
		return nil, err
	}
	s.events.emit(ctx, realtime.EventStockUpdate, f.RestaurantID, f)
	return f, nil
}

func (s *MenuService) DeleteFood(ctx context.Context, restaurantID, id uuid.UUID) error {
	if err := requireRestaurant(restaurantID); err != nil {
		return err
	}
	if err := s.menu.DeleteFood(ctx, id, restaurantID); err != nil {
		return err
	}
	s.events.emit(ctx, realtime.EventMenuUpdate, restaurantID, map[string]uuid.UUID{"deletedFood": id})
	return nil
}
