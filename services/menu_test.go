package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
)

type fakeUploader struct {
	name string
	body string
}

func (u *fakeUploader) Upload(_ context.Context, filename string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.name, u.body = filename, string(b)
	return "https://img.example.com/" + filename, nil
}

func TestMenu_FoodTypeNamesUniquePerRestaurant(t *testing.T) {
	store := newMemStore()
	svc := NewMenuService(store, nil, &recorder{}, quietLogger())
	ctx := context.Background()
	rid := uuid.New()

	if _, err := svc.CreateFoodType(ctx, FoodTypeInput{RestaurantID: rid, Name: "Starters"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateFoodType(ctx, FoodTypeInput{RestaurantID: rid, Name: "starters"}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if _, err := svc.CreateFoodType(ctx, FoodTypeInput{RestaurantID: uuid.New(), Name: "Starters"}); err != nil {
		t.Fatalf("other restaurant: %v", err)
	}
}

func TestMenu_CreateFoodWithImage(t *testing.T) {
	store := newMemStore()
	up := &fakeUploader{}
	pub := &recorder{}
	svc := NewMenuService(store, up, pub, quietLogger())
	ctx := context.Background()
	rid := uuid.New()

	ft, err := svc.CreateFoodType(ctx, FoodTypeInput{RestaurantID: rid, Name: "Mains"})
	if err != nil {
		t.Fatal(err)
	}
	food, err := svc.CreateFood(ctx, FoodInput{RestaurantID: rid, FoodTypeID: ft.ID, Name: "Thali", Price: dec("180")},
		&Upload{Filename: "thali.jpg", Body: strings.NewReader("jpeg")})
	if err != nil {
		t.Fatal(err)
	}
	if food.ImageURL != "https://img.example.com/thali.jpg" || up.body != "jpeg" {
		t.Fatalf("food = %+v, uploaded %q", food, up.body)
	}
	if !food.IsAvailable {
		t.Fatal("foods are available by default")
	}
	if _, err := svc.CreateFood(ctx, FoodInput{RestaurantID: rid, FoodTypeID: uuid.New(), Name: "Ghost", Price: dec("1")}, nil); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown food type: err = %v", err)
	}
}

func TestMenu_UploadWithoutHost(t *testing.T) {
	store := newMemStore()
	svc := NewMenuService(store, nil, &recorder{}, quietLogger())
	ctx := context.Background()
	rid := uuid.New()
	ft, _ := svc.CreateFoodType(ctx, FoodTypeInput{RestaurantID: rid, Name: "Mains"})

	_, err := svc.CreateFood(ctx, FoodInput{RestaurantID: rid, FoodTypeID: ft.ID, Name: "Thali"},
		&Upload{Filename: "x.png", Body: strings.NewReader("x")})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestMenu_SetAvailabilityBroadcastsStock(t *testing.T) {
	store := newMemStore()
	pub := &recorder{}
	svc := NewMenuService(store, nil, pub, quietLogger())
	ctx := context.Background()
	rid := uuid.New()
	ft, _ := svc.CreateFoodType(ctx, FoodTypeInput{RestaurantID: rid, Name: "Mains"})
	food, err := svc.CreateFood(ctx, FoodInput{RestaurantID: rid, FoodTypeID: ft.ID, Name: "Thali", Price: dec("180")}, nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.SetAvailability(ctx, rid, food.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.IsAvailable {
		t.Fatal("still available")
	}
	names := pub.names()
	if names[len(names)-1] != realtime.EventStockUpdate {
		t.Fatalf("events = %v", names)
	}

	avail, _ := svc.ListFoods(ctx, FoodFilter{RestaurantID: rid, AvailableOnly: true})
	if len(avail) != 0 {
		t.Fatalf("available foods = %d", len(avail))
	}
}
