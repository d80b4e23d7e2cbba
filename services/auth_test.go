package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
)

var testSecret = []byte("test-secret")

func TestAuth_RegisterAndLogin(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(store, testSecret, time.Hour, quietLogger())
	ctx := context.Background()
	rid := uuid.New()

	u, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "Asha@Example.com", Password: "secret1", Role: models.RoleCook, RestaurantID: &rid})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "asha@example.com" || u.Password == "secret1" {
		t.Fatalf("user = %+v", u)
	}

	res, err := svc.Login(ctx, LoginInput{Email: "asha@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	claims := &middlewares.Claims{}
	if _, err := jwt.ParseWithClaims(res.Token, claims, func(*jwt.Token) (any, error) { return testSecret, nil }); err != nil {
		t.Fatal(err)
	}
	if claims.UserID != u.ID || claims.Role != models.RoleCook || claims.RestaurantID == nil || *claims.RestaurantID != rid {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestAuth_LoginFailures(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(store, testSecret, time.Hour, quietLogger())
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.RoleAdmin}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   LoginInput
		want error
	}{
		{"wrong password", LoginInput{Email: "root@example.com", Password: "nope"}, models.ErrUnauthorized},
		{"unknown email", LoginInput{Email: "who@example.com", Password: "secret1"}, models.ErrUnauthorized},
		{"missing password", LoginInput{Email: "root@example.com"}, models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuth_RegisterRules(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(store, testSecret, time.Hour, quietLogger())
	ctx := context.Background()
	rid := uuid.New()
	if _, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1", Role: models.RoleBilling, RestaurantID: &rid}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"duplicate email", RegisterInput{Name: "B", Email: "A@example.com", Password: "secret1", Role: models.RoleBilling, RestaurantID: &rid}, models.ErrConflict},
		{"staff without restaurant", RegisterInput{Name: "C", Email: "c@example.com", Password: "secret1", Role: models.RoleCook}, models.ErrValidation},
		{"short password", RegisterInput{Name: "D", Email: "d@example.com", Password: "123", Role: models.RoleAdmin}, models.ErrValidation},
		{"unknown role", RegisterInput{Name: "E", Email: "e@example.com", Password: "secret1", Role: "chef", RestaurantID: &rid}, models.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuth_DeletedUserCannotLogin(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(store, testSecret, time.Hour, quietLogger())
	ctx := context.Background()
	u, err := svc.Register(ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "root@example.com", Password: "secret1"}); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
}
