package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
)

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP(OTPDigits)
		if err != nil {
			t.Fatal(err)
		}
		if len(otp) != OTPDigits {
			t.Fatalf("otp %q has length %d", otp, len(otp))
		}
		if strings.Trim(otp, "0123456789") != "" {
			t.Fatalf("otp %q is not numeric", otp)
		}
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "s3cret!") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatch")
	}
}

func TestGenerateAccessToken(t *testing.T) {
	secret := []byte("test-secret")
	rid := uuid.New()
	user := &models.User{ID: uuid.New(), Role: models.RoleCook, RestaurantID: &rid}
	now := time.Now()

	tok, err := GenerateAccessToken(user, secret, time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	claims := &middlewares.Claims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleCook || *claims.RestaurantID != rid {
		t.Errorf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Time.Sub(now); got < 59*time.Minute || got > time.Hour+time.Second {
		t.Errorf("expiry %s is not one hour", got)
	}
}

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("name: %w", models.ErrValidation), http.StatusBadRequest},
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{models.ErrOTPExpired, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("order: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrConflict, http.StatusConflict},
		{models.ErrRevisionMismatch, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		WriteError(w, tt.err)
		if w.Code != tt.want {
			t.Errorf("WriteError(%v) status = %d, want %d", tt.err, w.Code, tt.want)
		}
		if !strings.Contains(w.Body.String(), tt.err.Error()) {
			t.Errorf("body %q does not echo %q", w.Body.String(), tt.err.Error())
		}
	}
}
