// Package services holds the business rules of the dine-in backend: order and
// item lifecycle, table sessions, billing, menus, staff accounts and reports.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
	"github.com/ray-remotestate/dinein/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct turns validator failures into models.ErrValidation naming the fields.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(msgs, "; "))
}

func requireRestaurant(id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: restaurantId is required", models.ErrValidation)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

// broadcaster publishes best-effort: a failed publish is logged and never
// reaches the caller, whose write has already been persisted.
type broadcaster struct {
	pub realtime.Publisher
	log logrus.FieldLogger
}

func (b broadcaster) emit(ctx context.Context, name string, restaurantID uuid.UUID, data any) {
	if b.pub == nil {
		return
	}
	if err := b.pub.Publish(ctx, realtime.NewEvent(name, restaurantID, data)); err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{
			"event":         name,
			"restaurant_id": restaurantID,
		}).Warn("failed to broadcast event")
	}
}

// Clock and OTP source are swappable for tests.
type Clock func() time.Time

type OTPSource func() (string, error)

func defaultOTP() (string, error) { return utils.GenerateOTP(utils.OTPDigits) }

const maxOTPAttempts = 5

// freshOTP draws codes until one is not held by another table of the restaurant.
func freshOTP(ctx context.Context, tables TableRepository, next OTPSource, restaurantID uuid.UUID) (string, error) {
	for i := 0; i < maxOTPAttempts; i++ {
		otp, err := next()
		if err != nil {
			return "", err
		}
		_, err = tables.GetTableByOTP(ctx, otp, restaurantID)
		if errors.Is(err, models.ErrNotFound) {
			return otp, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique table otp", models.ErrConflict)
}
