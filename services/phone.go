package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
)

// PhoneVerifier sends and checks one-time codes by SMS.
type PhoneVerifier interface {
	SendOTP(ctx context.Context, phone string) error
	CheckOTP(ctx context.Context, phone, code string) (bool, error)
}

var e164 = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

type PhoneService struct {
	verifier PhoneVerifier
	log      logrus.FieldLogger
}

func NewPhoneService(verifier PhoneVerifier, log logrus.FieldLogger) *PhoneService {
	return &PhoneService{verifier: verifier, log: log}
}

func (s *PhoneService) checkPhone(phone string) error {
	if s.verifier == nil {
		return fmt.Errorf("sms verification is not configured")
	}
	if !e164.MatchString(phone) {
		return invalid("phone must be in E.164 format")
	}
	return nil
}

// SendOTP asks the provider to text a code. Provider failures surface as-is.
func (s *PhoneService) SendOTP(ctx context.Context, phone string) error {
	if err := s.checkPhone(phone); err != nil {
		return err
	}
	if err := s.verifier.SendOTP(ctx, phone); err != nil {
		s.log.WithError(err).Error("failed to send verification code")
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (s *PhoneService) CheckOTP(ctx context.Context, phone, code string) (bool, error) {
	if err := s.checkPhone(phone); err != nil {
		return false, err
	}
	if code == "" {
		return false, invalid("code is required")
	}
	ok, err := s.verifier.CheckOTP(ctx, phone, code)
	if err != nil {
		s.log.WithError(err).Error("failed to check verification code")
		return false, fmt.Errorf("check otp: %w", err)
	}
	return ok, nil
}
