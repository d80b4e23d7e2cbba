package models

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("invalid request")
	ErrConflict         = errors.New("conflict")
	ErrRevisionMismatch = errors.New("order was modified concurrently")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrOTPExpired       = errors.New("table otp expired")
)
