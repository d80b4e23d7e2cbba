package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/utils"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type RegisterInput struct {
	Name         string      `json:"name" validate:"required,max=100"`
	Email        string      `json:"email" validate:"required,email"`
	Password     string      `json:"password" validate:"required,min=6"`
	Role         models.Role `json:"role" validate:"required"`
	RestaurantID *uuid.UUID  `json:"restaurantId,omitempty"`
}

type UserUpdate struct {
	Name         *string      `json:"name,omitempty" validate:"omitempty,max=100"`
	Email        *string      `json:"email,omitempty" validate:"omitempty,email"`
	Password     *string      `json:"password,omitempty" validate:"omitempty,min=6"`
	Role         *models.Role `json:"role,omitempty"`
	RestaurantID *uuid.UUID   `json:"restaurantId,omitempty"`
}

type AuthService struct {
	users  UserRepository
	secret []byte
	ttl    time.Duration
	log    logrus.FieldLogger
	now    Clock
}

func NewAuthService(users UserRepository, secret []byte, ttl time.Duration, log logrus.FieldLogger) *AuthService {
	return &AuthService{users: users, secret: secret, ttl: ttl, log: log, now: time.Now}
}

// Login checks the credentials and issues a bearer token carrying the user
// id, role and restaurant. Unknown email and wrong password look the same.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(in.Email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	now := s.now()
	token, err := utils.GenerateAccessToken(user, s.secret, s.ttl, now)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user logged in")
	return &LoginResult{Token: token, ExpiresAt: now.Add(s.ttl), User: user}, nil
}

func checkRoleScope(role models.Role, restaurantID *uuid.UUID) error {
	if !role.IsValid() {
		return invalid("unknown role %q", role)
	}
	if role != models.RoleAdmin && (restaurantID == nil || *restaurantID == uuid.Nil) {
		return invalid("restaurantId is required for role %s", role)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkRoleScope(in.Role, in.RestaurantID); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		Password:     hash,
		Role:         in.Role,
		RestaurantID: in.RestaurantID,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: user %s already exists", models.ErrConflict, u.Email)
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context, restaurantID *uuid.UUID) ([]models.User, error) {
	return s.users.ListUsers(ctx, restaurantID)
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *AuthService) UpdateUser(ctx context.Context, id uuid.UUID, in UserUpdate) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = strings.ToLower(*in.Email)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.RestaurantID != nil {
		u.RestaurantID = in.RestaurantID
	}
	if err := checkRoleScope(u.Role, u.RestaurantID); err != nil {
		return nil, err
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
	}
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser archives the account; archived users can no longer log in.
func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.users.DeleteUser(ctx, id)
}
