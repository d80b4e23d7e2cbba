package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

type Claims struct {
	UserID       uuid.UUID   `json:"uid"`
	Role         models.Role `json:"role"`
	RestaurantID *uuid.UUID  `json:"rid,omitempty"`
	jwt.RegisteredClaims
}

type ContextKey string

const (
	userContextKey ContextKey = "user"
)

// Authenticator validates bearer tokens signed with the shared secret.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

func (a *Authenticator) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := extractBearerToken(r)
		if err != nil {
			http.Error(w, "unauthorized: missing token", http.StatusUnauthorized)
			return
		}

		claims, err := a.parse(tokenStr)
		if err != nil {
			http.Error(w, "unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// OptionalAuth attaches claims when a valid token is present and lets the request through otherwise.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenStr, err := extractBearerToken(r); err == nil {
			if claims, err := a.parse(tokenStr); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SocketAuth is OptionalAuth for websocket upgrades. Browsers cannot set
// headers on those, so ?token= is read when no bearer header is present.
func (a *Authenticator) SocketAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := extractBearerToken(r)
		if err != nil {
			tokenStr = r.URL.Query().Get("token")
		}
		if tokenStr != "" {
			if claims, err := a.parse(tokenStr); err == nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

func GetAuthenticatedUser(r *http.Request) (*Claims, error) {
	claims, ok := r.Context().Value(userContextKey).(*Claims)
	if !ok {
		return nil, errors.New("no user in context")
	}
	return claims, nil
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}

func RoleBasedMiddleware(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool)
	for _, role := range allowedRoles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := GetAuthenticatedUser(r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if allowed[models.Role(strings.ToLower(string(claims.Role)))] {
				next.ServeHTTP(w, r)
				return
			}

			http.Error(w, "forbidden: insufficient role", http.StatusForbidden)
		})
	}
}
