package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Auth        *services.AuthService
	Restaurants *services.RestaurantService
	Tables      *services.TableService
	Menu        *services.MenuService
	Orders      *services.OrderService
	Bills       *services.BillService
	Waiters     *services.WaiterService
	Reports     *services.ReportService
	Phone       *services.PhoneService
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

// scopeFields picks the restaurant out of a JSON body under either name.
type scopeFields struct {
	RestaurantID string `json:"restaurantId"`
	Restaurant   string `json:"restaurant"`
}

// decodeJSON fills dst from the body and returns the restaurant the body names, if any.
func decodeJSON(r *http.Request, dst any) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", badRequest("read body: %v", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}
	if dst != nil {
		if err := json.Unmarshal(raw, dst); err != nil {
			return "", badRequest("invalid request body: %v", err)
		}
	}
	var sf scopeFields
	_ = json.Unmarshal(raw, &sf)
	if sf.RestaurantID != "" {
		return sf.RestaurantID, nil
	}
	return sf.Restaurant, nil
}

// restaurantScope resolves the restaurant a request acts on: the query string
// first, then the body, then the caller's token. Staff bound to a restaurant
// may not act on another one.
func restaurantScope(r *http.Request, fromBody string) (uuid.UUID, error) {
	raw := r.URL.Query().Get("restaurantId")
	if raw == "" {
		raw = r.URL.Query().Get("restaurant")
	}
	if raw == "" {
		raw = fromBody
	}

	claims, _ := middlewares.GetAuthenticatedUser(r)
	if raw == "" {
		if claims != nil && claims.RestaurantID != nil {
			return *claims.RestaurantID, nil
		}
		return uuid.Nil, badRequest("restaurantId is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest("invalid restaurantId %q", raw)
	}
	if claims != nil && claims.Role != models.RoleAdmin && claims.RestaurantID != nil && *claims.RestaurantID != id {
		return uuid.Nil, fmt.Errorf("%w: not a member of restaurant %s", models.ErrForbidden, id)
	}
	return id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, badRequest("invalid %s", name)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || n < 0 {
		return 0, badRequest("invalid %s", name)
	}
	return n, nil
}

// scopedID resolves the restaurant and the {id} path variable together.
func scopedID(r *http.Request, fromBody string) (uuid.UUID, uuid.UUID, error) {
	rid, err := restaurantScope(r, fromBody)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return rid, id, nil
}
