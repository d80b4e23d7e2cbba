package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/services"
)

type fakeTables struct {
	mu     sync.Mutex
	tables []models.Table
}

func (f *fakeTables) CreateTable(_ context.Context, t *models.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables = append(f.tables, *t)
	return nil
}

func (f *fakeTables) find(match func(models.Table) bool) (*models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tables {
		if match(t) {
			return &t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeTables) GetTable(_ context.Context, id, rid uuid.UUID) (*models.Table, error) {
	return f.find(func(t models.Table) bool { return t.ID == id && t.RestaurantID == rid })
}

func (f *fakeTables) GetTableByOTP(_ context.Context, otp string, rid uuid.UUID) (*models.Table, error) {
	return f.find(func(t models.Table) bool { return t.OTP == otp && t.RestaurantID == rid })
}

func (f *fakeTables) ListTables(_ context.Context, rid uuid.UUID) ([]models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Table
	for _, t := range f.tables {
		if t.RestaurantID == rid {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTables) UpdateTable(_ context.Context, t *models.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tables {
		if f.tables[i].ID == t.ID {
			f.tables[i] = *t
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeTables) set(id, rid uuid.UUID, fn func(t *models.Table)) (*models.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tables {
		if f.tables[i].ID == id && f.tables[i].RestaurantID == rid {
			fn(&f.tables[i])
			t := f.tables[i]
			return &t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeTables) MarkTableOccupied(_ context.Context, id, rid uuid.UUID) (*models.Table, error) {
	return f.set(id, rid, func(t *models.Table) { t.Occupied = true })
}

func (f *fakeTables) SetTableOTP(_ context.Context, id, rid uuid.UUID, otp string, at time.Time) (*models.Table, error) {
	return f.set(id, rid, func(t *models.Table) { t.OTP, t.OTPGeneratedAt = otp, at })
}

func (f *fakeTables) SetTablePayment(_ context.Context, id, rid uuid.UUID, initiated bool, pt models.PaymentType) (*models.Table, error) {
	return f.set(id, rid, func(t *models.Table) { t.PaymentInitiated, t.PaymentType = initiated, pt })
}

func (f *fakeTables) DeleteTable(_ context.Context, id, rid uuid.UUID) error {
	return models.ErrNotFound
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]models.Order
}

func (f *fakeOrders) CreateOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeOrders) GetOrder(_ context.Context, id, rid uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, filter services.OrderFilter) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if o.RestaurantID == filter.RestaurantID && (filter.TableOTP == "" || o.TableOTP == filter.TableOTP) &&
			!o.CreatedAt.Before(filter.Since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) SaveOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.orders[o.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Revision != o.Revision {
		return models.ErrRevisionMismatch
	}
	o.Revision++
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeOrders) DeleteOrder(_ context.Context, id, rid uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

type testEnv struct {
	h      *Handler
	router *mux.Router
	tables *fakeTables
	orders *fakeOrders
	rid    uuid.UUID
	otp    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	rid := uuid.New()
	tables := &fakeTables{tables: []models.Table{{
		ID: uuid.New(), RestaurantID: rid, Number: 2, OTP: "424242", OTPGeneratedAt: time.Now(),
	}}}
	orders := &fakeOrders{orders: map[uuid.UUID]models.Order{}}
	h := &Handler{
		Tables: services.NewTableService(tables, nil, log),
		Orders: services.NewOrderService(orders, tables, nil, log),
	}

	router := mux.NewRouter()
	router.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	router.HandleFunc("/orders", h.ListOrders).Methods("GET")
	router.HandleFunc("/orders/{id}/item/{itemIndex}", h.UpdateOrderItemStatus).Methods("PATCH")
	router.HandleFunc("/orders/{orderId}/items/{itemIndex}", h.DeleteOrderItem).Methods("DELETE")
	router.HandleFunc("/tables/verify-otp", h.VerifyTableOTP).Methods("POST")
	router.HandleFunc("/tables", h.ListTables).Methods("GET")
	return &testEnv{h: h, router: router, tables: tables, orders: orders, rid: rid, otp: "424242"}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, claims *middlewares.Claims) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if claims != nil {
		req = req.WithContext(middlewares.WithClaims(req.Context(), claims))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) createOrder(t *testing.T, items ...map[string]any) models.Order {
	t.Helper()
	w := e.do(t, http.MethodPost, "/orders", map[string]any{
		"restaurant": e.rid.String(),
		"tableOtp":   e.otp,
		"items":      items,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", w.Code, w.Body.String())
	}
	return decode[models.Order](t, w)
}

func TestCreateOrder(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t,
		map[string]any{"name": "Idli", "price": 100, "quantity": 2},
		map[string]any{"name": "Coffee", "price": "50", "quantity": 1},
	)
	if o.TotalPrice.String() != "250" || o.Status != models.OrderPending {
		t.Fatalf("order = %+v", o)
	}

	tests := []struct {
		name string
		body map[string]any
		code int
	}{
		{"unknown otp", map[string]any{"restaurantId": e.rid.String(), "tableOtp": "000000", "items": []map[string]any{{"name": "x", "price": 1, "quantity": 1}}}, http.StatusNotFound},
		{"missing restaurant", map[string]any{"tableOtp": e.otp, "items": []map[string]any{{"name": "x", "price": 1, "quantity": 1}}}, http.StatusBadRequest},
		{"bad restaurant", map[string]any{"restaurantId": "nope", "tableOtp": e.otp}, http.StatusBadRequest},
		{"no items", map[string]any{"restaurantId": e.rid.String(), "tableOtp": e.otp}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, "/orders", tt.body, nil)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.code, w.Body.String())
			}
			if msg := decode[map[string]string](t, w)["error"]; msg == "" {
				t.Fatal("missing error message")
			}
		})
	}
}

func TestListOrders_Access(t *testing.T) {
	e := newTestEnv(t)
	e.createOrder(t, map[string]any{"name": "Idli", "price": 100, "quantity": 1})
	base := "/orders?restaurantId=" + e.rid.String()

	if w := e.do(t, http.MethodGet, base, nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, base+"&tableOtp=111111", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("wrong otp: status = %d", w.Code)
	}
	w := e.do(t, http.MethodGet, base+"&tableOtp="+e.otp, nil, nil)
	if w.Code != http.StatusOK || len(decode[[]models.Order](t, w)) != 1 {
		t.Fatalf("customer: %d %s", w.Code, w.Body.String())
	}
	staff := &middlewares.Claims{UserID: uuid.New(), Role: models.RoleCook, RestaurantID: &e.rid}
	w = e.do(t, http.MethodGet, "/orders", nil, staff)
	if w.Code != http.StatusOK || len(decode[[]models.Order](t, w)) != 1 {
		t.Fatalf("staff: %d %s", w.Code, w.Body.String())
	}
}

func TestListOrders_ReissuedOTPHidesEarlierSession(t *testing.T) {
	e := newTestEnv(t)
	e.createOrder(t, map[string]any{"name": "Idli", "price": 100, "quantity": 1, "note": "for Asha"})

	// the same code comes back to the table for a new session
	e.orders.mu.Lock()
	for id, o := range e.orders.orders {
		o.CreatedAt = time.Now().Add(-2 * time.Hour)
		e.orders.orders[id] = o
	}
	e.orders.mu.Unlock()
	e.tables.tables[0].OTPGeneratedAt = time.Now().Add(-time.Minute)

	base := "/orders?restaurantId=" + e.rid.String() + "&tableOtp=" + e.otp
	w := e.do(t, http.MethodGet, base, nil, nil)
	if w.Code != http.StatusOK || len(decode[[]models.Order](t, w)) != 0 {
		t.Fatalf("customer: %d %s", w.Code, w.Body.String())
	}
	staff := &middlewares.Claims{UserID: uuid.New(), Role: models.RoleCook, RestaurantID: &e.rid}
	if w := e.do(t, http.MethodGet, base, nil, staff); len(decode[[]models.Order](t, w)) != 1 {
		t.Fatalf("staff: %s", w.Body.String())
	}
}

func TestUpdateOrderItemStatus(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t,
		map[string]any{"name": "Idli", "price": 100, "quantity": 1},
		map[string]any{"name": "Vada", "price": 60, "quantity": 1},
	)
	staff := &middlewares.Claims{UserID: uuid.New(), Role: models.RoleCook, RestaurantID: &e.rid}
	path := "/orders/" + o.ID.String() + "/item/1"

	w := e.do(t, http.MethodPatch, path, map[string]string{"status": "ready"}, staff)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	if got := decode[models.Order](t, w); got.Status != models.OrderReady {
		t.Fatalf("order status = %s", got.Status)
	}

	if w := e.do(t, http.MethodPatch, "/orders/"+o.ID.String()+"/item/9", map[string]string{"status": "ready"}, staff); w.Code != http.StatusNotFound {
		t.Fatalf("out of range: %d", w.Code)
	}
	if w := e.do(t, http.MethodPatch, path, map[string]string{"status": "served"}, staff); w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: %d", w.Code)
	}
	if w := e.do(t, http.MethodPatch, "/orders/"+uuid.NewString()+"/item/0", map[string]string{"status": "ready"}, staff); w.Code != http.StatusNotFound {
		t.Fatalf("unknown order: %d", w.Code)
	}
}

func TestDeleteOrderItem(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t,
		map[string]any{"name": "Idli", "price": 100, "quantity": 1},
		map[string]any{"name": "Vada", "price": 60, "quantity": 2},
	)
	staff := &middlewares.Claims{UserID: uuid.New(), Role: models.RoleAdmin}
	q := "?restaurantId=" + e.rid.String()

	w := e.do(t, http.MethodDelete, "/orders/"+o.ID.String()+"/items/0"+q, nil, staff)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	resp := decode[struct {
		Order *models.Order `json:"order"`
	}](t, w)
	if resp.Order == nil || resp.Order.TotalPrice.String() != "120" {
		t.Fatalf("order = %+v", resp.Order)
	}

	w = e.do(t, http.MethodDelete, "/orders/"+o.ID.String()+"/items/0"+q, nil, staff)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("last item: %d %q", w.Code, w.Body.String())
	}
	if len(e.orders.orders) != 0 {
		t.Fatal("order not deleted")
	}
}

func TestRestaurantScope(t *testing.T) {
	e := newTestEnv(t)
	other := uuid.New()
	cook := &middlewares.Claims{UserID: uuid.New(), Role: models.RoleCook, RestaurantID: &e.rid}
	admin := &middlewares.Claims{UserID: uuid.New(), Role: models.RoleAdmin, RestaurantID: &e.rid}

	tests := []struct {
		name   string
		target string
		claims *middlewares.Claims
		code   int
	}{
		{"query id", "/tables?restaurantId=" + e.rid.String(), nil, http.StatusOK},
		{"alias", "/tables?restaurant=" + e.rid.String(), nil, http.StatusOK},
		{"token fallback", "/tables", cook, http.StatusOK},
		{"missing", "/tables", nil, http.StatusBadRequest},
		{"foreign restaurant", "/tables?restaurantId=" + other.String(), cook, http.StatusForbidden},
		{"admin may cross", "/tables?restaurantId=" + other.String(), admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := e.do(t, http.MethodGet, tt.target, nil, tt.claims); w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
		})
	}
}

func TestVerifyTableOTP(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodPost, "/tables/verify-otp", map[string]string{"restaurantId": e.rid.String(), "otp": e.otp}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body.String())
	}
	if got := decode[map[string]any](t, w); got["tableNumber"] != float64(2) {
		t.Fatalf("body = %v", got)
	}

	e.tables.tables[0].OTPGeneratedAt = time.Now().Add(-models.OTPValidity)
	w = e.do(t, http.MethodPost, "/tables/verify-otp", map[string]string{"restaurantId": e.rid.String(), "otp": e.otp}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expired: status = %d", w.Code)
	}
}
