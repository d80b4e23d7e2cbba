package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/models"
	"github.com/ray-remotestate/dinein/realtime"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memStore is an in-memory stand-in for every repository.
type memStore struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]models.Order
	tables      map[uuid.UUID]models.Table
	foodTypes   map[uuid.UUID]models.FoodType
	foods       map[uuid.UUID]models.Food
	bills       map[uuid.UUID]models.Bill
	restaurants map[uuid.UUID]models.Restaurant
	users       map[uuid.UUID]models.User
	calls       map[uuid.UUID]models.WaiterCall

	// beforeSave runs inside SaveOrder before the revision check.
	beforeSave func(o *models.Order)
	saveCalls  int
	// beforeOccupy runs inside MarkTableOccupied before the flag is set.
	beforeOccupy func()
}

func newMemStore() *memStore {
	return &memStore{
		orders:      map[uuid.UUID]models.Order{},
		tables:      map[uuid.UUID]models.Table{},
		foodTypes:   map[uuid.UUID]models.FoodType{},
		foods:       map[uuid.UUID]models.Food{},
		bills:       map[uuid.UUID]models.Bill{},
		restaurants: map[uuid.UUID]models.Restaurant{},
		users:       map[uuid.UUID]models.User{},
		calls:       map[uuid.UUID]models.WaiterCall{},
	}
}

func copyOrder(o models.Order) *models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return &o
}

func (m *memStore) CreateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = *copyOrder(*o)
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id, rid uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	return copyOrder(o), nil
}

func (m *memStore) ListOrders(_ context.Context, f OrderFilter) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.RestaurantID != f.RestaurantID || o.CreatedAt.Before(f.Since) {
			continue
		}
		if f.TableOTP == "" || o.TableOTP == f.TableOTP {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) SaveOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.beforeSave != nil {
		hook := m.beforeSave
		m.beforeSave = nil
		m.mu.Unlock()
		hook(o)
		m.mu.Lock()
	}
	cur, ok := m.orders[o.ID]
	if !ok || cur.RestaurantID != o.RestaurantID {
		return models.ErrNotFound
	}
	if cur.Revision != o.Revision {
		return models.ErrRevisionMismatch
	}
	o.Revision++
	m.orders[o.ID] = *copyOrder(*o)
	return nil
}

func (m *memStore) DeleteOrder(_ context.Context, id, rid uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.RestaurantID != rid {
		return models.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *memStore) CreateTable(_ context.Context, t *models.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.tables {
		if other.RestaurantID == t.RestaurantID && other.Number == t.Number {
			return models.ErrConflict
		}
	}
	m.tables[t.ID] = *t
	return nil
}

func (m *memStore) GetTable(_ context.Context, id, rid uuid.UUID) (*models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok || t.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) GetTableByOTP(_ context.Context, otp string, rid uuid.UUID) (*models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t.OTP == otp && t.RestaurantID == rid {
			return &t, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) ListTables(_ context.Context, rid uuid.UUID) ([]models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Table
	for _, t := range m.tables {
		if t.RestaurantID == rid {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memStore) UpdateTable(_ context.Context, t *models.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tables[t.ID]
	if !ok || cur.RestaurantID != t.RestaurantID {
		return models.ErrNotFound
	}
	cur.Number, cur.Capacity, cur.Location, cur.Occupied = t.Number, t.Capacity, t.Location, t.Occupied
	m.tables[t.ID] = cur
	return nil
}

// setTable applies fn to the stored row under the lock.
func (m *memStore) setTable(id, rid uuid.UUID, fn func(t *models.Table)) (*models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok || t.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	fn(&t)
	m.tables[id] = t
	return &t, nil
}

func (m *memStore) MarkTableOccupied(_ context.Context, id, rid uuid.UUID) (*models.Table, error) {
	if hook := m.beforeOccupy; hook != nil {
		m.beforeOccupy = nil
		hook()
	}
	return m.setTable(id, rid, func(t *models.Table) { t.Occupied = true })
}

func (m *memStore) SetTableOTP(_ context.Context, id, rid uuid.UUID, otp string, at time.Time) (*models.Table, error) {
	return m.setTable(id, rid, func(t *models.Table) {
		t.OTP = otp
		t.OTPGeneratedAt = at
	})
}

func (m *memStore) SetTablePayment(_ context.Context, id, rid uuid.UUID, initiated bool, pt models.PaymentType) (*models.Table, error) {
	return m.setTable(id, rid, func(t *models.Table) {
		t.PaymentInitiated = initiated
		t.PaymentType = pt
	})
}

func (m *memStore) DeleteTable(_ context.Context, id, rid uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[id]
	if !ok || t.RestaurantID != rid {
		return models.ErrNotFound
	}
	delete(m.tables, id)
	return nil
}

func (m *memStore) CreateFoodType(_ context.Context, ft *models.FoodType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.foodTypes {
		if other.RestaurantID == ft.RestaurantID && strings.EqualFold(other.Name, ft.Name) {
			return models.ErrConflict
		}
	}
	m.foodTypes[ft.ID] = *ft
	return nil
}

func (m *memStore) GetFoodType(_ context.Context, id, rid uuid.UUID) (*models.FoodType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ft, ok := m.foodTypes[id]
	if !ok || ft.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	return &ft, nil
}

func (m *memStore) ListFoodTypes(_ context.Context, rid uuid.UUID) ([]models.FoodType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FoodType
	for _, ft := range m.foodTypes {
		if ft.RestaurantID == rid {
			out = append(out, ft)
		}
	}
	return out, nil
}

func (m *memStore) UpdateFoodType(_ context.Context, ft *models.FoodType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foodTypes[ft.ID] = *ft
	return nil
}

func (m *memStore) DeleteFoodType(_ context.Context, id, rid uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ft, ok := m.foodTypes[id]
	if !ok || ft.RestaurantID != rid {
		return models.ErrNotFound
	}
	delete(m.foodTypes, id)
	return nil
}

func (m *memStore) CreateFood(_ context.Context, f *models.Food) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foods[f.ID] = *f
	return nil
}

func (m *memStore) GetFood(_ context.Context, id, rid uuid.UUID) (*models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[id]
	if !ok || f.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	return &f, nil
}

func (m *memStore) ListFoods(_ context.Context, filter FoodFilter) ([]models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Food
	for _, f := range m.foods {
		if f.RestaurantID != filter.RestaurantID {
			continue
		}
		if filter.FoodTypeID != nil && f.FoodTypeID != *filter.FoodTypeID {
			continue
		}
		if filter.AvailableOnly && !f.IsAvailable {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *memStore) UpdateFood(_ context.Context, f *models.Food) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foods[f.ID] = *f
	return nil
}

func (m *memStore) DeleteFood(_ context.Context, id, rid uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[id]
	if !ok || f.RestaurantID != rid {
		return models.ErrNotFound
	}
	delete(m.foods, id)
	return nil
}

func (m *memStore) CreateBill(_ context.Context, b *models.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.bills {
		if other.BillNumber == b.BillNumber {
			return models.ErrConflict
		}
	}
	m.bills[b.ID] = *b
	return nil
}

func (m *memStore) GetBill(_ context.Context, id, rid uuid.UUID) (*models.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok || b.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	return &b, nil
}

func (m *memStore) ListBills(_ context.Context, f BillFilter) ([]models.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Bill
	for _, b := range m.bills {
		if b.RestaurantID != f.RestaurantID {
			continue
		}
		if f.TableOTP != "" && b.TableOTP != f.TableOTP {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) UpdateBill(_ context.Context, b *models.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[b.ID]; !ok {
		return models.ErrNotFound
	}
	m.bills[b.ID] = *b
	return nil
}

func (m *memStore) DeleteBill(_ context.Context, id, rid uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok || b.RestaurantID != rid {
		return models.ErrNotFound
	}
	delete(m.bills, id)
	return nil
}

func (m *memStore) PayBill(_ context.Context, b *models.Bill, newOTP string, at time.Time) (*models.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bills[b.ID]; !ok {
		return nil, models.ErrNotFound
	}
	m.bills[b.ID] = *b
	for id, t := range m.tables {
		if t.RestaurantID == b.RestaurantID && t.OTP == b.TableOTP {
			t.Occupied = false
			t.PaymentInitiated = false
			t.PaymentType = models.PaymentTypeNone
			t.OTP = newOTP
			t.OTPGeneratedAt = at
			m.tables[id] = t
			return &t, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateRestaurant(_ context.Context, r *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurants[r.ID] = *r
	return nil
}

func (m *memStore) GetRestaurant(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) ListRestaurants(_ context.Context) ([]models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Restaurant
	for _, r := range m.restaurants {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) UpdateRestaurant(_ context.Context, r *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[r.ID]; !ok {
		return models.ErrNotFound
	}
	m.restaurants[r.ID] = *r
	return nil
}

func (m *memStore) DeleteRestaurant(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.restaurants, id)
	return nil
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.ArchivedAt == nil && strings.EqualFold(other.Email, u.Email) {
			return models.ErrConflict
		}
	}
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.ArchivedAt != nil {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ArchivedAt == nil && strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) ListUsers(_ context.Context, rid *uuid.UUID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if u.ArchivedAt != nil {
			continue
		}
		if rid != nil && (u.RestaurantID == nil || *u.RestaurantID != *rid) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.ArchivedAt != nil {
		return models.ErrNotFound
	}
	now := time.Now()
	u.ArchivedAt = &now
	m.users[id] = u
	return nil
}

func (m *memStore) CreateWaiterCall(_ context.Context, c *models.WaiterCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[c.ID] = *c
	return nil
}

func (m *memStore) ListWaiterCalls(_ context.Context, rid uuid.UUID, includeResolved bool) ([]models.WaiterCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WaiterCall
	for _, c := range m.calls {
		if c.RestaurantID == rid && (includeResolved || !c.Resolved) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ResolveWaiterCall(_ context.Context, id, rid uuid.UUID, at time.Time) (*models.WaiterCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	if !ok || c.RestaurantID != rid {
		return nil, models.ErrNotFound
	}
	c.Resolved = true
	c.ResolvedAt = &at
	m.calls[id] = c
	return &c, nil
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []realtime.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, evt realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

// seqOTP hands out the given codes in order.
func seqOTP(codes ...string) OTPSource {
	i := 0
	return func() (string, error) {
		c := codes[i%len(codes)]
		i++
		return c, nil
	}
}
