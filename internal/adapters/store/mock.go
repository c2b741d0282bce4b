package store

import (
	"context"
	"sort"
	"sync"

	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// StatusUpdate records a mutating call made against MockStore
type StatusUpdate struct {
	OrderID int64
	Status  string
}

// MockStore is an in-memory implementation of Store for testing.
// It applies queries with Query.Matches, so date and status filtering
// behave the way the real adapters do.
type MockStore struct {
	mu       sync.Mutex
	records  map[int64]*Order
	statuses status.Set
	gateways Gateways

	// Hooks for test assertions
	Updates       []StatusUpdate
	LastQuery     *Query
	GetOrderCalls int
	StatusesCalls int
	GatewaysCalls int
	Closed        bool

	// Error injection for testing error paths
	GetOrderErr error
	UpdateErr   error
	QueryErr    error
	StatusesErr error
	GatewaysErr error
}

// Compile-time check that MockStore implements Store
var _ Store = (*MockStore)(nil)

// NewMockStore creates a mock store with WooCommerce's core statuses and no gateways
func NewMockStore() *MockStore {
	return &MockStore{
		records:  make(map[int64]*Order),
		statuses: status.Core(),
	}
}

// AddOrder stores a record. RecordType defaults to shop_order.
func (m *MockStore) AddOrder(o *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.RecordType == "" {
		o.RecordType = RecordTypeOrder
	}
	m.records[o.ID] = o
}

// SetStatuses replaces the legal status set
func (m *MockStore) SetStatuses(set status.Set) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = set
}

// AddGateway registers a payment gateway
func (m *MockStore) AddGateway(gw Gateway) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gateways = append(m.gateways, gw)
}

// GetOrder returns the stored record or ErrNotFound
func (m *MockStore) GetOrder(_ context.Context, id int64) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetOrderCalls++
	if m.GetOrderErr != nil {
		return nil, m.GetOrderErr
	}
	o, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// UpdateOrderStatus records the call and applies it
func (m *MockStore) UpdateOrderStatus(_ context.Context, id int64, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, StatusUpdate{OrderID: id, Status: code})
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	o, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status.Normalize(code)
	return nil
}

// QueryOrders filters stored records, newest first
func (m *MockStore) QueryOrders(_ context.Context, q Query) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastQuery = &q
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	var out []*Order
	for _, o := range m.records {
		if q.Matches(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID > out[j].ID
		}
		return out[i].Created.After(out[j].Created)
	})
	if q.PerPage > 0 && len(out) > q.PerPage {
		out = out[:q.PerPage]
	}
	return out, nil
}

// OrderStatuses returns the configured status set
func (m *MockStore) OrderStatuses(_ context.Context) (status.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusesCalls++
	if m.StatusesErr != nil {
		return status.Set{}, m.StatusesErr
	}
	return m.statuses, nil
}

// PaymentGateways returns the registered gateways
func (m *MockStore) PaymentGateways(_ context.Context) (Gateways, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GatewaysCalls++
	if m.GatewaysErr != nil {
		return nil, m.GatewaysErr
	}
	out := make(Gateways, len(m.gateways))
	copy(out, m.gateways)
	return out, nil
}

// Close marks the store closed
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
