package http

import (
	"context"
	"sync"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cache"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartrepo"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/payment"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

// In-memory collaborators for handler tests. They mirror the persistence
// contracts closely enough to exercise the full request paths without
// containers.

type memCartRepo struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: make(map[string]*cart.Cart)}
}

func (m *memCartRepo) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[ownerID]
	if !ok {
		return nil, cartrepo.ErrCartNotFound
	}
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	return &cp, nil
}

func (m *memCartRepo) Upsert(ctx context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	m.carts[c.OwnerID] = &cp
	return nil
}

func (m *memCartRepo) AddItem(ctx context.Context, ownerID string, line cart.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[ownerID]
	if !ok {
		c = &cart.Cart{OwnerID: ownerID}
		m.carts[ownerID] = c
	}
	next := cart.Apply(*c, cart.Add{
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		Size:      line.Size,
		Color:     line.Color,
	})
	*c = next
	return nil
}

func (m *memCartRepo) SetQuantity(ctx context.Context, ownerID, lineID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[ownerID]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	next := cart.Apply(*c, cart.SetQuantity{LineID: lineID, Quantity: quantity})
	*c = next
	return nil
}

func (m *memCartRepo) RemoveItem(ctx context.Context, ownerID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[ownerID]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	next := cart.Apply(*c, cart.Remove{LineID: lineID})
	*c = next
	return nil
}

func (m *memCartRepo) Delete(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[ownerID]; !ok {
		return cartrepo.ErrCartNotFound
	}
	delete(m.carts, ownerID)
	return nil
}

type memCache struct {
	mu        sync.Mutex
	snapshots map[string]*cart.Cart
}

func newMemCache() *memCache {
	return &memCache{snapshots: make(map[string]*cart.Cart)}
}

func (m *memCache) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.snapshots[ownerID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	return &cp, nil
}

func (m *memCache) Set(ctx context.Context, ownerID string, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	m.snapshots[ownerID] = &cp
	return nil
}

func (m *memCache) Delete(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, ownerID)
	return nil
}

type memTxStore struct {
	mu  sync.Mutex
	txs map[string]*payment.Transaction
}

func newMemTxStore() *memTxStore {
	return &memTxStore{txs: make(map[string]*payment.Transaction)}
}

func (m *memTxStore) CreateTransaction(ctx context.Context, tx *payment.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.txs[tx.ID] = &cp
	return nil
}

func (m *memTxStore) GetTransaction(ctx context.Context, id string) (*payment.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok {
		return nil, payment.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (m *memTxStore) UpdateTransactionStatus(ctx context.Context, id string, status payment.Status, failureReason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok {
		return payment.ErrTransactionNotFound
	}
	tx.Status = status
	tx.FailureReason = failureReason
	return nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	byID   map[string]*order.Order
	byTx   map[string]*order.Order
	listed []string
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		byID: make(map[string]*order.Order),
		byTx: make(map[string]*order.Order),
	}
}

func (m *memOrderRepo) CreateOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byTx[o.PaymentTransactionID]; exists {
		return order.ErrDuplicateTransaction
	}
	cp := *o
	m.byID[o.ID] = &cp
	m.byTx[o.PaymentTransactionID] = &cp
	m.listed = append(m.listed, o.ID)
	return nil
}

func (m *memOrderRepo) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) GetOrderByTransactionID(ctx context.Context, txID string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byTx[txID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) ListOrdersByOwner(ctx context.Context, ownerID string) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*order.Order
	for _, id := range m.listed {
		if o := m.byID[id]; o.OwnerID == ownerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOrderRepo) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

type mapCouponSource struct {
	coupons map[string]*pricing.Coupon
}

func (s *mapCouponSource) GetCoupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	c, ok := s.coupons[code]
	if !ok {
		return nil, pricing.ErrInvalidCode
	}
	cp := *c
	return &cp, nil
}
