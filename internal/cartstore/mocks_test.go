package cartstore

import (
	"context"
	"sync"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cache"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartrepo"
)

type mockRepository struct {
	m     sync.Mutex
	carts map[string]*cart.Cart
	err   error

	getStarted  chan struct{} // closed when Get is first entered, if set
	getGate     chan struct{} // Get blocks until closed, if set
	getOnceOnly sync.Once
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*cart.Cart)}
}

func (m *mockRepository) Get(_ context.Context, ownerID string) (*cart.Cart, error) {
	if m.getStarted != nil {
		m.getOnceOnly.Do(func() { close(m.getStarted) })
	}
	if m.getGate != nil {
		<-m.getGate
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[ownerID]
	if !ok {
		return nil, cartrepo.ErrCartNotFound
	}
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	return &cp, nil
}

func (m *mockRepository) Upsert(_ context.Context, c *cart.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	m.carts[c.OwnerID] = &cp
	return nil
}

func (m *mockRepository) AddItem(_ context.Context, ownerID string, line cart.Line) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	c, ok := m.carts[ownerID]
	if !ok {
		c = &cart.Cart{OwnerID: ownerID}
		m.carts[ownerID] = c
	}
	for i := range c.Lines {
		if c.Lines[i].SameIdentity(line) {
			c.Lines[i].Quantity += line.Quantity
			*c = cart.Recalculate(*c)
			return nil
		}
	}
	c.Lines = append(c.Lines, line)
	*c = cart.Recalculate(*c)
	return nil
}

func (m *mockRepository) SetQuantity(_ context.Context, ownerID, lineID string, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	c, ok := m.carts[ownerID]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			if quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			} else {
				c.Lines[i].Quantity = quantity
			}
			*c = cart.Recalculate(*c)
			return nil
		}
	}
	return cartrepo.ErrLineNotFound
}

func (m *mockRepository) RemoveItem(_ context.Context, ownerID, lineID string) error {
	return m.SetQuantity(nil, ownerID, lineID, 0)
}

func (m *mockRepository) Delete(_ context.Context, ownerID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[ownerID]; !ok {
		return cartrepo.ErrCartNotFound
	}
	delete(m.carts, ownerID)
	return nil
}

type mockCache struct {
	m      sync.Mutex
	carts  map[string]*cart.Cart
	err    error
	getErr error // returned by the next Get only, then cleared
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*cart.Cart)}
}

func (m *mockCache) Get(_ context.Context, ownerID string) (*cart.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		err := m.getErr
		m.getErr = nil
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[ownerID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	return &cp, nil
}

func (m *mockCache) Set(_ context.Context, ownerID string, c *cart.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *c
	cp.Lines = append([]cart.Line(nil), c.Lines...)
	m.carts[ownerID] = &cp
	return nil
}

func (m *mockCache) Delete(_ context.Context, ownerID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.carts, ownerID)
	return nil
}
