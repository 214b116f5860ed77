package cartstore

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cache"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartrepo"
)

const syncTimeout = 2 * time.Second

// Store holds one shopper's cart for the lifetime of a session.
//
// Mutations apply to local state synchronously and are pushed to the remote
// store best-effort when the shopper is authenticated: a failed remote call
// is logged and does not roll back the local mutation. Load is the
// reconciliation point.
type Store struct {
	ownerID string
	authed  bool
	repo    cartrepo.Repository
	cache   cache.SnapshotCache

	mu    sync.Mutex
	state cart.Cart
	seq   uint64 // logical clock, guards against stale remote responses
}

func NewStore(ownerID string, authenticated bool, repo cartrepo.Repository, snapshots cache.SnapshotCache) *Store {
	return &Store{
		ownerID: ownerID,
		authed:  authenticated,
		repo:    repo,
		cache:   snapshots,
		state:   cart.Cart{OwnerID: ownerID},
	}
}

// Cart returns the current local state.
func (s *Store) Cart() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load hydrates the store once per session start. Authenticated sessions
// replace local state wholesale with the remote cart (remote wins); anonymous
// sessions recover the persisted snapshot. A remote response that raced a
// newer local mutation is discarded.
func (s *Store) Load(ctx context.Context) (cart.Cart, error) {
	s.mu.Lock()
	issueSeq := s.seq
	s.mu.Unlock()

	var loaded *cart.Cart
	if s.authed {
		remote, err := s.repo.Get(ctx, s.ownerID)
		if err != nil && !errors.Is(err, cartrepo.ErrCartNotFound) {
			return s.Cart(), err
		}
		if remote == nil {
			remote = &cart.Cart{OwnerID: s.ownerID}
		}
		loaded = remote
	} else {
		snapshot, err := s.cache.Get(ctx, s.ownerID)
		if err != nil {
			if !errors.Is(err, cache.ErrCacheMiss) {
				// Transient cache failure. The saved snapshot must survive
				// it, so do not adopt (and later write back) an empty cart;
				// the next load retries.
				return s.Cart(), err
			}
			snapshot = &cart.Cart{OwnerID: s.ownerID}
		}
		loaded = snapshot
	}

	s.mu.Lock()
	if s.seq != issueSeq {
		// A mutation landed while the load was in flight; the response is
		// stale and must not overwrite the newer local state.
		log.Printf("discarding stale load response for %s (seq %d != %d)", s.ownerID, issueSeq, s.seq)
		c := s.state
		s.mu.Unlock()
		return c, nil
	}
	loaded.OwnerID = s.ownerID
	loaded.Seq = s.seq
	s.state = *loaded
	c := s.state
	s.mu.Unlock()

	s.persistSnapshot(c)
	return c, nil
}

// Add appends or coalesces a line locally, then syncs remote best-effort.
func (s *Store) Add(ctx context.Context, cmd cart.Add) cart.Cart {
	snapshot := s.apply(cmd)

	if s.authed {
		line, ok := findByIdentity(snapshot, cmd)
		if ok {
			// Push only the delta; the remote store coalesces by identity.
			line.Quantity = cmd.Quantity
			s.sync(ctx, "add", func(ctx context.Context) error {
				return s.repo.AddItem(ctx, s.ownerID, line)
			})
		}
	}
	return snapshot
}

func (s *Store) Remove(ctx context.Context, lineID string) cart.Cart {
	snapshot := s.apply(cart.Remove{LineID: lineID})

	if s.authed {
		s.sync(ctx, "remove", func(ctx context.Context) error {
			err := s.repo.RemoveItem(ctx, s.ownerID, lineID)
			if errors.Is(err, cartrepo.ErrCartNotFound) {
				return nil
			}
			return err
		})
	}
	return snapshot
}

// SetQuantity sets a line's quantity; zero removes the line.
func (s *Store) SetQuantity(ctx context.Context, lineID string, quantity int) cart.Cart {
	snapshot := s.apply(cart.SetQuantity{LineID: lineID, Quantity: quantity})

	if s.authed {
		s.sync(ctx, "update", func(ctx context.Context) error {
			err := s.repo.SetQuantity(ctx, s.ownerID, lineID, quantity)
			if errors.Is(err, cartrepo.ErrLineNotFound) || errors.Is(err, cartrepo.ErrCartNotFound) {
				return nil
			}
			return err
		})
	}
	return snapshot
}

func (s *Store) Clear(ctx context.Context) cart.Cart {
	snapshot := s.apply(cart.Clear{})

	if s.authed {
		s.sync(ctx, "clear", func(ctx context.Context) error {
			err := s.repo.Delete(ctx, s.ownerID)
			if errors.Is(err, cartrepo.ErrCartNotFound) {
				return nil
			}
			return err
		})
	}
	return snapshot
}

// apply runs the pure transition, bumps the sequence and persists the
// snapshot. Local state is committed before any remote call is attempted.
func (s *Store) apply(cmd cart.Command) cart.Cart {
	s.mu.Lock()
	s.state = cart.Apply(s.state, cmd)
	s.seq++
	s.state.Seq = s.seq
	snapshot := s.state
	s.mu.Unlock()

	s.persistSnapshot(snapshot)
	return snapshot
}

// sync issues a best-effort remote mutation. Failures are logged, never
// surfaced: the local state stays the source of truth for this session.
func (s *Store) sync(ctx context.Context, op string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), syncTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Printf("remote cart %s failed for %s: %v", op, s.ownerID, err)
	}
}

// Every state transition writes the snapshot regardless of auth state, so a
// later anonymous load can recover it.
func (s *Store) persistSnapshot(snapshot cart.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Set(ctx, s.ownerID, &snapshot); err != nil {
		log.Printf("cart snapshot write error for %s: %v", s.ownerID, err)
	}
}

func findByIdentity(c cart.Cart, cmd cart.Add) (cart.Line, bool) {
	probe := cart.Line{ProductID: cmd.ProductID, Size: cmd.Size, Color: cmd.Color}
	for _, l := range c.Lines {
		if l.SameIdentity(probe) {
			return l, true
		}
	}
	return cart.Line{}, false
}

// idleSessionTTL bounds how long an untouched session store is kept. Every
// state transition is persisted (snapshot cache, remote store), so an evicted
// session simply reloads on its next request.
const idleSessionTTL = 30 * time.Minute

// Manager hands out one live Store per session owner. The first request for
// an owner loads the cart; concurrent first requests collapse into a single
// load. Idle stores are evicted so anonymous one-shot traffic cannot grow
// the registry without bound.
type Manager struct {
	repo  cartrepo.Repository
	cache cache.SnapshotCache

	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	stores   map[string]*Store
	lastSeen map[string]time.Time
	sfg      singleflight.Group // Prevents duplicate session loads
}

func NewManager(repo cartrepo.Repository, snapshots cache.SnapshotCache) *Manager {
	return &Manager{
		repo:     repo,
		cache:    snapshots,
		idleTTL:  idleSessionTTL,
		now:      time.Now,
		stores:   make(map[string]*Store),
		lastSeen: make(map[string]time.Time),
	}
}

// Session returns the owner's store, loading it on first use.
func (m *Manager) Session(ctx context.Context, ownerID string, authenticated bool) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.stores[ownerID]; ok {
		m.lastSeen[ownerID] = m.now()
		m.evictIdleLocked()
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.sfg.Do(ownerID, func() (interface{}, error) {
		s := NewStore(ownerID, authenticated, m.repo, m.cache)
		if _, err := s.Load(ctx); err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.stores[ownerID] = s
		m.lastSeen[ownerID] = m.now()
		m.evictIdleLocked()
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// evictIdleLocked drops sessions that have not been touched within the TTL.
// Callers hold m.mu.
func (m *Manager) evictIdleLocked() {
	cutoff := m.now().Add(-m.idleTTL)
	for id, seen := range m.lastSeen {
		if seen.Before(cutoff) {
			delete(m.stores, id)
			delete(m.lastSeen, id)
		}
	}
}

// ClearOwner clears the owner's cart everywhere. Called by order
// finalization; nothing else destroys a cart.
func (m *Manager) ClearOwner(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	s, ok := m.stores[ownerID]
	m.mu.Unlock()

	if ok {
		s.Clear(ctx)
		return nil
	}

	if err := m.repo.Delete(ctx, ownerID); err != nil && !errors.Is(err, cartrepo.ErrCartNotFound) {
		return err
	}
	if err := m.cache.Delete(ctx, ownerID); err != nil {
		log.Printf("cart snapshot delete error for %s: %v", ownerID, err)
	}
	return nil
}

// Drop forgets a session store, e.g. after the guest cart was merged away.
func (m *Manager) Drop(ownerID string) {
	m.mu.Lock()
	delete(m.stores, ownerID)
	delete(m.lastSeen, ownerID)
	m.mu.Unlock()
}
