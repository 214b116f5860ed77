package cache

import (
	"context"
	"errors"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
)

// SnapshotCache holds the locally persisted cart snapshot, so an anonymous
// session can recover its cart on the next load.
// Consumers define this interface, not the Redis implementation.
type SnapshotCache interface {
	Get(ctx context.Context, ownerID string) (*cart.Cart, error)
	Set(ctx context.Context, ownerID string, c *cart.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
