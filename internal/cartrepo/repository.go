package cartrepo

import (
	"context"
	"errors"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("line not found in cart")
)

// Repository is the remote authoritative cart store, the copy that wins for
// authenticated shoppers. Consumers define this interface, not the MongoDB
// implementation.
type Repository interface {
	Get(ctx context.Context, ownerID string) (*cart.Cart, error)
	Upsert(ctx context.Context, c *cart.Cart) error
	AddItem(ctx context.Context, ownerID string, line cart.Line) error
	SetQuantity(ctx context.Context, ownerID, lineID string, quantity int) error
	RemoveItem(ctx context.Context, ownerID, lineID string) error
	Delete(ctx context.Context, ownerID string) error
}
