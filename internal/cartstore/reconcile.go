package cartstore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cache"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartrepo"
)

// MergeGuestCart folds a guest's locally persisted cart into the
// authenticated user's remote cart. It runs once, right after login, before
// the user's store is read anywhere else.
//
// The merge is a read-modify-write: quantities sum for identity-equal lines,
// everything else is created. The guest snapshot is cleared only after the
// remote upsert is acknowledged; on failure it is preserved and the merge is
// retried on the next login.
func (m *Manager) MergeGuestCart(ctx context.Context, guestID, userID string) error {
	guest, err := m.cache.Get(ctx, guestID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil // nothing to merge
		}
		return fmt.Errorf("read guest cart: %w", err)
	}
	if len(guest.Lines) == 0 {
		return nil
	}

	remote, err := m.repo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, cartrepo.ErrCartNotFound) {
			return fmt.Errorf("read remote cart: %w", err)
		}
		remote = &cart.Cart{OwnerID: userID}
	}

	merged := *remote
	merged.OwnerID = userID
	for _, line := range guest.Lines {
		merged = cart.Apply(merged, cart.Add{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Size:      line.Size,
			Color:     line.Color,
		})
	}

	if err := m.repo.Upsert(ctx, &merged); err != nil {
		// Guest snapshot stays put so the merge can be retried.
		return fmt.Errorf("merge guest cart: %w", err)
	}

	if err := m.cache.Delete(ctx, guestID); err != nil {
		log.Printf("guest snapshot delete error for %s: %v", guestID, err)
	}
	m.Drop(guestID)

	// Force the user's next session to pick up the merged remote state.
	m.Drop(userID)
	return nil
}
