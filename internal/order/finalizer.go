package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/payment"
)

var ErrNotEligible = errors.New("payment transaction is not eligible for finalization")

// FinalizationError reports a genuine finalize failure (stock vanished,
// storage refused the write). The cart is left untouched so the shopper can
// retry.
type FinalizationError struct {
	Reason string
	Err    error
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("finalization failed: %s", e.Reason)
}

func (e *FinalizationError) Unwrap() error { return e.Err }

// CartClearer empties a shopper's cart everywhere after a successful order.
type CartClearer interface {
	ClearOwner(ctx context.Context, ownerID string) error
}

// Publisher announces created orders to downstream collaborators
// (fulfillment, email). Best-effort.
type Publisher interface {
	OrderCreated(ctx context.Context, o *Order) error
}

// Finalizer converts one eligible payment transaction into exactly one
// persisted order. Safe to call repeatedly for the same transaction: the
// repository's uniqueness constraint resolves duplicates to the canonical
// order instead of creating a second one.
type Finalizer struct {
	orders    Repository
	txs       payment.TransactionStore
	carts     CartClearer
	publisher Publisher
}

func NewFinalizer(orders Repository, txs payment.TransactionStore, carts CartClearer, publisher Publisher) *Finalizer {
	return &Finalizer{
		orders:    orders,
		txs:       txs,
		carts:     carts,
		publisher: publisher,
	}
}

func (f *Finalizer) Finalize(ctx context.Context, txID string, addr Address) (*Order, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	tx, err := f.txs.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if !tx.FinalizeEligible() {
		return nil, ErrNotEligible
	}

	now := time.Now()
	o := &Order{
		ID:                   uuid.NewString(),
		OwnerID:              tx.OwnerID,
		Items:                append([]cart.Line(nil), tx.Items...),
		Pricing:              tx.Pricing,
		PaymentTransactionID: tx.ID,
		PaymentMode:          string(tx.Mode),
		CouponCode:           tx.CouponCode,
		Status:               StatusProcessing,
		ShippingAddress:      addr,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := f.orders.CreateOrder(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicateTransaction) {
			// Someone beat us to it (double click, duplicate retry, second
			// tab). Return the canonical order.
			existing, getErr := f.orders.GetOrderByTransactionID(ctx, tx.ID)
			if getErr != nil {
				return nil, fmt.Errorf("fetch existing order for transaction %s: %w", tx.ID, getErr)
			}
			return existing, nil
		}
		return nil, &FinalizationError{Reason: "could not persist order", Err: err}
	}

	// The order exists; everything after this point is cleanup that must not
	// fail the checkout.
	if f.publisher != nil {
		if err := f.publisher.OrderCreated(ctx, o); err != nil {
			log.Printf("order-created publish failed for %s: %v", o.ID, err)
		}
	}
	if err := f.carts.ClearOwner(ctx, o.OwnerID); err != nil {
		log.Printf("cart clear failed for %s after order %s: %v", o.OwnerID, o.ID, err)
	}

	return o, nil
}

// UpdateStatus applies a fulfillment status transition, rejecting illegal
// moves.
func (f *Finalizer) UpdateStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	o, err := f.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("illegal order status transition %s -> %s", o.Status, next)
	}
	if err := f.orders.UpdateOrderStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	o.Status = next
	return o, nil
}
