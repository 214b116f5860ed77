package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/cartstore"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to check out")
	ErrTransactionDead    = errors.New("transaction already failed, start a new checkout")
	ErrGatewayUnavailable = errors.New("payment gateway is not configured for live transactions")
)

// Orchestrator drives the payment handshake: it opens a transaction against
// the server-recomputed price and runs the confirmation step. A nil gateway
// puts every checkout on the DEGRADED path.
type Orchestrator struct {
	carts    *cartstore.Manager
	resolver *pricing.Resolver
	store    TransactionStore
	gateway  Gateway
	cfg      pricing.Config
	currency string
}

func NewOrchestrator(carts *cartstore.Manager, resolver *pricing.Resolver, store TransactionStore, gateway Gateway, cfg pricing.Config, currency string) *Orchestrator {
	return &Orchestrator{
		carts:    carts,
		resolver: resolver,
		store:    store,
		gateway:  gateway,
		cfg:      cfg,
		currency: currency,
	}
}

// CreateIntent opens a brand-new transaction for the owner's current cart.
// The price is always recomputed here from the authoritative cart; a total
// sent by the client is never trusted. Calling it again after a failure
// produces a fresh transaction id, dead transactions are never reused.
func (o *Orchestrator) CreateIntent(ctx context.Context, ownerID string, authenticated bool, couponCode string) (*Transaction, error) {
	session, err := o.carts.Session(ctx, ownerID, authenticated)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	current := session.Cart()
	if len(current.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	discount, err := o.resolver.Apply(ctx, couponCode, current.TotalAmount)
	if err != nil {
		return nil, err
	}
	breakdown := pricing.Quote(current.Lines, discount, o.cfg)

	tx := &Transaction{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Status:     StatusCreated,
		CouponCode: couponCode,
		Items:      append([]cart.Line(nil), current.Lines...),
		Pricing:    breakdown,
		CreatedAt:  time.Now(),
	}

	if o.gateway == nil {
		// No gateway configured server-side. The transaction is explicitly
		// tagged DEGRADED so clients and telemetry can tell it apart from a
		// real charge.
		tx.Mode = ModeDegraded
		tx.ClientSecret = uuid.NewString()
		log.Printf("payment gateway not configured, transaction %s runs degraded", tx.ID)
	} else {
		intent, err := o.gateway.CreateIntent(ctx, breakdown.Total, o.currency)
		if err != nil {
			return nil, fmt.Errorf("open gateway intent: %w", err)
		}
		tx.Mode = ModeLive
		tx.ProviderRef = intent.ProviderRef
		tx.ClientSecret = intent.ClientSecret
	}

	if err := o.store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}
	return tx, nil
}

// Confirm completes the gateway handshake for a LIVE transaction. DEGRADED
// transactions skip the gateway entirely and stay CREATED, which makes them
// finalize-eligible as-is. A failed transaction is dead: it is never retried.
func (o *Orchestrator) Confirm(ctx context.Context, txID string) (*Transaction, error) {
	tx, err := o.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case StatusFailed:
		return nil, ErrTransactionDead
	case StatusConfirmed:
		return tx, nil
	}

	if tx.Mode == ModeDegraded {
		return tx, nil
	}

	// A LIVE transaction persisted before a restart can reach a process that
	// lost its gateway credentials. It stays CREATED and retryable.
	if o.gateway == nil {
		return nil, ErrGatewayUnavailable
	}

	if err := o.gateway.Confirm(ctx, tx.ProviderRef); err != nil {
		var decline *DeclineError
		if errors.As(err, &decline) {
			if updErr := o.store.UpdateTransactionStatus(ctx, tx.ID, StatusFailed, decline.Reason); updErr != nil {
				log.Printf("failed to mark transaction %s as failed: %v", tx.ID, updErr)
			}
			return nil, decline
		}
		return nil, fmt.Errorf("confirm transaction %s: %w", tx.ID, err)
	}

	if err := o.store.UpdateTransactionStatus(ctx, tx.ID, StatusConfirmed, ""); err != nil {
		return nil, fmt.Errorf("persist confirmation for %s: %w", tx.ID, err)
	}
	tx.Status = StatusConfirmed
	return tx, nil
}
