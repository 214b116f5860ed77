package payment

import (
	"context"
	"errors"
	"time"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

// Mode distinguishes a real gateway charge from the fallback path used when
// no gateway is configured. It is an explicit field signaled by the server,
// never inferred from the shape of a token.
type Mode string

const (
	ModeLive     Mode = "LIVE"
	ModeDegraded Mode = "DEGRADED"
)

type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
)

// Transaction is one checkout attempt against the gateway. The cart lines
// and pricing are frozen at intent time; finalization builds the order from
// this snapshot, not from the live cart.
type Transaction struct {
	ID            string            `json:"id"`
	OwnerID       string            `json:"owner_id"`
	ClientSecret  string            `json:"client_secret"`
	ProviderRef   string            `json:"provider_ref,omitempty"`
	Mode          Mode              `json:"mode"`
	Status        Status            `json:"status"`
	CouponCode    string            `json:"coupon_code,omitempty"`
	Items         []cart.Line       `json:"items"`
	Pricing       pricing.Breakdown `json:"pricing"`
	FailureReason string            `json:"failure_reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// FinalizeEligible reports whether an order may be created from this
// transaction: confirmed for live charges, or still CREATED on the degraded
// path where no confirmation step exists.
func (t *Transaction) FinalizeEligible() bool {
	return t.Status == StatusConfirmed || (t.Status == StatusCreated && t.Mode == ModeDegraded)
}

var ErrTransactionNotFound = errors.New("payment transaction not found")

// TransactionStore persists checkout attempts. The Postgres implementation
// lives in the repository package.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status Status, failureReason string) error
}
