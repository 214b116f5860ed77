package order

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// CanTransition reports whether an order status change is legal. Orders move
// forward through fulfillment; cancellation is only possible before the
// parcel ships.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusProcessing:
		return to == StatusShipped || to == StatusCancelled
	case StatusShipped:
		return to == StatusDelivered
	default:
		return false
	}
}

type Address struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

var ErrInvalidAddress = errors.New("shipping address is incomplete or invalid")

var pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func (a Address) Validate() error {
	if a.Name == "" || a.Line1 == "" || a.City == "" {
		return ErrInvalidAddress
	}
	if !pincodeRe.MatchString(a.Pincode) {
		return ErrInvalidAddress
	}
	return nil
}

// Order is the immutable record of one successful checkout. Items and
// pricing are frozen copies taken from the payment transaction; only Status
// changes after creation.
type Order struct {
	ID                   string            `json:"id"`
	OwnerID              string            `json:"owner_id"`
	Items                []cart.Line       `json:"items"`
	Pricing              pricing.Breakdown `json:"pricing"`
	PaymentTransactionID string            `json:"payment_transaction_id"`
	PaymentMode          string            `json:"payment_mode"`
	CouponCode           string            `json:"coupon_code,omitempty"`
	Status               Status            `json:"status"`
	ShippingAddress      Address           `json:"shipping_address"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateTransaction = errors.New("order for this payment transaction already exists")
)

// Repository persists orders. CreateOrder must enforce uniqueness of
// (payment_transaction_id) and report ErrDuplicateTransaction, that
// constraint is the authoritative duplicate-finalize protection.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetOrderByTransactionID(ctx context.Context, txID string) (*Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID string) ([]*Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status Status) error
}
