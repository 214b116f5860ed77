package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
)

type CouponType string

const (
	CouponPercentage CouponType = "PERCENTAGE"
	CouponFixed      CouponType = "FIXED"
)

type Coupon struct {
	Code              string
	Type              CouponType
	Value             int64 // percent for PERCENTAGE, minor units for FIXED
	MinOrderAmount    cart.Money
	MaxDiscountAmount cart.Money // 0 means no cap
	UsageLimit        int        // 0 means unlimited
	UsageCount        int
	ValidUntil        time.Time
}

var (
	ErrInvalidCode    = errors.New("coupon code not found")
	ErrExpired        = errors.New("coupon has expired")
	ErrMinimumNotMet  = errors.New("order amount below coupon minimum")
	ErrUsageExhausted = errors.New("coupon usage limit reached")
)

// Source resolves coupon codes. The Postgres implementation lives in the
// repository package.
type Source interface {
	GetCoupon(ctx context.Context, code string) (*Coupon, error)
}

// Resolver validates a coupon code against a subtotal and computes the
// discount. It never touches the usage count: usage is incremented at order
// commit time, so repeated pricing previews do not double-count.
type Resolver struct {
	source Source
	now    func() time.Time
}

func NewResolver(source Source) *Resolver {
	return &Resolver{source: source, now: time.Now}
}

// Apply returns the clamped discount for the code, or a typed validation
// error. An empty code means no discount and is not an error.
func (r *Resolver) Apply(ctx context.Context, code string, subtotal cart.Money) (cart.Money, error) {
	if code == "" {
		return 0, nil
	}

	coupon, err := r.source.GetCoupon(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return 0, ErrInvalidCode
		}
		return 0, fmt.Errorf("resolve coupon %q: %w", code, err)
	}

	if r.now().After(coupon.ValidUntil) {
		return 0, ErrExpired
	}
	if subtotal < coupon.MinOrderAmount {
		return 0, ErrMinimumNotMet
	}
	if coupon.UsageLimit > 0 && coupon.UsageCount >= coupon.UsageLimit {
		return 0, ErrUsageExhausted
	}

	var raw cart.Money
	switch coupon.Type {
	case CouponPercentage:
		raw = subtotal * cart.Money(coupon.Value) / 100
	case CouponFixed:
		raw = cart.Money(coupon.Value)
	default:
		return 0, fmt.Errorf("coupon %q has unknown type %q", code, coupon.Type)
	}

	discount := raw
	if coupon.MaxDiscountAmount > 0 && discount > coupon.MaxDiscountAmount {
		discount = coupon.MaxDiscountAmount
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}
