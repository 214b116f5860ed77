package pricing

import (
	"math"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
)

// Config carries the shipping and tax rules for a quote.
type Config struct {
	FreeShippingThreshold cart.Money
	ShippingFee           cart.Money
	TaxRateBps            int // tax rate in basis points, 1800 = 18%
}

// Breakdown is the itemized result of pricing a cart. Derived, never
// persisted on its own; orders carry a frozen copy.
type Breakdown struct {
	Subtotal cart.Money `json:"subtotal"`
	Discount cart.Money `json:"discount"`
	Shipping cart.Money `json:"shipping"`
	Tax      cart.Money `json:"tax"`
	Total    cart.Money `json:"total"`
}

// Quote computes the full price breakdown. Pure and deterministic: no I/O,
// no clock, no randomness.
//
// Shipping and tax are both computed on the pre-discount subtotal: shipping
// reflects the physical fulfillment cost, and discounts do not reduce the
// taxable basis.
func Quote(lines []cart.Line, discount cart.Money, cfg Config) Breakdown {
	var subtotal cart.Money
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		subtotal += cart.Money(l.Quantity) * l.UnitPrice
	}

	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	var shipping cart.Money
	if subtotal <= cfg.FreeShippingThreshold {
		shipping = cfg.ShippingFee
	}

	tax := cart.Money(math.Round(float64(subtotal) * float64(cfg.TaxRateBps) / 10000))

	total := subtotal - discount + shipping + tax
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Tax:      tax,
		Total:    total,
	}
}
