package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

func (r *Repository) GetCoupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	query := `SELECT code, type, value, min_order_amount, max_discount_amount, usage_limit, usage_count, valid_until
	          FROM coupons WHERE code = $1`

	var c pricing.Coupon
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.Code,
		&c.Type,
		&c.Value,
		&c.MinOrderAmount,
		&c.MaxDiscountAmount,
		&c.UsageLimit,
		&c.UsageCount,
		&c.ValidUntil,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pricing.ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("query coupon: %w", err)
	}
	return &c, nil
}

// CreateCoupon is used by seeding and tests; the admin surface that manages
// coupons lives outside this service.
func (r *Repository) CreateCoupon(ctx context.Context, c *pricing.Coupon) error {
	query := `INSERT INTO coupons (code, type, value, min_order_amount, max_discount_amount, usage_limit, usage_count, valid_until)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		c.Code, c.Type, c.Value, c.MinOrderAmount, c.MaxDiscountAmount, c.UsageLimit, c.UsageCount, c.ValidUntil)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}
