package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
)

// CreateOrder inserts the order row and, when a coupon was used, increments
// its usage count in the same database transaction. A violation of the
// payment_transaction_id uniqueness maps to order.ErrDuplicateTransaction so
// the caller can return the canonical order.
func (r *Repository) CreateOrder(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	pricingJSON, err := json.Marshal(o.Pricing)
	if err != nil {
		return fmt.Errorf("failed to marshal order pricing: %w", err)
	}
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (id, owner_id, payment_transaction_id, payment_mode, coupon_code, status, items, pricing, shipping_address, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, query,
		o.ID,
		o.OwnerID,
		o.PaymentTransactionID,
		o.PaymentMode,
		o.CouponCode,
		o.Status,
		itemsJSON,
		pricingJSON,
		addressJSON)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return order.ErrDuplicateTransaction
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}

	if o.CouponCode != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE coupons SET usage_count = usage_count + 1 WHERE code = $1`,
			o.CouponCode); err != nil {
			return fmt.Errorf("increment coupon usage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

const orderColumns = `id, owner_id, payment_transaction_id, payment_mode, COALESCE(coupon_code, ''), status, items, pricing, shipping_address, created_at, updated_at`

func (r *Repository) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *Repository) GetOrderByTransactionID(ctx context.Context, txID string) (*order.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_transaction_id = $1`, txID)
	return scanOrder(row)
}

func (r *Repository) ListOrdersByOwner(ctx context.Context, ownerID string) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by owner: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var itemsJSON, pricingJSON, addressJSON []byte

	err := row.Scan(
		&o.ID,
		&o.OwnerID,
		&o.PaymentTransactionID,
		&o.PaymentMode,
		&o.CouponCode,
		&o.Status,
		&itemsJSON,
		&pricingJSON,
		&addressJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order row: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(pricingJSON, &o.Pricing); err != nil {
		return nil, fmt.Errorf("unmarshal order pricing: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	return &o, nil
}
