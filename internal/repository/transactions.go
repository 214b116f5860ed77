package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/payment"
)

func (r *Repository) CreateTransaction(ctx context.Context, tx *payment.Transaction) error {
	itemsJSON, err := json.Marshal(tx.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction items: %w", err)
	}
	pricingJSON, err := json.Marshal(tx.Pricing)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction pricing: %w", err)
	}

	query := `INSERT INTO payment_transactions (id, owner_id, client_secret, provider_ref, mode, status, coupon_code, items, pricing, failure_reason, created_at)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8, $9, NULLIF($10, ''), $11)`

	_, err = r.db.ExecContext(ctx, query,
		tx.ID,
		tx.OwnerID,
		tx.ClientSecret,
		tx.ProviderRef,
		tx.Mode,
		tx.Status,
		tx.CouponCode,
		itemsJSON,
		pricingJSON,
		tx.FailureReason,
		tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (*payment.Transaction, error) {
	query := `SELECT id, owner_id, client_secret, COALESCE(provider_ref, ''), mode, status, COALESCE(coupon_code, ''), items, pricing, COALESCE(failure_reason, ''), created_at
	          FROM payment_transactions WHERE id = $1`

	var tx payment.Transaction
	var itemsJSON, pricingJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tx.ID,
		&tx.OwnerID,
		&tx.ClientSecret,
		&tx.ProviderRef,
		&tx.Mode,
		&tx.Status,
		&tx.CouponCode,
		&itemsJSON,
		&pricingJSON,
		&tx.FailureReason,
		&tx.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, payment.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment transaction: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &tx.Items); err != nil {
		return nil, fmt.Errorf("unmarshal transaction items: %w", err)
	}
	if err := json.Unmarshal(pricingJSON, &tx.Pricing); err != nil {
		return nil, fmt.Errorf("unmarshal transaction pricing: %w", err)
	}
	return &tx, nil
}

func (r *Repository) UpdateTransactionStatus(ctx context.Context, id string, status payment.Status, failureReason string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payment_transactions SET status = $1, failure_reason = NULLIF($2, '') WHERE id = $3`,
		status, failureReason, id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if affected == 0 {
		return payment.ErrTransactionNotFound
	}
	return nil
}
