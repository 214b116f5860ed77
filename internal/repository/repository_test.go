package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/order"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/payment"
	"github.com/FullStackParihar/navodya-backend-sub000/internal/pricing"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func seedTransaction(t *testing.T, repo *Repository, couponCode string) *payment.Transaction {
	t.Helper()
	tx := &payment.Transaction{
		ID:           uuid.NewString(),
		OwnerID:      "user1",
		ClientSecret: "secret",
		Mode:         payment.ModeDegraded,
		Status:       payment.StatusCreated,
		CouponCode:   couponCode,
		Items: []cart.Line{
			{ID: uuid.NewString(), ProductID: "p1", Quantity: 1, UnitPrice: 500, Size: "M", Color: "Black"},
		},
		Pricing:   pricing.Breakdown{Subtotal: 500, Shipping: 99, Tax: 90, Total: 689},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), tx))
	return tx
}

func orderForTx(tx *payment.Transaction) *order.Order {
	now := time.Now().UTC()
	return &order.Order{
		ID:                   uuid.NewString(),
		OwnerID:              tx.OwnerID,
		Items:                tx.Items,
		Pricing:              tx.Pricing,
		PaymentTransactionID: tx.ID,
		PaymentMode:          string(tx.Mode),
		CouponCode:           tx.CouponCode,
		Status:               order.StatusProcessing,
		ShippingAddress:      order.Address{Name: "A Shopper", Line1: "12 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001"},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestCreateOrder_DuplicateTransactionRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tx := seedTransaction(t, repo, "")
	first := orderForTx(tx)
	require.NoError(t, repo.CreateOrder(ctx, first))

	// A second order for the same transaction violates the unique
	// constraint regardless of its fresh order id.
	second := orderForTx(tx)
	err := repo.CreateOrder(ctx, second)
	assert.ErrorIs(t, err, order.ErrDuplicateTransaction)

	existing, err := repo.GetOrderByTransactionID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)

	orders, err := repo.ListOrdersByOwner(ctx, "user1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCreateOrder_RoundtripAndCouponUsage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.CreateCoupon(ctx, &pricing.Coupon{
		Code:              "SAVE10",
		Type:              pricing.CouponPercentage,
		Value:             10,
		MaxDiscountAmount: 100,
		UsageLimit:        5,
		ValidUntil:        time.Now().Add(24 * time.Hour),
	}))

	tx := seedTransaction(t, repo, "SAVE10")
	o := orderForTx(tx)
	require.NoError(t, repo.CreateOrder(ctx, o))

	got, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.PaymentTransactionID, got.PaymentTransactionID)
	assert.Equal(t, o.Pricing, got.Pricing)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, "SAVE10", got.CouponCode)
	assert.Equal(t, "560001", got.ShippingAddress.Pincode)

	// Usage ticks up exactly once, at order commit.
	coupon, err := repo.GetCoupon(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, coupon.UsageCount)
}

func TestTransactionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tx := seedTransaction(t, repo, "")

	got, err := repo.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCreated, got.Status)
	assert.Equal(t, payment.ModeDegraded, got.Mode)
	assert.Equal(t, tx.Pricing.Total, got.Pricing.Total)

	require.NoError(t, repo.UpdateTransactionStatus(ctx, tx.ID, payment.StatusFailed, "Your card was declined."))
	got, err = repo.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, got.Status)
	assert.Equal(t, "Your card was declined.", got.FailureReason)

	_, err = repo.GetTransaction(ctx, uuid.NewString())
	assert.ErrorIs(t, err, payment.ErrTransactionNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tx := seedTransaction(t, repo, "")
	o := orderForTx(tx)
	require.NoError(t, repo.CreateOrder(ctx, o))

	require.NoError(t, repo.UpdateOrderStatus(ctx, o.ID, order.StatusShipped))
	got, err := repo.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, got.Status)

	err = repo.UpdateOrderStatus(ctx, uuid.NewString(), order.StatusShipped)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
