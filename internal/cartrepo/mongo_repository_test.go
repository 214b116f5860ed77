package cartrepo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
)

func setupTestDB(t *testing.T) (*MongoRepository, func()) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.CreateIndexes(ctx))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func testLine(productID, size, color string, qty int) cart.Line {
	return cart.Line{
		ID:        uuid.NewString(),
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: 500,
		Size:      size,
		Color:     color,
	}
}

func TestGet_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	c, err := repo.Get(ctx, "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, c)
}

func TestAddItem_NewCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"

	err := repo.AddItem(ctx, ownerID, testLine("prod-1", "M", "black", 3))
	require.NoError(t, err)

	c, err := repo.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, c.OwnerID)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "prod-1", c.Lines[0].ProductID)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, 3, c.TotalItems)
	assert.Equal(t, cart.Money(1500), c.TotalAmount)
}

func TestAddItem_SameIdentityCoalesces(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"

	err := repo.AddItem(ctx, ownerID, testLine("prod-1", "M", "black", 2))
	require.NoError(t, err)

	// Same (product, size, color) accumulates quantity on the existing line.
	err = repo.AddItem(ctx, ownerID, testLine("prod-1", "M", "black", 5))
	require.NoError(t, err)

	c, err := repo.Get(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 7, c.Lines[0].Quantity)
}

func TestAddItem_DifferentVariantGetsOwnLine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"

	err := repo.AddItem(ctx, ownerID, testLine("prod-1", "M", "black", 1))
	require.NoError(t, err)
	err = repo.AddItem(ctx, ownerID, testLine("prod-1", "L", "black", 1))
	require.NoError(t, err)

	c, err := repo.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, c.Lines, 2)
}

func TestSetQuantity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"
	line := testLine("prod-1", "M", "black", 2)

	require.NoError(t, repo.AddItem(ctx, ownerID, line))

	err := repo.SetQuantity(ctx, ownerID, line.ID, 10)
	require.NoError(t, err)

	c, err := repo.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Lines[0].Quantity)
}

func TestSetQuantity_UnknownLine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"

	require.NoError(t, repo.AddItem(ctx, ownerID, testLine("prod-1", "M", "black", 2)))

	err := repo.SetQuantity(ctx, ownerID, "no-such-line", 4)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"
	line := testLine("prod-1", "M", "black", 2)

	require.NoError(t, repo.AddItem(ctx, ownerID, line))

	err := repo.SetQuantity(ctx, ownerID, line.ID, 0)
	require.NoError(t, err)

	c, err := repo.Get(ctx, ownerID)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestRemoveItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"
	first := testLine("prod-1", "M", "black", 2)
	second := testLine("prod-2", "S", "white", 3)

	require.NoError(t, repo.AddItem(ctx, ownerID, first))
	require.NoError(t, repo.AddItem(ctx, ownerID, second))

	err := repo.RemoveItem(ctx, ownerID, first.ID)
	require.NoError(t, err)

	c, err := repo.Get(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "prod-2", c.Lines[0].ProductID)
}

func TestDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"

	require.NoError(t, repo.AddItem(ctx, ownerID, testLine("prod-1", "M", "black", 2)))

	err := repo.Delete(ctx, ownerID)
	require.NoError(t, err)

	_, err = repo.Get(ctx, ownerID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestUpsert_ReplacesLines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ownerID := "user123"

	require.NoError(t, repo.AddItem(ctx, ownerID, testLine("prod-1", "M", "black", 2)))

	replacement := &cart.Cart{
		OwnerID: ownerID,
		Lines:   []cart.Line{testLine("prod-9", "L", "red", 4)},
	}
	require.NoError(t, repo.Upsert(ctx, replacement))

	c, err := repo.Get(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "prod-9", c.Lines[0].ProductID)
	assert.Equal(t, 4, c.TotalItems)
}
