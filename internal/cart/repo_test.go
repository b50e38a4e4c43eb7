package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maraneea/storefront-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL REFERENCES carts (id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1 AND quantity <= 99),
  variant_name TEXT,
  variant_value TEXT,
  added_at DATETIME
);`
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

func createCartRow(t *testing.T, repo *Repository, userID uuid.UUID) *models.Cart {
	t.Helper()

	record, err := repo.Create(context.Background(), &models.Cart{
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, record.ID)
	return record
}

func TestRepositoryCreateAndFindByUser(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	record := createCartRow(t, repo, userID)

	size := "M"
	name := "Size"
	items := []models.CartItem{
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2, VariantName: &name, VariantValue: &size, AddedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.ReplaceItems(context.Background(), record, items))

	found, err := repo.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)
	require.NotNil(t, found.Items[0].VariantValue)
	assert.Equal(t, "M", *found.Items[0].VariantValue)
}

func TestRepositoryFindByUserMissing(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryOneCartPerUser(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	createCartRow(t, repo, userID)

	_, err := repo.Create(context.Background(), &models.Cart{UserID: userID, UpdatedAt: time.Now().UTC()})
	assert.Error(t, err, "second cart for the same user must violate the unique index")
}

func TestRepositoryReplaceItemsSwapsRows(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	record := createCartRow(t, repo, uuid.New())

	first := []models.CartItem{
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1, AddedAt: time.Now().UTC()},
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 3, AddedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.ReplaceItems(context.Background(), record, first))

	replacement := []models.CartItem{
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 5, AddedAt: time.Now().UTC()},
	}
	record.UpdatedAt = time.Now().UTC().Add(time.Minute)
	require.NoError(t, repo.ReplaceItems(context.Background(), record, replacement))

	found, err := repo.FindByUser(context.Background(), record.UserID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 5, found.Items[0].Quantity)
	assert.WithinDuration(t, record.UpdatedAt, found.UpdatedAt, time.Second)
}

func TestRepositoryReplaceItemsEmptySet(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	record := createCartRow(t, repo, uuid.New())
	items := []models.CartItem{
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2, AddedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.ReplaceItems(context.Background(), record, items))
	require.NoError(t, repo.ReplaceItems(context.Background(), record, nil))

	found, err := repo.FindByUser(context.Background(), record.UserID)
	require.NoError(t, err)
	assert.Empty(t, found.Items, "clearing persists an empty item set but keeps the cart row")
}

func TestRepositoryDeleteByUserCascades(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)

	record := createCartRow(t, repo, uuid.New())
	items := []models.CartItem{
		{ID: uuid.New(), ProductID: uuid.New(), Quantity: 2, AddedAt: time.Now().UTC()},
	}
	require.NoError(t, repo.ReplaceItems(context.Background(), record, items))

	require.NoError(t, repo.DeleteByUser(context.Background(), record.UserID))

	_, err := repo.FindByUser(context.Background(), record.UserID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", record.ID).Count(&remaining).Error)
	assert.Zero(t, remaining, "items must cascade with the cart row")
}
