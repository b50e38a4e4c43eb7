package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maraneea/storefront-backend/pkg/enums"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestRepositoryCreateAndLookup(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), CreateUserDTO{
		Name:         "Siti Rahma",
		Email:        "siti@example.com",
		PasswordHash: "argon2-hash",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, enums.UserRoleCustomer, created.Role, "role defaults to customer")

	byEmail, err := repo.FindByEmail(context.Background(), "siti@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Siti Rahma", byID.Name)
}

func TestRepositoryEmailUnique(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewRepository(db)

	_, err := repo.Create(context.Background(), CreateUserDTO{
		Name:         "Siti Rahma",
		Email:        "siti@example.com",
		PasswordHash: "hash-1",
	})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), CreateUserDTO{
		Name:         "Impostor",
		Email:        "siti@example.com",
		PasswordHash: "hash-2",
	})
	assert.Error(t, err, "duplicate email must violate the unique index")
}

func TestRepositoryUpdatePasswordHash(t *testing.T) {
	db := setupUserTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), CreateUserDTO{
		Name:         "Siti Rahma",
		Email:        "siti@example.com",
		PasswordHash: "old-hash",
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePasswordHash(context.Background(), created.ID, "new-hash"))

	reloaded, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)
	assert.Equal(t, "Siti Rahma", reloaded.Name, "only the hash column may change")
}
