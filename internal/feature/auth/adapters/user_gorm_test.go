package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketroach/internal/feature/auth/domain/entity"
	"marketroach/internal/feature/auth/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func TestUserGorm_Create(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewUserRepository(db)

	u := &entity.User{Email: "test@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.NotZero(t, u.ID, "ID should be assigned on create")
}

func TestUserGorm_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(context.Background(), &entity.User{Email: "dup@example.com", Password: "hashed"}))

	err := repo.Create(context.Background(), &entity.User{Email: "dup@example.com", Password: "other"})
	assert.ErrorIs(t, err, usecase.ErrEmailAlreadyExists)
}

func TestUserGorm_FindByEmail(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewUserRepository(db)

	seeded := &entity.User{Email: "find@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(context.Background(), seeded))

	found, err := repo.FindByEmail(context.Background(), "find@example.com")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, "find@example.com", found.Email)

	_, err = repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestUserGorm_FindByID(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewUserRepository(db)

	seeded := &entity.User{Email: "byid@example.com", Password: "hashed"}
	require.NoError(t, repo.Create(context.Background(), seeded))

	found, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "byid@example.com", found.Email)

	_, err = repo.FindByID(context.Background(), 9999)
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}
