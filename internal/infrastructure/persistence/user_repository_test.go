package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zndr1991-lab/GanteParts/internal/domain/identity"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
)

// User rows are simple enough to exercise against a real in-memory database
// instead of statement mocks.
func newSqliteUserRepository(t *testing.T) *GormUserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identity.User{}))
	return NewGormUserRepository(db)
}

func TestUserRepositorySaveAndFind(t *testing.T) {
	repo := newSqliteUserRepository(t)

	user, err := identity.NewUser("seller@example.com", "Seller", "super-secret")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), user))

	byID, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "seller@example.com", byID.Email)

	byEmail, err := repo.FindByEmail(context.Background(), "Seller@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepositoryFindMissing(t *testing.T) {
	repo := newSqliteUserRepository(t)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := newSqliteUserRepository(t)

	first, err := identity.NewUser("seller@example.com", "Seller", "super-secret")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), first))

	second, err := identity.NewUser("seller@example.com", "Other", "other-secret")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(context.Background(), second), shared.ErrAlreadyExists)
}
