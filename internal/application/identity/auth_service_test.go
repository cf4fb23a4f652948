package identity

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zndr1991-lab/GanteParts/internal/domain/identity"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/auth"
	"github.com/zndr1991-lab/GanteParts/internal/infrastructure/config"
)

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[uuid.UUID]*identity.User)}
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == strings.ToLower(email) {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepository) Save(ctx context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

var _ identity.UserRepository = (*memoryUserRepository)(nil)

func newTestAuthService() (*AuthService, *memoryUserRepository) {
	users := newMemoryUserRepository()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-long-enough",
		AccessTokenExpiration: time.Hour,
		Issuer:                "ganteparts-test",
	})
	return NewAuthService(users, jwtService, nil), users
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newTestAuthService()

	registered, err := service.Register(context.Background(), RegisterInput{
		Email:    "  Seller@Example.COM ",
		Name:     "Seller",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "seller@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "Bearer", registered.TokenType)

	logged, err := service.Login(context.Background(), LoginInput{
		Email:    "seller@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, logged.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newTestAuthService()

	_, err := service.Register(context.Background(), RegisterInput{
		Email: "seller@example.com", Password: "super-secret",
	})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), RegisterInput{
		Email: "SELLER@example.com", Password: "other-secret",
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMAIL_TAKEN", domainErr.Code)
}

func TestRegisterWeakPassword(t *testing.T) {
	service, _ := newTestAuthService()

	_, err := service.Register(context.Background(), RegisterInput{
		Email: "seller@example.com", Password: "short",
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "WEAK_PASSWORD", domainErr.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	service, _ := newTestAuthService()

	_, err := service.Register(context.Background(), RegisterInput{
		Email: "seller@example.com", Password: "super-secret",
	})
	require.NoError(t, err)

	// Wrong password and unknown email are indistinguishable.
	_, errWrongPass := service.Login(context.Background(), LoginInput{
		Email: "seller@example.com", Password: "nope-nope",
	})
	_, errUnknown := service.Login(context.Background(), LoginInput{
		Email: "ghost@example.com", Password: "nope-nope",
	})

	var wrongPassErr, unknownErr *shared.DomainError
	require.ErrorAs(t, errWrongPass, &wrongPassErr)
	require.ErrorAs(t, errUnknown, &unknownErr)
	assert.Equal(t, wrongPassErr.Code, unknownErr.Code)
	assert.Equal(t, wrongPassErr.Message, unknownErr.Message)
}

func TestProfile(t *testing.T) {
	service, _ := newTestAuthService()

	registered, err := service.Register(context.Background(), RegisterInput{
		Email: "seller@example.com", Name: "Seller", Password: "super-secret",
	})
	require.NoError(t, err)

	view, err := service.Profile(context.Background(), uuid.MustParse(registered.User.ID))
	require.NoError(t, err)
	assert.Equal(t, "Seller", view.Name)

	_, err = service.Profile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
