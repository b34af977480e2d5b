package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"farmlink/internal/entities"
	"farmlink/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*entities.User{}} }

func (m *memUsers) Create(_ context.Context, u *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return repository.ErrDuplicate
	}
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

const testSecret = "0123456789abcdef"

func TestAuth_RegisterAndLogin(t *testing.T) {
	auth := NewAuthUsecase(newMemUsers(), testSecret)
	ctx := context.Background()

	user, err := auth.Register(ctx, RegisterInput{
		Email: "  Ravi@Example.com ", Password: "secret123", Name: "Ravi", Role: entities.RoleVendor,
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	token, logged, err := auth.Login(ctx, "RAVI@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, entities.RoleVendor, claims["role"])
	assert.Equal(t, "Ravi", claims["name"])
}

func TestAuth_TokenExpiresAfterADay(t *testing.T) {
	auth := NewAuthUsecase(newMemUsers(), testSecret)
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return issued }

	token, err := auth.IssueToken(&entities.User{ID: "u1", Role: entities.RoleWholesaler})
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	exp, err := parsed.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, issued.Add(24*time.Hour).Unix(), exp.Unix())
}

func TestAuth_RegisterRejects(t *testing.T) {
	auth := NewAuthUsecase(newMemUsers(), testSecret)
	ctx := context.Background()

	_, err := auth.Register(ctx, RegisterInput{Email: "a@b.in", Password: "secret123", Role: entities.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = auth.Register(ctx, RegisterInput{Email: "a@b.in", Password: "secret123", Role: entities.RoleWholesaler})
	require.NoError(t, err)
	_, err = auth.Register(ctx, RegisterInput{Email: "A@B.in", Password: "other123", Role: entities.RoleVendor})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuth_LoginFailures(t *testing.T) {
	auth := NewAuthUsecase(newMemUsers(), testSecret)
	ctx := context.Background()
	_, err := auth.Register(ctx, RegisterInput{Email: "w@farm.in", Password: "secret123", Role: entities.RoleWholesaler})
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "w@farm.in", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = auth.Login(ctx, "nobody@farm.in", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_EnsureAdminIsIdempotent(t *testing.T) {
	users := newMemUsers()
	auth := NewAuthUsecase(users, testSecret)
	ctx := context.Background()

	require.NoError(t, auth.EnsureAdmin(ctx, "admin@farm.in", "rootpass"))
	require.NoError(t, auth.EnsureAdmin(ctx, "admin@farm.in", "changed"))

	admin, _ := users.GetByEmail(ctx, "admin@farm.in")
	require.NotNil(t, admin)
	assert.Equal(t, entities.RoleAdmin, admin.Role)

	_, _, err := auth.Login(ctx, "admin@farm.in", "rootpass")
	assert.NoError(t, err)
}
