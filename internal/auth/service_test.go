package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"wanderly/internal/auth"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*users.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*users.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return apperrors.Conflict("user with this email already exists")
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hashed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			u.Password = hashed
			return nil
		}
	}
	return apperrors.NotFound("user not found")
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok, nil
}

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{
		Secret:           "test-secret",
		JWTExpiresIn:     15 * time.Minute,
		RefreshExpiresIn: time.Hour,
	}}
}

func newService() auth.Service {
	return auth.NewService(newFakeUsers(), testConfig())
}

func register(role string) *auth.RegisterRequest {
	return &auth.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Password:  "secret123",
		Role:      role,
	}
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc := newService()

	resp, err := svc.Register(context.Background(), register(""))
	require.NoError(t, err)
	assert.Equal(t, users.RoleUser, resp.User.Role)
	assert.Equal(t, "Ada Lovelace", resp.User.FullName)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestRegisterVendor(t *testing.T) {
	resp, err := newService().Register(context.Background(), register("vendor"))
	require.NoError(t, err)
	assert.Equal(t, users.RoleVendor, resp.User.Role)
}

func TestRegisterCannotSelfAssignAdmin(t *testing.T) {
	_, err := newService().Register(context.Background(), register("ADMIN"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), register(""))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), register(""))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLogin(t *testing.T) {
	svc := newService()
	_, err := svc.Register(context.Background(), register(""))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &auth.LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &auth.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	resp, err := svc.Login(context.Background(), &auth.LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.TokenAccess, claims.Type)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.Equal(t, users.RoleUser, claims.Role)

	_, err = svc.ValidateToken(resp.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken, "refresh tokens are not access tokens")
}

func TestRefreshTokenRequiresRefreshType(t *testing.T) {
	svc := newService()
	resp, err := svc.Register(context.Background(), register(""))
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	pair, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestChangePassword(t *testing.T) {
	svc := newService()
	resp, err := svc.Register(context.Background(), register(""))
	require.NoError(t, err)
	id := resp.User.ID

	err = svc.ChangePassword(context.Background(), id, &auth.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "another1"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), id, &auth.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1"}))

	_, err = svc.Login(context.Background(), &auth.LoginRequest{Email: "ada@example.com", Password: "another1"})
	assert.NoError(t, err)
}
