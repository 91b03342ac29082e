// internal/service/auth/auth_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"leadflow-service/internal/domain/user"
	xerrors "leadflow-service/internal/pkg/errors"
	"leadflow-service/internal/pkg/jwt"
	"leadflow-service/internal/pkg/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// Test Fakes
// ==========================

type fakeUserStore struct {
	byUsername map[string]*user.User
	lastLogins []int64
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int64) (*user.User, error) {
	for _, u := range f.byUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	u, ok := f.byUsername[username]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateLastLogin(ctx context.Context, id int64) error {
	f.lastLogins = append(f.lastLogins, id)
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

func newTestAuthService(t *testing.T, users *fakeUserStore) (*AuthService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:   "test-secret",
		Issuer:   "leadflow-service",
		Audience: "leadflow-portal",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	sessions := session.NewManager(client)
	limiter := session.NewRateLimiter(client, 3, time.Minute)

	return NewAuthService(users, tokens, sessions, limiter, zap.NewNop()), mr
}

func activeUser(id int64, username, password string, role user.Role) *user.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &user.User{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Name:         "Test User",
		IsActive:     true,
	}
}

func loginRequest(username, password string, role user.Role) *user.LoginRequest {
	return &user.LoginRequest{Username: username, Password: password, Role: role}
}

// ==========================
// Login
// ==========================

func TestLogin_Success(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]*user.User{
		"alice": activeUser(1, "alice", "secret123", user.RoleManager),
	}}
	svc, _ := newTestAuthService(t, users)

	resp, err := svc.Login(context.Background(), loginRequest("alice", "secret123", user.RoleManager), "127.0.0.1", "test-agent")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, []int64{1}, users.lastLogins)

	// The token round-trips through validation against the live session.
	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, string(user.RoleManager), claims.Role)
}

func TestLogin_Failures(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]*user.User{
		"alice": activeUser(1, "alice", "secret123", user.RoleManager),
		"bob":   activeUser(2, "bob", "secret123", user.RoleExecutive),
	}}
	users.byUsername["bob"].IsActive = false

	svc, _ := newTestAuthService(t, users)

	tests := []struct {
		name string
		req  *user.LoginRequest
	}{
		{name: "unknown username", req: loginRequest("charlie", "secret123", user.RoleManager)},
		{name: "wrong password", req: loginRequest("alice", "wrong", user.RoleManager)},
		{name: "wrong role selected", req: loginRequest("alice", "secret123", user.RoleAdmin)},
		{name: "deactivated account", req: loginRequest("bob", "secret123", user.RoleExecutive)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req, "127.0.0.1", "test-agent")
			assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]*user.User{
		"alice": activeUser(1, "alice", "secret123", user.RoleManager),
	}}
	svc, _ := newTestAuthService(t, users)

	// Limit is 3 per window; burn them with bad passwords.
	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), loginRequest("alice", "wrong", user.RoleManager), "", "")
		assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	}

	_, err := svc.Login(context.Background(), loginRequest("alice", "secret123", user.RoleManager), "", "")
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)
}

func TestLogin_ResetsCounterOnSuccess(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]*user.User{
		"alice": activeUser(1, "alice", "secret123", user.RoleManager),
	}}
	svc, _ := newTestAuthService(t, users)

	for i := 0; i < 2; i++ {
		_, _ = svc.Login(context.Background(), loginRequest("alice", "wrong", user.RoleManager), "", "")
	}

	_, err := svc.Login(context.Background(), loginRequest("alice", "secret123", user.RoleManager), "", "")
	require.NoError(t, err)

	// The window restarts clean after success.
	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), loginRequest("alice", "wrong", user.RoleManager), "", "")
		assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	}
}

// ==========================
// Sessions
// ==========================

func TestLogout_RevokesSession(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]*user.User{
		"alice": activeUser(1, "alice", "secret123", user.RoleManager),
	}}
	svc, _ := newTestAuthService(t, users)

	resp, err := svc.Login(context.Background(), loginRequest("alice", "secret123", user.RoleManager), "", "")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.UserID, claims.ID))

	// Token is still cryptographically valid but its session is gone.
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeUserStore{byUsername: map[string]*user.User{}})

	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestMe(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]*user.User{
		"alice": activeUser(1, "alice", "secret123", user.RoleManager),
	}}
	svc, _ := newTestAuthService(t, users)

	u, err := svc.Me(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = svc.Me(context.Background(), 99)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
