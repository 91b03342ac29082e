// internal/pkg/session/manager_test.go
package session

import (
	"context"
	"testing"
	"time"

	xerrors "leadflow-service/internal/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewManager(client), mr
}

func testSession(userID int64, jti string) *SessionData {
	now := time.Now()
	return &SessionData{
		JTI:            jti,
		UserID:         userID,
		Role:           "MANAGER",
		IPAddress:      "127.0.0.1",
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(time.Hour),
	}
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSession(1, "jti-1")))

	got, err := m.Get(ctx, 1, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, "jti-1", got.JTI)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "MANAGER", got.Role)
}

func TestManager_CreateRejectsExpired(t *testing.T) {
	m, _ := newTestManager(t)

	s := testSession(1, "jti-1")
	s.ExpiresAt = time.Now().Add(-time.Minute)

	assert.Error(t, m.Create(context.Background(), s))
}

func TestManager_GetMissing(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get(context.Background(), 1, "never-created")
	assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
}

func TestManager_GetAfterExpiry(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSession(1, "jti-1")))

	mr.FastForward(2 * time.Hour)

	_, err := m.Get(ctx, 1, "jti-1")
	assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
}

func TestManager_Delete(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSession(1, "jti-1")))
	require.NoError(t, m.Delete(ctx, 1, "jti-1"))

	_, err := m.Get(ctx, 1, "jti-1")
	assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, testSession(1, "jti-a")))
	require.NoError(t, m.Create(ctx, testSession(1, "jti-b")))
	require.NoError(t, m.Delete(ctx, 1, "jti-a"))

	// Revoking one device leaves the other alone.
	_, err := m.Get(ctx, 1, "jti-b")
	assert.NoError(t, err)
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	t.Run("allows within limit then blocks", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			ok, err := limiter.Allow(ctx, "alice")
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := limiter.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		ok, err := limiter.Allow(ctx, "bob")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("reset clears the counter", func(t *testing.T) {
		require.NoError(t, limiter.Reset(ctx, "alice"))

		ok, err := limiter.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("window expiry frees the key", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			limiter.Allow(ctx, "carol")
		}
		ok, err := limiter.Allow(ctx, "carol")
		require.NoError(t, err)
		assert.False(t, ok)

		mr.FastForward(2 * time.Minute)

		ok, err = limiter.Allow(ctx, "carol")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
