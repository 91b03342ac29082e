// internal/pkg/jwt/jwt_test.go
package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		Secret:   "test-secret",
		Issuer:   "leadflow-service",
		Audience: "leadflow-portal",
		TTL:      ttl,
	})
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(Config{})
	assert.Error(t, err)
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := newTestManager(t, 0)
	assert.Equal(t, 12*time.Hour, m.TTL())
}

func TestGenerateAndVerify(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, jti, err := m.Generate(42, "MANAGER")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, jti)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "leadflow-service", claims.Issuer)
}

func TestGenerate_UniqueJTI(t *testing.T) {
	m := newTestManager(t, time.Hour)

	_, jti1, err := m.Generate(1, "ADMIN")
	require.NoError(t, err)
	_, jti2, err := m.Generate(1, "ADMIN")
	require.NoError(t, err)

	assert.NotEqual(t, jti1, jti2)
}

func TestVerify_Failures(t *testing.T) {
	m := newTestManager(t, time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := m.Verify("garbage")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewManager(Config{
			Secret:   "other-secret",
			Issuer:   "leadflow-service",
			Audience: "leadflow-portal",
		})
		require.NoError(t, err)

		token, _, err := other.Generate(1, "ADMIN")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewManager(Config{
			Secret:   "test-secret",
			Issuer:   "someone-else",
			Audience: "leadflow-portal",
		})
		require.NoError(t, err)

		token, _, err := other.Generate(1, "ADMIN")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		short := newTestManager(t, time.Millisecond)
		token, _, err := short.Generate(1, "ADMIN")
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		_, err = short.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
