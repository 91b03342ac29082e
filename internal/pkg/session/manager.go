// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	xerrors "leadflow-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// Manager stores active sessions in Redis keyed by user id and token jti.
// A missing key means the session was revoked or expired.
type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

// Create stores a new session with a TTL matching the token lifetime.
func (m *Manager) Create(ctx context.Context, s *SessionData) error {
	key := m.sessionKey(s.UserID, s.JTI)

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := m.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// Get retrieves a session and bumps its last-activity timestamp.
func (m *Manager) Get(ctx context.Context, userID int64, jti string) (*SessionData, error) {
	key := m.sessionKey(userID, jti)

	data, err := m.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s SessionData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.LastActivityAt = time.Now()
	if updated, err := json.Marshal(&s); err == nil {
		m.client.Set(ctx, key, updated, redis.KeepTTL)
	}

	return &s, nil
}

// Delete revokes a single session.
func (m *Manager) Delete(ctx context.Context, userID int64, jti string) error {
	return m.client.Del(ctx, m.sessionKey(userID, jti)).Err()
}

func (m *Manager) sessionKey(userID int64, jti string) string {
	return fmt.Sprintf("session:%d:%s", userID, jti)
}
