// internal/service/auth/auth.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow-service/internal/domain/user"
	xerrors "leadflow-service/internal/pkg/errors"
	"leadflow-service/internal/pkg/jwt"
	"leadflow-service/internal/pkg/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
}

type AuthService struct {
	users    UserStore
	tokens   *jwt.Manager
	sessions *session.Manager
	limiter  *session.RateLimiter
	logger   *zap.Logger
}

func NewAuthService(users UserStore, tokens *jwt.Manager, sessions *session.Manager, limiter *session.RateLimiter, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		limiter:  limiter,
		logger:   logger,
	}
}

// Login verifies credentials against the requested role and opens a session.
// Credential, role and active-flag failures all collapse into ErrUnauthorized
// so the response does not reveal which check failed.
func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest, ip, userAgent string) (*user.LoginResponse, error) {
	allowed, err := s.limiter.Allow(ctx, req.Username)
	if err != nil {
		s.logger.Warn("rate limiter unavailable, allowing attempt", zap.Error(err))
	} else if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	if u.Role != req.Role || !u.IsActive {
		return nil, xerrors.ErrUnauthorized
	}

	token, jti, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	err = s.sessions.Create(ctx, &session.SessionData{
		JTI:            jti,
		UserID:         u.ID,
		Role:           string(u.Role),
		IPAddress:      ip,
		UserAgent:      userAgent,
		LoginAt:        now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.tokens.TTL()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID); err != nil {
		s.logger.Warn("failed to update last login", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	if err := s.limiter.Reset(ctx, req.Username); err != nil {
		s.logger.Warn("failed to reset login counter", zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", u.ID),
		zap.String("role", string(u.Role)),
	)

	return &user.LoginResponse{Token: token, User: u}, nil
}

// ValidateToken checks the token signature and that its session is still
// alive in Redis (i.e. not logged out).
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	if _, err := s.sessions.Get(ctx, claims.UserID, claims.ID); err != nil {
		return nil, xerrors.ErrSessionExpired
	}
	return claims, nil
}

// Logout revokes the session behind the presented token.
func (s *AuthService) Logout(ctx context.Context, userID int64, jti string) error {
	return s.sessions.Delete(ctx, userID, jti)
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID int64) (*user.User, error) {
	return s.users.FindByID(ctx, userID)
}
