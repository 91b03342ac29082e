// internal/service/auth/seed.go
package auth

import (
	"context"
	"fmt"

	"leadflow-service/internal/domain/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SeedStore is the wider store surface needed only by the bootstrap path.
type SeedStore interface {
	UserStore
	CountAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *user.User) error
	LinkExecutive(ctx context.Context, managerID, executiveID int64) error
}

type SeedConfig struct {
	AdminUsername string
	AdminPassword string
	AdminName     string
	AdminEmail    string
}

// EnsureSeedUsers creates a demo admin, manager and executive when the users
// table is empty, so a fresh deployment has a working login. No-op otherwise.
func (s *AuthService) EnsureSeedUsers(ctx context.Context, store SeedStore, cfg SeedConfig) error {
	count, err := store.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
		s.logger.Warn("SEED_ADMIN_PASSWORD not set, using default password")
	}

	admin, err := s.seedUser(ctx, store, cfg.AdminUsername, password, user.RoleAdmin, cfg.AdminName, cfg.AdminEmail, "1234567890", nil)
	if err != nil {
		return err
	}

	manager, err := s.seedUser(ctx, store, "manager", "manager123", user.RoleManager, "Manager One", "manager@leadflow.local", "0987654321", nil)
	if err != nil {
		return err
	}

	exec, err := s.seedUser(ctx, store, "exec", "exec123", user.RoleExecutive, "Executive One", "exec@leadflow.local", "1122334455", &manager.ID)
	if err != nil {
		return err
	}
	if err := store.LinkExecutive(ctx, manager.ID, exec.ID); err != nil {
		return fmt.Errorf("failed to link seed executive: %w", err)
	}

	s.logger.Info("seeded demo users",
		zap.Int64("admin_id", admin.ID),
		zap.Int64("manager_id", manager.ID),
		zap.Int64("executive_id", exec.ID),
	)
	return nil
}

func (s *AuthService) seedUser(ctx context.Context, store SeedStore, username, password string, role user.Role, name, email, mobile string, managerID *int64) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	u := &user.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Name:         name,
		Email:        email,
		Mobile:       mobile,
		ManagerID:    managerID,
		IsActive:     true,
	}
	if err := store.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create seed user %s: %w", username, err)
	}
	return u, nil
}
