// internal/service/user/user.go
package user

import (
	"context"
	"fmt"

	"leadflow-service/internal/domain/user"
	xerrors "leadflow-service/internal/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Store interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id int64) (*user.User, error)
	List(ctx context.Context, role user.Role) ([]user.User, error)
	ListActiveExecutivesForManager(ctx context.Context, managerID int64) ([]user.User, error)
	LinkExecutive(ctx context.Context, managerID, executiveID int64) error
}

type Service struct {
	users  Store
	logger *zap.Logger
}

func NewService(users Store, logger *zap.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// Create registers a new user under the actor's role rules. Admin may create
// any role; a manager may only create executives, which are bound to that
// manager regardless of what the request says.
func (s *Service) Create(ctx context.Context, actor user.Actor, req *user.CreateUserRequest) (*user.User, error) {
	caps := actor.Role.Can()

	role := req.Role
	managerID := req.ManagerID

	switch {
	case caps.CanCreateAnyUser:
		if !role.Valid() {
			return nil, xerrors.Field("role", "unknown role")
		}
	case caps.CanCreateExecutives:
		role = user.RoleExecutive
		id := actor.ID
		managerID = &id
	default:
		return nil, xerrors.ErrForbidden
	}

	if role != user.RoleExecutive {
		managerID = nil
	} else if managerID != nil {
		mgr, err := s.users.FindByID(ctx, *managerID)
		if err != nil {
			return nil, xerrors.Field("manager_id", "manager not found")
		}
		if mgr.Role != user.RoleManager || !mgr.IsActive {
			return nil, xerrors.Field("manager_id", "not an active manager")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		ManagerID:    managerID,
		IsActive:     true,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if managerID != nil {
		if err := s.users.LinkExecutive(ctx, *managerID, u.ID); err != nil {
			s.logger.Error("failed to link executive to manager",
				zap.Int64("manager_id", *managerID),
				zap.Int64("executive_id", u.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("user created",
		zap.Int64("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.Int64("created_by", actor.ID),
	)

	return u, nil
}

// List returns users visible to the actor: Admin lists any role, a manager
// lists only their own executives, executives have no listing privilege.
func (s *Service) List(ctx context.Context, actor user.Actor, filters *user.ListFilters) ([]user.User, error) {
	caps := actor.Role.Can()

	switch {
	case caps.CanListAllUsers:
		role := user.Role("")
		if filters != nil {
			role = filters.Role
		}
		if role != "" && !role.Valid() {
			return nil, xerrors.Field("role", "unknown role")
		}
		return s.users.List(ctx, role)
	case caps.CanListOwnTeam:
		return s.users.ListActiveExecutivesForManager(ctx, actor.ID)
	default:
		return nil, xerrors.ErrForbidden
	}
}
