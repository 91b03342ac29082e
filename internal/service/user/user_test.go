// internal/service/user/user_test.go
package user

import (
	"context"
	"testing"

	"leadflow-service/internal/domain/user"
	xerrors "leadflow-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// Test Fakes
// ==========================

type fakeStore struct {
	byID    map[int64]*user.User
	created []*user.User
	links   [][2]int64
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[int64]*user.User{}}
}

func (f *fakeStore) Create(ctx context.Context, u *user.User) error {
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	f.created = append(f.created, u)
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) List(ctx context.Context, role user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.byID {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveExecutivesForManager(ctx context.Context, managerID int64) ([]user.User, error) {
	var out []user.User
	for _, pair := range f.links {
		if pair[0] == managerID {
			if u, ok := f.byID[pair[1]]; ok && u.IsActive {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) LinkExecutive(ctx context.Context, managerID, executiveID int64) error {
	f.links = append(f.links, [2]int64{managerID, executiveID})
	return nil
}

// ==========================
// Test Helper Functions
// ==========================

func seedManager(store *fakeStore, active bool) *user.User {
	m := &user.User{Username: "mgr", Role: user.RoleManager, IsActive: active}
	store.Create(context.Background(), m)
	return m
}

func createRequest(role user.Role, managerID *int64) *user.CreateUserRequest {
	return &user.CreateUserRequest{
		Username:  "newuser",
		Password:  "secret123",
		Role:      role,
		Name:      "New User",
		Email:     "new@leadflow.local",
		Mobile:    "5551234567",
		ManagerID: managerID,
	}
}

var (
	adminActor = user.Actor{ID: 1, Role: user.RoleAdmin}
	execActor  = user.Actor{ID: 10, Role: user.RoleExecutive}
)

// ==========================
// Create
// ==========================

func TestCreate_Admin(t *testing.T) {
	t.Run("creates any role", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, zap.NewNop())

		u, err := svc.Create(context.Background(), adminActor, createRequest(user.RoleManager, nil))
		require.NoError(t, err)
		assert.Equal(t, user.RoleManager, u.Role)
		assert.True(t, u.IsActive)
		// Non-executives never carry a manager binding.
		assert.Nil(t, u.ManagerID)
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		store := newFakeStore()
		svc := NewService(store, zap.NewNop())

		u, err := svc.Create(context.Background(), adminActor, createRequest(user.RoleExecutive, nil))
		require.NoError(t, err)
		assert.NotEqual(t, "secret123", u.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")))
	})

	t.Run("executive with manager gets linked", func(t *testing.T) {
		store := newFakeStore()
		mgr := seedManager(store, true)
		svc := NewService(store, zap.NewNop())

		u, err := svc.Create(context.Background(), adminActor, createRequest(user.RoleExecutive, &mgr.ID))
		require.NoError(t, err)
		require.NotNil(t, u.ManagerID)
		assert.Equal(t, mgr.ID, *u.ManagerID)
		require.Len(t, store.links, 1)
		assert.Equal(t, [2]int64{mgr.ID, u.ID}, store.links[0])
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc := NewService(newFakeStore(), zap.NewNop())

		_, err := svc.Create(context.Background(), adminActor, createRequest("SUPERVISOR", nil))
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("rejects missing manager", func(t *testing.T) {
		svc := NewService(newFakeStore(), zap.NewNop())
		missing := int64(99)

		_, err := svc.Create(context.Background(), adminActor, createRequest(user.RoleExecutive, &missing))
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("rejects inactive manager", func(t *testing.T) {
		store := newFakeStore()
		mgr := seedManager(store, false)
		svc := NewService(store, zap.NewNop())

		_, err := svc.Create(context.Background(), adminActor, createRequest(user.RoleExecutive, &mgr.ID))
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})
}

func TestCreate_Manager(t *testing.T) {
	store := newFakeStore()
	mgr := seedManager(store, true)
	svc := NewService(store, zap.NewNop())
	mgrActor := user.Actor{ID: mgr.ID, Role: user.RoleManager}

	t.Run("forces executive role onto own team", func(t *testing.T) {
		// Request asks for an admin under another manager; both are overridden.
		other := int64(42)
		u, err := svc.Create(context.Background(), mgrActor, createRequest(user.RoleAdmin, &other))
		require.NoError(t, err)

		assert.Equal(t, user.RoleExecutive, u.Role)
		require.NotNil(t, u.ManagerID)
		assert.Equal(t, mgr.ID, *u.ManagerID)
	})
}

func TestCreate_ExecutiveForbidden(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())

	_, err := svc.Create(context.Background(), execActor, createRequest(user.RoleExecutive, nil))
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

// ==========================
// List
// ==========================

func TestList(t *testing.T) {
	store := newFakeStore()
	mgr := seedManager(store, true)
	exec := &user.User{Username: "e1", Role: user.RoleExecutive, IsActive: true}
	store.Create(context.Background(), exec)
	store.LinkExecutive(context.Background(), mgr.ID, exec.ID)

	svc := NewService(store, zap.NewNop())

	t.Run("admin lists everyone", func(t *testing.T) {
		got, err := svc.List(context.Background(), adminActor, nil)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("admin filters by role", func(t *testing.T) {
		got, err := svc.List(context.Background(), adminActor, &user.ListFilters{Role: user.RoleManager})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, user.RoleManager, got[0].Role)
	})

	t.Run("admin rejects unknown role filter", func(t *testing.T) {
		_, err := svc.List(context.Background(), adminActor, &user.ListFilters{Role: "BOGUS"})
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("manager lists own team only", func(t *testing.T) {
		got, err := svc.List(context.Background(), user.Actor{ID: mgr.ID, Role: user.RoleManager}, nil)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, exec.ID, got[0].ID)
	})

	t.Run("executive forbidden", func(t *testing.T) {
		_, err := svc.List(context.Background(), execActor, nil)
		assert.ErrorIs(t, err, xerrors.ErrForbidden)
	})
}
