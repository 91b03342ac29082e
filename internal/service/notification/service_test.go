// internal/service/notification/service_test.go
package notification

import (
	"context"
	"testing"

	domain "leadflow-service/internal/domain/notification"
	xerrors "leadflow-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ==========================
// Test Fakes
// ==========================

type fakeStore struct {
	notifications []domain.Notification
	createErr     error
}

func (f *fakeStore) Create(ctx context.Context, n *domain.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = int64(len(f.notifications) + 1)
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeStore) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, id, userID int64) error {
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return xerrors.ErrNotFound
}

type fakePusher struct {
	payloads map[int64][]interface{}
}

func (f *fakePusher) SendToUser(userID int64, payload interface{}) {
	if f.payloads == nil {
		f.payloads = map[int64][]interface{}{}
	}
	f.payloads[userID] = append(f.payloads[userID], payload)
}

// ==========================
// Tests
// ==========================

func TestNotify(t *testing.T) {
	t.Run("persists and pushes", func(t *testing.T) {
		store := &fakeStore{}
		pusher := &fakePusher{}
		svc := NewService(store, pusher, zap.NewNop())

		leadID := int64(7)
		svc.Notify(context.Background(), 10, domain.TypeLeadAssigned, "New Lead Assigned", "You have been assigned lead: Acme", &leadID)

		require.Len(t, store.notifications, 1)
		n := store.notifications[0]
		assert.Equal(t, int64(10), n.UserID)
		assert.Equal(t, domain.TypeLeadAssigned, n.Type)
		assert.False(t, n.IsRead)
		require.NotNil(t, n.RelatedLeadID)
		assert.Equal(t, int64(7), *n.RelatedLeadID)

		assert.Len(t, pusher.payloads[10], 1)
	})

	t.Run("store failure skips the push", func(t *testing.T) {
		store := &fakeStore{createErr: assert.AnError}
		pusher := &fakePusher{}
		svc := NewService(store, pusher, zap.NewNop())

		svc.Notify(context.Background(), 10, domain.TypeLeadReassigned, "Lead Reassigned", "msg", nil)

		assert.Empty(t, pusher.payloads)
	})

	t.Run("nil pusher is tolerated", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewService(store, nil, zap.NewNop())

		svc.Notify(context.Background(), 10, domain.TypeLeadAssigned, "t", "m", nil)
		assert.Len(t, store.notifications, 1)
	})
}

func TestListAndUnreadCount(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, &fakePusher{}, zap.NewNop())

	svc.Notify(context.Background(), 10, domain.TypeLeadAssigned, "a", "m", nil)
	svc.Notify(context.Background(), 10, domain.TypeLeadReassigned, "b", "m", nil)
	svc.Notify(context.Background(), 11, domain.TypeLeadAssigned, "c", "m", nil)

	got, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	count, err := svc.UnreadCount(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMarkRead(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, &fakePusher{}, zap.NewNop())
	ctx := context.Background()

	svc.Notify(ctx, 10, domain.TypeLeadAssigned, "a", "m", nil)

	t.Run("marks own notification", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, 10, 1))

		count, err := svc.UnreadCount(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("idempotent on already-read", func(t *testing.T) {
		assert.NoError(t, svc.MarkRead(ctx, 10, 1))
	})

	t.Run("cannot mark another user's notification", func(t *testing.T) {
		err := svc.MarkRead(ctx, 99, 1)
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}
