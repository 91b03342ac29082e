// internal/service/notification/service.go
package notification

import (
	"context"

	"leadflow-service/internal/domain/notification"

	"go.uber.org/zap"
)

type Store interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListByUser(ctx context.Context, userID int64) ([]notification.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

// Pusher fans a payload out to the user's open websocket connections.
type Pusher interface {
	SendToUser(userID int64, payload interface{})
}

type Service struct {
	repo   Store
	hub    Pusher
	logger *zap.Logger
}

func NewService(repo Store, hub Pusher, logger *zap.Logger) *Service {
	return &Service{repo: repo, hub: hub, logger: logger}
}

// Notify persists a notification and pushes it live. Fire-and-forget:
// failures are logged and never propagate to the calling operation.
func (s *Service) Notify(ctx context.Context, userID int64, notifType, title, message string, relatedLeadID *int64) {
	n := &notification.Notification{
		UserID:        userID,
		Type:          notifType,
		Title:         title,
		Message:       message,
		RelatedLeadID: relatedLeadID,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to persist notification",
			zap.Int64("user_id", userID),
			zap.String("type", notifType),
			zap.Error(err))
		return
	}

	if s.hub != nil {
		s.hub.SendToUser(userID, n)
	}
}

func (s *Service) List(ctx context.Context, userID int64) ([]notification.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead flips the notification to read for its owner. Idempotent: a
// second call on an already-read notification succeeds.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}
