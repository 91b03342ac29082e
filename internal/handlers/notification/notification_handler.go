// internal/handlers/notification/notification_handler.go
package notification

import (
	"net/http"
	"strconv"

	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/response"
	notificationUsecase "leadflow-service/internal/service/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *notificationUsecase.Service
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *notificationUsecase.Service, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List returns the caller's most recent notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	notifications, err := h.notificationService.List(c.Request.Context(), actor.ID)
	if err != nil {
		response.FromError(c, "failed to list notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "notifications retrieved", notifications)
}

// UnreadCount returns how many notifications the caller has not read.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	count, err := h.notificationService.UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		response.FromError(c, "failed to count unread notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "unread count retrieved", gin.H{"unread": count})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), actor.ID, id); err != nil {
		response.FromError(c, "failed to mark notification read", err)
		return
	}

	response.Success(c, http.StatusOK, "notification marked read", nil)
}
