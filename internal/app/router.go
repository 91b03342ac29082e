// internal/app/router.go
package app

import (
	authHandler "leadflow-service/internal/handlers/auth"
	dashboardHandler "leadflow-service/internal/handlers/dashboard"
	leadHandler "leadflow-service/internal/handlers/lead"
	notifyHandler "leadflow-service/internal/handlers/notification"
	userHandler "leadflow-service/internal/handlers/user"
	wsHandler "leadflow-service/internal/handlers/ws"
	"leadflow-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	UserHandler      *userHandler.UserHandler
	LeadHandler      *leadHandler.LeadHandler
	NotifHandler     *notifyHandler.NotificationHandler
	DashboardHandler *dashboardHandler.DashboardHandler
	WSHandler        *wsHandler.WebSocketHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	// Tokens arrive via the query string on upgrade requests.
	r.GET("/ws", h.AuthMiddleware.Auth(), h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Users ====================
	users := api.Group("/users")
	users.Use(h.AuthMiddleware.Auth())
	{
		users.GET("", h.UserHandler.List)
		users.POST("", h.UserHandler.Create)
	}

	// ==================== Leads ====================
	leads := api.Group("/leads")
	leads.Use(h.AuthMiddleware.Auth())
	{
		leads.GET("", h.LeadHandler.List)
		leads.POST("", h.LeadHandler.Create)
		leads.GET("/:id", h.LeadHandler.Get)
		leads.PUT("/:id", h.LeadHandler.Update)

		// Assignment
		leads.POST("/:id/assign-manager", h.LeadHandler.AssignManager)
		leads.POST("/:id/assign-executive", h.LeadHandler.AssignExecutive)
		leads.GET("/:id/history", h.LeadHandler.History)

		// Notes
		leads.GET("/:id/notes", h.LeadHandler.ListNotes)
		leads.POST("/:id/notes", h.LeadHandler.AddNote)
	}

	// ==================== Dashboard ====================
	dashboard := api.Group("/dashboard")
	dashboard.Use(h.AuthMiddleware.Auth())
	{
		dashboard.GET("/stats", h.DashboardHandler.Stats)
	}

	// ==================== Notifications ====================
	notifications := api.Group("/notifications")
	notifications.Use(h.AuthMiddleware.Auth())
	{
		notifications.GET("", h.NotifHandler.List)
		notifications.GET("/count/unread", h.NotifHandler.UnreadCount)
		notifications.PATCH("/:id/read", h.NotifHandler.MarkRead)
	}
}
