// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"

	"leadflow-service/internal/middleware"
	ws "leadflow-service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the portal origin once the frontend domain is fixed
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// HandleConnection upgrades an authenticated request to a websocket and
// attaches the connection to the notification hub. Auth runs in the
// middleware chain, with tokens accepted from the query string since
// browsers cannot set headers on websocket upgrades.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Int64("user_id", actor.ID),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, actor.ID)
	client.Start()

	h.logger.Info("websocket client connected",
		zap.Int64("user_id", actor.ID),
		zap.String("role", string(actor.Role)),
	)
}
