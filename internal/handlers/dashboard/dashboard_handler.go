// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"

	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/response"
	dashboardUsecase "leadflow-service/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *dashboardUsecase.Service
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *dashboardUsecase.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Stats returns role-scoped dashboard counters for the caller.
func (h *DashboardHandler) Stats(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	stats, err := h.dashboardService.Stats(c.Request.Context(), actor)
	if err != nil {
		h.logger.Error("dashboard stats failed",
			zap.Int64("actor_id", actor.ID),
			zap.Error(err),
		)
		response.FromError(c, "failed to get dashboard stats", err)
		return
	}

	response.Success(c, http.StatusOK, "dashboard stats retrieved", stats)
}
