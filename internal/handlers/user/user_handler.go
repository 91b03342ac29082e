// internal/handlers/user/user_handler.go
package user

import (
	"net/http"

	"leadflow-service/internal/domain/user"
	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/response"
	userUsecase "leadflow-service/internal/service/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *userUsecase.Service
	logger      *zap.Logger
}

func NewUserHandler(userService *userUsecase.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Create creates a user. Admins may create any role; managers may only
// create executives on their own team.
func (h *UserHandler) Create(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var req user.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.userService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.logger.Warn("user creation failed",
			zap.Int64("actor_id", actor.ID),
			zap.String("username", req.Username),
			zap.Error(err),
		)
		response.FromError(c, "failed to create user", err)
		return
	}

	response.Success(c, http.StatusCreated, "user created", created)
}

// List returns users visible to the caller. Admins see everyone and may
// filter by role; managers see their own executives.
func (h *UserHandler) List(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	var filters user.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	users, err := h.userService.List(c.Request.Context(), actor, &filters)
	if err != nil {
		response.FromError(c, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, "users retrieved", users)
}
