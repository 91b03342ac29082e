// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"leadflow-service/internal/domain/user"
	"leadflow-service/internal/middleware"
	"leadflow-service/internal/pkg/response"
	authUsecase "leadflow-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login authenticates a user for the role they selected on the portal.
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("username", req.Username),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FromError(c, "login failed", err)
		return
	}

	h.logger.Info("user logged in",
		zap.Int64("user_id", loginResp.User.ID),
		zap.String("role", string(loginResp.User.Role)),
	)

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Logout revokes the current session (requires auth).
func (h *AuthHandler) Logout(c *gin.Context) {
	actor := middleware.MustGetActor(c)
	jti := middleware.MustGetJTI(c)

	if err := h.authService.Logout(c.Request.Context(), actor.ID, jti); err != nil {
		h.logger.Error("logout failed",
			zap.Int64("user_id", actor.ID),
			zap.Error(err),
		)
		response.FromError(c, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.MustGetActor(c)

	profile, err := h.authService.Me(c.Request.Context(), actor.ID)
	if err != nil {
		response.FromError(c, "failed to get profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", profile)
}
