package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/landerp/backend/internal/infrastructure/auth"
	"github.com/landerp/backend/internal/infrastructure/logger"
	"github.com/landerp/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler revokes tokens. Tokens themselves are issued by the identity
// provider.
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwtService *auth.JWTService, blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{jwtService: jwtService, blacklist: blacklist}
}

// Me returns the authenticated actor.
// @Summary      Get the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=object}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.Success(c, gin.H{
		"user_id": actor.UserID,
		"name":    actor.Name,
		"role":    actor.Role,
	})
}

// Logout revokes the presented token until it would have expired.
// @Summary      Revoke the presented token
// @Tags         auth
// @Produce      json
// @Success      204 "No Content"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.ID == "" {
		h.Unauthorized(c, "Token has no id to revoke")
		return
	}
	if err := h.blacklist.RevokeToken(c.Request.Context(), claims.ID, claims.RemainingTTL()); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("Token revoked", zap.String("jti", claims.ID))
	h.NoContent(c)
}

// RevokeUserSessions invalidates every token issued to a user so far.
// @Summary      Revoke every session of a user
// @Tags         auth
// @Produce      json
// @Param        id path string true "ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/users/{id}/revoke [post]
func (h *AuthHandler) RevokeUserSessions(c *gin.Context) {
	userID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.blacklist.RevokeSessions(c.Request.Context(), userID.String(), h.jwtService.AccessTokenExpiration()); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("User sessions revoked", zap.String("target_user_id", userID.String()))
	h.NoContent(c)
}
