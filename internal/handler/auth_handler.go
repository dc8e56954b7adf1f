package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sgsgita/moderation-backend/internal/common"
	"github.com/sgsgita/moderation-backend/internal/middleware"
	"github.com/sgsgita/moderation-backend/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginRequest login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest refresh token request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login handles POST /api/v1/auth/login
// @Summary Moderator login
// @Description Verifies credentials and issues an access/refresh token pair. The access token carries the role claim the engine trusts.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, common.ErrInvalidCredentials) {
		common.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if errors.Is(err, common.ErrAccountDisabled) {
		common.ErrorResponse(c, http.StatusForbidden, "Account disabled", nil)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{
		Data: gin.H{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"expires_in":    result.ExpiresIn,
			"moderator":     result.Moderator,
		},
	})
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Refresh tokens
// @Description Exchanges a valid refresh token for a fresh pair. Role is re-read from the store, so demotions take effect on refresh.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if errors.Is(err, common.ErrUnauthorized) {
		common.ErrorResponse(c, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}
	if errors.Is(err, common.ErrAccountDisabled) {
		common.ErrorResponse(c, http.StatusForbidden, "Account disabled", nil)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Token refresh failed", err)
		return
	}

	c.JSON(http.StatusOK, common.APIResponse{
		Data: gin.H{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"expires_in":    result.ExpiresIn,
		},
	})
}

// Me handles GET /api/v1/auth/me
// @Summary Current moderator
// @Tags auth
// @Produce json
// @Success 200 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	moderator, err := h.service.CurrentModerator(c.Request.Context(), middleware.GetActorID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Moderator not found", nil)
		return
	}

	common.SuccessResponse(c, moderator, nil)
}
