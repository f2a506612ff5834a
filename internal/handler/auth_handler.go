package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linguaflow/auth-service/internal/dto"
	"github.com/linguaflow/auth-service/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	// Max-Age for the refresh cookie; must cover the refresh token's
	// lifetime, not the access token's
	refreshCookieMaxAge int
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, refreshTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		refreshCookieMaxAge: int(refreshTokenTTL.Seconds()),
	}
}

// GoogleLogin handles Google sign-in
// @Summary Login with Google
// @Description Verify a Google ID token and issue an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.GoogleLoginRequest true "Google login request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "Google ID token is required",
		})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Error:   "Service unavailable",
				Message: "Temporary failure, please retry",
			})
			return
		}
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Failed to authenticate with Google",
		})
		return
	}

	// Refresh token also travels in an httpOnly cookie
	c.SetCookie("refresh_token", response.RefreshToken, h.refreshCookieMaxAge, "/api/v1/auth/refresh", "", true, true)

	c.JSON(http.StatusOK, response)
}

// Refresh handles token rotation
// @Summary Refresh tokens
// @Description Exchange a refresh token for a new access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} dto.RefreshResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken, _ = c.Cookie("refresh_token")
	}
	if refreshToken == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Refresh token is required",
		})
		return
	}

	response, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Error:   "Service unavailable",
				Message: "Temporary failure, please retry",
			})
			return
		}
		// Do not reveal which check failed
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Refresh rejected",
		})
		return
	}

	c.SetCookie("refresh_token", response.RefreshToken, h.refreshCookieMaxAge, "/api/v1/auth/refresh", "", true, true)

	c.JSON(http.StatusOK, response)
}

// Logout handles user logout
// @Summary Logout user
// @Description Invalidate the presented refresh token; always succeeds
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken, _ = c.Cookie("refresh_token")
	}

	_ = h.authService.Logout(c.Request.Context(), refreshToken)

	c.SetCookie("refresh_token", "", -1, "/api/v1/auth/refresh", "", true, true)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Logged out successfully",
	})
}

// Verify reports whether the presented access token is valid
// @Summary Verify access token
// @Description Check the bearer token and return the resolved user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.VerifyResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	user := MustCurrentUser(c)

	c.JSON(http.StatusOK, dto.VerifyResponse{
		Valid: true,
		User: dto.UserInfo{
			ID:       user.ID,
			GoogleID: user.GoogleID,
			Email:    user.Email,
			Name:     user.Name,
			Avatar:   user.AvatarURL,
		},
	})
}

// GetMe returns the current user's profile
// @Summary Get current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := MustCurrentUser(c)

	profile, err := h.authService.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to load user profile",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetSessions lists the current user's active sessions
// @Summary List active sessions
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.SessionInfo
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/sessions [get]
func (h *AuthHandler) GetSessions(c *gin.Context) {
	user := MustCurrentUser(c)

	sessions, err := h.authService.ActiveSessions(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to list sessions",
		})
		return
	}

	c.JSON(http.StatusOK, sessions)
}
