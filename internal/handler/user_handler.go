package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linguaflow/auth-service/internal/dto"
	"github.com/linguaflow/auth-service/internal/service"
)

// UserHandler handles user account requests
type UserHandler struct {
	authService service.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// UpdatePreferences replaces the current user's preference document
// @Summary Update preferences
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.PreferencesRequest true "Preferences request"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me/preferences [put]
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	user := MustCurrentUser(c)

	var req dto.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: "Preferences must be a JSON document",
		})
		return
	}

	profile, err := h.authService.UpdatePreferences(c.Request.Context(), user.ID, req.Preferences)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to update preferences",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Deactivate disables the current user's account and retires all its sessions
// @Summary Deactivate account
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) Deactivate(c *gin.Context) {
	user := MustCurrentUser(c)

	if err := h.authService.Deactivate(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Internal server error",
			Message: "Failed to deactivate account",
		})
		return
	}

	c.SetCookie("refresh_token", "", -1, "/api/v1/auth/refresh", "", true, true)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Account deactivated",
	})
}
