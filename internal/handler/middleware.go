package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/linguaflow/auth-service/internal/domain"
	"github.com/linguaflow/auth-service/internal/dto"
	"github.com/linguaflow/auth-service/internal/service"
)

// Context keys set by the auth middleware
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "email"
)

// AuthMiddleware verifies the bearer access token and attaches the resolved
// user to the request context. Every failure kind answers the same generic
// 401 so callers cannot probe which check failed.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		user, err := authService.VerifyAccess(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authentication failed",
			})
			c.Abort()
			return
		}

		setIdentity(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present but
// lets the request through anonymously when it is absent or invalid.
func OptionalAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if ok {
			if user, err := authService.VerifyAccess(c.Request.Context(), token); err == nil {
				setIdentity(c, user)
			}
		}

		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by the middleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}

	user, ok := value.(*domain.User)
	return user, ok
}

// MustCurrentUser returns the authenticated user; only valid behind AuthMiddleware
func MustCurrentUser(c *gin.Context) *domain.User {
	user, ok := CurrentUser(c)
	if !ok {
		panic("handler used without auth middleware")
	}
	return user
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func setIdentity(c *gin.Context, user *domain.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextEmailKey, user.Email)
}
