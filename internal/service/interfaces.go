package service

import (
	"context"
	"encoding/json"

	"github.com/linguaflow/auth-service/internal/domain"
	"github.com/linguaflow/auth-service/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Login(ctx context.Context, idToken string) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyAccess(ctx context.Context, accessToken string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdatePreferences(ctx context.Context, userID string, preferences json.RawMessage) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, userID string) error
	ActiveSessions(ctx context.Context, userID string) ([]*dto.SessionInfo, error)
}
