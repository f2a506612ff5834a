package service

import (
	"context"
	"fmt"
	"time"

	"github.com/linguaflow/auth-service/internal/domain"
	"github.com/linguaflow/auth-service/internal/dto"
)

// issueSession mints an access/refresh pair and persists the backing session row
func (s *authService) issueSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := &domain.Session{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.jwtManager.GetRefreshTokenExpiry()),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.jwtManager.GetAccessTokenExpiry(),
	}, nil
}

func userInfo(user *domain.User) dto.UserInfo {
	return dto.UserInfo{
		ID:       user.ID,
		GoogleID: user.GoogleID,
		Email:    user.Email,
		Name:     user.Name,
		Avatar:   user.AvatarURL,
	}
}

func userResponse(user *domain.User) *dto.UserResponse {
	response := &dto.UserResponse{
		ID:          user.ID,
		GoogleID:    user.GoogleID,
		Email:       user.Email,
		Name:        user.Name,
		Avatar:      user.AvatarURL,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
		Preferences: user.Preferences,
	}

	if user.LastLogin != nil {
		lastLogin := user.LastLogin.Format(time.RFC3339)
		response.LastLogin = &lastLogin
	}

	return response
}
