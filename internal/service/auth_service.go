package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linguaflow/auth-service/internal/domain"
	"github.com/linguaflow/auth-service/internal/dto"
	"github.com/linguaflow/auth-service/internal/identity"
	"github.com/linguaflow/auth-service/internal/repository"
	"github.com/linguaflow/auth-service/internal/utils"
	"go.uber.org/zap"
)

// authService implements AuthService interface
type authService struct {
	userRepo         repository.UserRepository
	sessionRepo      repository.SessionRepository
	verifier         identity.Verifier
	jwtManager       *utils.JWTManager
	blacklistService *TokenBlacklistService
	logger           *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	verifier identity.Verifier,
	jwtManager *utils.JWTManager,
	blacklistService *TokenBlacklistService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		verifier:         verifier,
		jwtManager:       jwtManager,
		blacklistService: blacklistService,
		logger:           logger,
	}
}

// Login verifies a Google identity assertion, resolves the local user and
// issues a fresh token pair backed by a new session row.
func (s *authService) Login(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, identity.ErrAssertionInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrIdentityAssertionInvalid, err)
		}
		return nil, fmt.Errorf("failed to verify identity assertion: %w", err)
	}

	user, err := s.userRepo.UpsertByGoogleID(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.String("email", user.Email),
	)

	return &dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         userInfo(user),
	}, nil
}

// Refresh rotates a refresh token. The old session row is invalidated with a
// conditional update before the new pair is persisted, so of two concurrent
// calls presenting the same token exactly one wins; the loser sees the row
// already flipped and fails with ErrRefreshRejected.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	claims, err := s.jwtManager.Verify(refreshToken, domain.TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshRejected, err)
	}

	blacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		// Redis is a fast-path negative cache; Postgres stays authoritative
		s.logger.Warn("blacklist check failed", zap.Error(err))
	} else if blacklisted {
		return nil, ErrRefreshRejected
	}

	session, err := s.sessionRepo.GetActiveByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshRejected
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Presenting the token counts as activity even if rotation fails below
	if err := s.sessionRepo.Touch(ctx, session.ID); err != nil {
		s.logger.Warn("failed to update session activity", zap.Error(err))
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshRejected
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// First writer wins; a concurrent refresh that lost finds the row flipped.
	won, err := s.sessionRepo.Invalidate(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !won {
		return nil, ErrRefreshRejected
	}

	if err := s.blacklistService.AddToken(ctx, refreshToken, s.jwtManager.GetRefreshTokenExpiry()); err != nil {
		s.logger.Warn("failed to blacklist rotated refresh token", zap.Error(err))
	}

	// The retired session's access token may have minutes left on the clock;
	// blacklist it so rotation revokes the whole pair at once
	if err := s.blacklistService.AddToken(ctx, session.AccessToken, s.accessTokenTTL()); err != nil {
		s.logger.Warn("failed to blacklist rotated access token", zap.Error(err))
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("refresh token rotated",
		zap.String("user_id", claims.UserID),
		zap.String("session_id", session.ID),
	)

	return &dto.RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Logout retires the matching session. Advisory cleanup, not a security
// boundary: unknown or already-invalid tokens succeed too.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	// Load the row first so the paired access token can be revoked too
	session, err := s.sessionRepo.GetActiveByRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("logout session lookup failed", zap.Error(err))
	}

	if _, err := s.sessionRepo.Invalidate(ctx, refreshToken); err != nil {
		s.logger.Warn("logout invalidation failed", zap.Error(err))
		return nil
	}

	if err := s.blacklistService.AddToken(ctx, refreshToken, s.jwtManager.GetRefreshTokenExpiry()); err != nil {
		s.logger.Warn("failed to blacklist refresh token on logout", zap.Error(err))
	}

	if session != nil {
		if err := s.blacklistService.AddToken(ctx, session.AccessToken, s.accessTokenTTL()); err != nil {
			s.logger.Warn("failed to blacklist access token on logout", zap.Error(err))
		}
	}

	return nil
}

func (s *authService) accessTokenTTL() time.Duration {
	return time.Duration(s.jwtManager.GetAccessTokenExpiry()) * time.Second
}

// VerifyAccess validates an access token and checks the subject is still an
// active account. Used by the auth middleware on every protected request.
func (s *authService) VerifyAccess(ctx context.Context, accessToken string) (*domain.User, error) {
	blacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, accessToken)
	if err != nil {
		s.logger.Warn("blacklist check failed", zap.Error(err))
	} else if blacklisted {
		return nil, ErrAccessDenied
	}

	claims, err := s.jwtManager.Verify(accessToken, domain.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return user, nil
}

// GetUser gets user profile information
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return userResponse(user), nil
}

// UpdatePreferences replaces the user's preference document
func (s *authService) UpdatePreferences(ctx context.Context, userID string, preferences json.RawMessage) (*dto.UserResponse, error) {
	if !json.Valid(preferences) {
		return nil, fmt.Errorf("preferences must be a valid JSON document")
	}

	user, err := s.userRepo.UpdatePreferences(ctx, userID, preferences)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return userResponse(user), nil
}

// Deactivate disables the account and retires every session it holds, cutting
// off both access verification and refresh immediately.
func (s *authService) Deactivate(ctx context.Context, userID string) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := s.sessionRepo.InvalidateAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("user deactivated", zap.String("user_id", userID))
	return nil
}

// ActiveSessions lists the user's live sessions
func (s *authService) ActiveSessions(ctx context.Context, userID string) ([]*dto.SessionInfo, error) {
	sessions, err := s.sessionRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	infos := make([]*dto.SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, &dto.SessionInfo{
			ID:           session.ID,
			CreatedAt:    session.CreatedAt.Format(time.RFC3339),
			ExpiresAt:    session.ExpiresAt.Format(time.RFC3339),
			LastActivity: session.LastActivity.Format(time.RFC3339),
		})
	}

	return infos, nil
}
