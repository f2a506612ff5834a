package repository

import (
	"context"
	"encoding/json"

	"github.com/linguaflow/auth-service/internal/domain"
	"github.com/linguaflow/auth-service/internal/identity"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	UpsertByGoogleID(ctx context.Context, profile *identity.Profile) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePreferences(ctx context.Context, userID string, preferences json.RawMessage) (*domain.User, error)
	Deactivate(ctx context.Context, userID string) error
}

// SessionRepository defines methods for refresh-session bookkeeping
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetActiveByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	GetActiveByUserID(ctx context.Context, userID string) ([]*domain.Session, error)
	Invalidate(ctx context.Context, refreshToken string) (bool, error)
	InvalidateAllForUser(ctx context.Context, userID string) error
	Touch(ctx context.Context, sessionID string) error
	SweepExpired(ctx context.Context) (int64, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}
