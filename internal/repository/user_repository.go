package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/linguaflow/auth-service/internal/domain"
	"github.com/linguaflow/auth-service/internal/identity"
	"github.com/linguaflow/auth-service/pkg/database"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, google_id, email, name, avatar_url, is_active, created_at, last_login, preferences`

// UpsertByGoogleID creates the user on first login or touches last_login on a
// repeat login. A single INSERT ... ON CONFLICT keeps concurrent first logins
// for the same Google id from creating two rows.
func (r *userRepository) UpsertByGoogleID(ctx context.Context, profile *identity.Profile) (*domain.User, error) {
	query := `
		INSERT INTO users (id, google_id, email, name, avatar_url, is_active, created_at, last_login, preferences)
		VALUES ($1, $2, $3, $4, $5, true, NOW(), NOW(), '{}')
		ON CONFLICT (google_id) DO UPDATE
		SET last_login = NOW(), name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url
		RETURNING ` + userColumns

	var avatar *string
	if profile.Picture != "" {
		avatar = &profile.Picture
	}

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query,
		uuid.New().String(),
		profile.GoogleID,
		profile.Email,
		profile.Name,
		avatar,
	))

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation on email
				return nil, fmt.Errorf("user with email %s already exists: %w", profile.Email, ErrDuplicateEmail)
			}
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// UpdatePreferences replaces the user's preference document
func (r *userRepository) UpdatePreferences(ctx context.Context, userID string, preferences json.RawMessage) (*domain.User, error) {
	query := `
		UPDATE users
		SET preferences = $2
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, userID, []byte(preferences)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return user, nil
}

// Deactivate marks a user inactive. Users are never hard-deleted.
func (r *userRepository) Deactivate(ctx context.Context, userID string) error {
	query := `UPDATE users SET is_active = false WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return r.requireRow(result, userID)
}

func (r *userRepository) requireRow(result sql.Result, userID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var avatarURL sql.NullString
	var lastLogin sql.NullTime
	var preferences []byte

	err := row.Scan(
		&user.ID,
		&user.GoogleID,
		&user.Email,
		&user.Name,
		&avatarURL,
		&user.IsActive,
		&user.CreatedAt,
		&lastLogin,
		&preferences,
	)
	if err != nil {
		return nil, err
	}

	if avatarURL.Valid {
		user.AvatarURL = &avatarURL.String
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	if len(preferences) > 0 {
		user.Preferences = json.RawMessage(preferences)
	} else {
		user.Preferences = json.RawMessage(`{}`)
	}

	return user, nil
}
