package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/linguaflow/auth-service/internal/domain"
	"github.com/linguaflow/auth-service/pkg/database"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db *database.Postgres
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.Postgres) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, access_token, refresh_token, created_at, expires_at, last_activity, is_valid`

// Create inserts a new valid session row
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, access_token, refresh_token, created_at, expires_at, last_activity, is_valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
	`

	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastActivity.IsZero() {
		session.LastActivity = now
	}
	session.IsValid = true

	_, err := r.db.DB.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.AccessToken,
		session.RefreshToken,
		session.CreatedAt,
		session.ExpiresAt,
		session.LastActivity,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("session with refresh token already exists: %w", ErrDuplicateSession)
			}
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetActiveByRefreshToken returns a session only while it is valid and
// unexpired. Invalidated or expired rows stay in the table for audit but are
// invisible here.
func (r *sessionRepository) GetActiveByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE refresh_token = $1 AND is_valid = true AND expires_at > NOW()
	`

	session, err := r.scanSession(r.db.DB.QueryRowContext(ctx, query, refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active session not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session by refresh token: %w", err)
	}

	return session, nil
}

// GetActiveByUserID returns all live sessions for a user, most recent activity first
func (r *sessionRepository) GetActiveByUserID(ctx context.Context, userID string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND is_valid = true AND expires_at > NOW()
		ORDER BY last_activity DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by user id: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session := &domain.Session{}
		err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.AccessToken,
			&session.RefreshToken,
			&session.CreatedAt,
			&session.ExpiresAt,
			&session.LastActivity,
			&session.IsValid,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// Invalidate flips is_valid to false only if it is still true, and reports
// whether this call was the one that flipped it. The rotation path uses the
// report to detect a concurrent refresh that already won; logout ignores it.
func (r *sessionRepository) Invalidate(ctx context.Context, refreshToken string) (bool, error) {
	query := `UPDATE sessions SET is_valid = false WHERE refresh_token = $1 AND is_valid = true`

	result, err := r.db.DB.ExecContext(ctx, query, refreshToken)
	if err != nil {
		return false, fmt.Errorf("failed to invalidate session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// InvalidateAllForUser retires every session a user holds
func (r *sessionRepository) InvalidateAllForUser(ctx context.Context, userID string) error {
	query := `UPDATE sessions SET is_valid = false WHERE user_id = $1 AND is_valid = true`

	if _, err := r.db.DB.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to invalidate user sessions: %w", err)
	}

	return nil
}

// Touch updates the last activity timestamp
func (r *sessionRepository) Touch(ctx context.Context, sessionID string) error {
	query := `UPDATE sessions SET last_activity = NOW() WHERE id = $1`

	if _, err := r.db.DB.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

// SweepExpired marks expired-but-still-valid rows invalid. Lookups already
// filter on expiry, so this only bounds audit growth and keeps active-session
// counts honest.
func (r *sessionRepository) SweepExpired(ctx context.Context) (int64, error) {
	query := `UPDATE sessions SET is_valid = false WHERE expires_at < NOW() AND is_valid = true`

	result, err := r.db.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}

// PurgeOlderThan hard-deletes rows past the retention window regardless of validity
func (r *sessionRepository) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	query := `DELETE FROM sessions WHERE created_at < NOW() - ($1 * INTERVAL '1 day')`

	result, err := r.db.DB.ExecContext(ctx, query, days)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old sessions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}

func (r *sessionRepository) scanSession(row *sql.Row) (*domain.Session, error) {
	session := &domain.Session{}
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.AccessToken,
		&session.RefreshToken,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.LastActivity,
		&session.IsValid,
	)
	if err != nil {
		return nil, err
	}

	return session, nil
}
