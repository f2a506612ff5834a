package domain

import "time"

// Session represents one issued refresh token and its validity
type Session struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	AccessToken  string    `json:"-" db:"access_token"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`
	IsValid      bool      `json:"is_valid" db:"is_valid"`
}

// IsExpired reports whether the session is past its expiry.
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
