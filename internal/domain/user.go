package domain

import (
	"encoding/json"
	"time"
)

// User represents a user account resolved from a Google identity
type User struct {
	ID          string          `json:"id" db:"id"`
	GoogleID    string          `json:"google_id" db:"google_id"`
	Email       string          `json:"email" db:"email"`
	Name        string          `json:"name" db:"name"`
	AvatarURL   *string         `json:"avatar_url" db:"avatar_url"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	LastLogin   *time.Time      `json:"last_login" db:"last_login"`
	Preferences json.RawMessage `json:"preferences" db:"preferences"`
}
