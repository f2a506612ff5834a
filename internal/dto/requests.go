package dto

import "encoding/json"

// GoogleLoginRequest carries the Google ID token from the browser client
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// RefreshRequest carries the refresh token presented for rotation
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest carries the refresh token to retire
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PreferencesRequest carries a replacement preference document
type PreferencesRequest struct {
	Preferences json.RawMessage `json:"preferences" binding:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	User         UserInfo `json:"user"`
}

// RefreshResponse represents a token rotation response
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// UserInfo represents user information embedded in auth responses
type UserInfo struct {
	ID       string  `json:"id"`
	GoogleID string  `json:"google_id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
}

// UserResponse represents a full user profile response
type UserResponse struct {
	ID          string          `json:"id"`
	GoogleID    string          `json:"google_id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Avatar      *string         `json:"avatar"`
	CreatedAt   string          `json:"created_at"`
	LastLogin   *string         `json:"last_login"`
	Preferences json.RawMessage `json:"preferences"`
}

// VerifyResponse represents the outcome of an access token check
type VerifyResponse struct {
	Valid bool     `json:"valid"`
	User  UserInfo `json:"user"`
}

// SessionInfo represents one active session in a listing
type SessionInfo struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	ExpiresAt    string `json:"expires_at"`
	LastActivity string `json:"last_activity"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
