package domain

import "time"

// Token type tags embedded in the "type" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims represents the decoded claims of a signed token
type TokenClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"type"`
	Exp       int64  `json:"exp"`
	Iat       int64  `json:"iat"`
}

// TokenPair represents a freshly issued access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// IsExpired checks if the token is expired
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}
