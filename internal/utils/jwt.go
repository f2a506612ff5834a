package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/linguaflow/auth-service/internal/domain"
)

// Token verification failures. The orchestrator collapses these at the
// boundary; internally they stay distinct.
var (
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrSignatureInvalid  = errors.New("token signature is invalid")
	ErrTokenExpired      = errors.New("token is expired")
	ErrTokenTypeMismatch = errors.New("token type mismatch")
)

// JWTManager manages JWT token operations
type JWTManager struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry, refreshTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:             []byte(secret),
		accessTokenExpiry:  accessTokenExpiry,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// GenerateAccessToken generates a new short-lived access token
func (j *JWTManager) GenerateAccessToken(userID string) (string, error) {
	return j.generate(userID, domain.TokenTypeAccess, j.accessTokenExpiry)
}

// GenerateRefreshToken generates a new long-lived refresh token
func (j *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	return j.generate(userID, domain.TokenTypeRefresh, j.refreshTokenExpiry)
}

func (j *JWTManager) generate(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// Verify parses a token, checks its signature and expiry, and enforces that
// the embedded type tag matches expectedType. Tokens signed with a different
// secret or a non-HMAC algorithm fail with ErrSignatureInvalid.
func (j *JWTManager) Verify(tokenString, expectedType string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
	}

	if !token.Valid {
		return nil, ErrSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != expectedType {
		return nil, fmt.Errorf("%w: expected %s", ErrTokenTypeMismatch, expectedType)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrTokenMalformed)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing exp", ErrTokenMalformed)
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing iat", ErrTokenMalformed)
	}

	tokenClaims := &domain.TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		Exp:       int64(exp),
		Iat:       int64(iat),
	}

	if tokenClaims.IsExpired() {
		return nil, ErrTokenExpired
	}

	return tokenClaims, nil
}

// GetAccessTokenExpiry returns the access token expiry duration in seconds
func (j *JWTManager) GetAccessTokenExpiry() int {
	return int(j.accessTokenExpiry.Seconds())
}

// GetRefreshTokenExpiry returns the refresh token expiry duration
func (j *JWTManager) GetRefreshTokenExpiry() time.Duration {
	return j.refreshTokenExpiry
}
