package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrAssertionInvalid is returned when an external identity assertion fails
// verification. It must never reach the store layer.
var ErrAssertionInvalid = errors.New("identity assertion invalid")

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Profile is the verified identity extracted from an external assertion
type Profile struct {
	GoogleID      string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// Verifier validates an external identity assertion and extracts the profile
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Profile, error)
}

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint
type GoogleVerifier struct {
	clientID   string
	httpClient *http.Client
	endpoint   string
}

// NewGoogleVerifier creates a verifier bound to one OAuth client id
func NewGoogleVerifier(clientID string, client *http.Client) *GoogleVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleVerifier{
		clientID:   clientID,
		httpClient: client,
		endpoint:   googleTokenInfoURL,
	}
}

// NewGoogleVerifierWithEndpoint creates a verifier against a custom endpoint.
// Used by tests to point at an httptest server.
func NewGoogleVerifierWithEndpoint(clientID, endpoint string, client *http.Client) *GoogleVerifier {
	v := NewGoogleVerifier(clientID, client)
	v.endpoint = endpoint
	return v
}

// Verify checks the ID token with Google and enforces audience and expiry
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Profile, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%w: empty id token", ErrAssertionInvalid)
	}

	endpoint := fmt.Sprintf("%s?id_token=%s", v.endpoint, url.QueryEscape(idToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokeninfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo status %d", ErrAssertionInvalid, resp.StatusCode)
	}

	var info struct {
		Sub           string `json:"sub"`
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		Exp           string `json:"exp"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: malformed tokeninfo response", ErrAssertionInvalid)
	}

	if info.Aud != v.clientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrAssertionInvalid)
	}

	exp, err := strconv.ParseInt(info.Exp, 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return nil, fmt.Errorf("%w: assertion expired", ErrAssertionInvalid)
	}

	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrAssertionInvalid)
	}

	return &Profile{
		GoogleID:      info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		EmailVerified: info.EmailVerified == "true",
	}, nil
}
