package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
)

// expiryBuffer is how long before expiry a cached token stops being used.
const expiryBuffer = 5 * time.Minute

// TokenResponse represents the OAuth token response from APS.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// CachedToken represents a cached access token with expiration.
type CachedToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

// IsValid checks if the cached token is still usable at now.
func (t *CachedToken) IsValid(now time.Time) bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return now.Add(expiryBuffer).Before(t.ExpiresAt)
}

// GrantError is a token endpoint rejection that retrying cannot fix.
type GrantError struct {
	StatusCode int
	Body       string
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("token refresh rejected (status %d): %s", e.StatusCode, e.Body)
}

// RefreshAccessToken exchanges a refresh token for a new access token at
// authURL using HTTP basic client authentication.
func RefreshAccessToken(ctx context.Context, client *http.Client, authURL, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token is empty")
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(clientID, clientSecret)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, &GrantError{StatusCode: resp.StatusCode, Body: string(body)}
	default:
		return nil, fmt.Errorf("token refresh failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, errors.New("token response carried no access token")
	}

	return &tokenResp, nil
}
