package gigachat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// accessToken is the OAuth response of the GigaChat auth endpoint.
type accessToken struct {
	AccessToken string `json:"access_token"`
	// ExpiresAt is a Unix timestamp in milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

func (t accessToken) expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// fetchToken exchanges the authorization key for a short-lived access token.
func fetchToken(ctx context.Context, httpClient *http.Client, authURL, credentials, scope string) (accessToken, error) {
	form := url.Values{"scope": {scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return accessToken{}, fmt.Errorf("auth: build request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return accessToken{}, fmt.Errorf("auth: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return accessToken{}, fmt.Errorf("auth: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return accessToken{}, fmt.Errorf("auth: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok accessToken
	if err := json.Unmarshal(body, &tok); err != nil {
		return accessToken{}, fmt.Errorf("auth: decode response: %w", err)
	}
	if tok.AccessToken == "" {
		return accessToken{}, fmt.Errorf("auth: response has no access_token")
	}
	return tok, nil
}
