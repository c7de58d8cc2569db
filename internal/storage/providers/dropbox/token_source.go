package dropbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const dropboxTokenURL = "https://api.dropboxapi.com/oauth2/token"

// TokenSource provides access tokens for API calls
type TokenSource interface {
	// Token returns a valid access token, refreshing if necessary
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource provides a fixed access token without refresh capability
type StaticTokenSource struct {
	accessToken string
}

func NewStaticTokenSource(accessToken string) *StaticTokenSource {
	return &StaticTokenSource{accessToken: accessToken}
}

func (s *StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s.accessToken == "" {
		return "", fmt.Errorf("no dropbox access token configured")
	}
	return s.accessToken, nil
}

// RefreshingTokenSource exchanges a long-lived refresh token for short-lived
// access tokens and caches them until shortly before expiry.
type RefreshingTokenSource struct {
	mu sync.Mutex

	appKey       string
	refreshToken string
	tokenURL     string
	httpClient   *http.Client

	accessToken string
	expiresAt   time.Time

	// Margin before expiry to trigger refresh (default: 5 minutes)
	refreshMargin time.Duration
}

func NewRefreshingTokenSource(appKey, refreshToken string) *RefreshingTokenSource {
	return &RefreshingTokenSource{
		appKey:        appKey,
		refreshToken:  refreshToken,
		tokenURL:      dropboxTokenURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		refreshMargin: 5 * time.Minute,
	}
}

// Token returns a valid access token, refreshing if necessary
func (s *RefreshingTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Add(s.refreshMargin).Before(s.expiresAt) {
		return s.accessToken, nil
	}

	resp, err := s.refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = resp.AccessToken
	s.expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return s.accessToken, nil
}

func (s *RefreshingTokenSource) refresh(ctx context.Context) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", s.refreshToken)
	data.Set("client_id", s.appKey)

	return postTokenForm(ctx, s.httpClient, s.tokenURL, data)
}

// TokenResponse is the OAuth2 token endpoint reply.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	AccountID    string `json:"account_id"`
}

func postTokenForm(ctx context.Context, client *http.Client, tokenURL string, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token request rejected: %s - %s", errResp.Error, errResp.ErrorDescription)
		}
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("token response did not include an access token")
	}
	return &tokenResp, nil
}
