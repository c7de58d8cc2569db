package dropbox

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const dropboxAuthURL = "https://www.dropbox.com/oauth2/authorize"

// Authorizer runs the PKCE authorization-code flow for a Dropbox app that has
// no client secret. The resulting refresh token is long-lived.
type Authorizer struct {
	appKey     string
	authURL    string
	tokenURL   string
	httpClient *http.Client
}

func NewAuthorizer(appKey string) *Authorizer {
	return &Authorizer{
		appKey:     appKey,
		authURL:    dropboxAuthURL,
		tokenURL:   dropboxTokenURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthURL returns the URL the user opens to grant access, and the code
// verifier that must be passed to Exchange.
func (a *Authorizer) AuthURL() (authURL, codeVerifier string, err error) {
	codeVerifier, err = generateCodeVerifier()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	params := url.Values{}
	params.Set("client_id", a.appKey)
	params.Set("response_type", "code")
	params.Set("code_challenge", generateCodeChallenge(codeVerifier))
	params.Set("code_challenge_method", "S256")
	params.Set("token_access_type", "offline") // Get refresh token

	return a.authURL + "?" + params.Encode(), codeVerifier, nil
}

// Exchange trades an authorization code for access and refresh tokens.
func (a *Authorizer) Exchange(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", a.appKey)
	data.Set("code_verifier", codeVerifier)

	return postTokenForm(ctx, a.httpClient, a.tokenURL, data)
}

// generateCodeVerifier creates a random code verifier for PKCE
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// generateCodeChallenge creates a code challenge from the verifier using S256
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
