package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mrlokans/bookshare/internal/errors"
)

// Context keys for caller data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyClaims = "auth_claims"
)

// UserChecker confirms that the user behind a token still exists.
type UserChecker interface {
	UserExists(ctx context.Context, userID uint) (bool, error)
}

// Middleware authenticates requests carrying an Authorization bearer token.
// Failures are attached to the gin context with c.Error and rendered by the
// HTTP layer's error handler.
type Middleware struct {
	tokens *TokenIssuer
	users  UserChecker
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(tokens *TokenIssuer, users UserChecker) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireUser rejects requests without a valid token for an existing user.
func (m *Middleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperrors.Unauthorized("Authentication required"))
			return
		}

		if err := m.authenticate(c, token); err != nil {
			abort(c, err)
			return
		}
		c.Next()
	}
}

// OptionalUser identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (m *Middleware) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if ok {
			if err := m.authenticate(c, token); err != nil && apperrors.KindOf(err) == apperrors.KindUnexpected {
				abort(c, err)
				return
			}
		}
		c.Next()
	}
}

func (m *Middleware) authenticate(c *gin.Context, token string) error {
	claims, err := m.tokens.ParseAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.Unauthorized("Access token has expired")
		}
		return apperrors.Unauthorized("Invalid access token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return apperrors.Unauthorized("Invalid access token")
	}

	exists, err := m.users.UserExists(c.Request.Context(), userID)
	if err != nil {
		return apperrors.Unexpected(err)
	}
	if !exists {
		return apperrors.Unauthorized("User no longer exists")
	}

	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyClaims, claims)
	return nil
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (uint, bool) {
	if v, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := v.(uint); ok {
			return id, true
		}
	}
	return 0, false
}

// GetUserIDPtr returns the authenticated user's ID, or nil for anonymous callers.
func GetUserIDPtr(c *gin.Context) *uint {
	if id, ok := GetUserID(c); ok {
		return &id
	}
	return nil
}

// IsAuthenticated returns true if the request carries a valid user token.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := GetUserID(c)
	return ok
}
