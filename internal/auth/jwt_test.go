package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/entities"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer(config.Auth{
		JWTSecret:       strings.Repeat("s", 32),
		JWTIssuer:       "bookshare-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := testIssuer()
	user := &entities.User{ID: 42, Name: "reader", Email: "reader@example.com"}

	token, expiresAt, err := issuer.IssueAccessToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := issuer.ParseAccessToken(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "bookshare-test", claims.Issuer)
}

func TestTokenIssuer_ExpiredToken(t *testing.T) {
	issuer := testIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.IssueAccessToken(&entities.User{ID: 7})
	require.NoError(t, err)
	issuer.now = time.Now

	_, err = issuer.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	claims, err := issuer.ParseExpiredAccessToken(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	other := NewTokenIssuer(config.Auth{
		JWTSecret:      strings.Repeat("x", 32),
		JWTIssuer:      "bookshare-test",
		AccessTokenTTL: time.Minute,
	})
	token, _, err := other.IssueAccessToken(&entities.User{ID: 1})
	require.NoError(t, err)

	issuer := testIssuer()
	_, err = issuer.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseExpiredAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	_, err := testIssuer().ParseAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_NewRefreshToken(t *testing.T) {
	issuer := testIssuer()

	first, expiresAt := issuer.NewRefreshToken()
	second, _ := issuer.NewRefreshToken()

	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, 5*time.Second)
}

func TestClaims_UserID_Invalid(t *testing.T) {
	c := &Claims{}
	c.Subject = "abc"
	_, err := c.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)

	c.Subject = "0"
	_, err = c.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
