package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/email"
	"github.com/mrlokans/bookshare/internal/entities"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
)

func register(t *testing.T, env *testEnv, name, address string) *UserResponse {
	t.Helper()
	user, err := env.accounts.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    address,
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func TestAccountService_Register(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	user := register(t, env, "Ann", "Ann@Example.com")
	assert.Equal(t, "ann@example.com", user.Email)
	assert.False(t, user.EmailConfirmed)

	require.Len(t, env.mailer.sent, 1)
	msg := env.mailer.sent[0]
	assert.Equal(t, "ann@example.com", msg.To)
	assert.Contains(t, msg.Text, "http://api.test/api/users/confirm/email?")

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.accounts.Register(ctx, RegisterInput{Name: "Other", Email: "ann@example.com", Password: "password123"})
		assert.True(t, errors.Is(err, apperrors.ErrRequest))
	})

	t.Run("short password", func(t *testing.T) {
		_, err := env.accounts.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "short"})
		assert.True(t, errors.Is(err, apperrors.ErrRequest))
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := env.accounts.Register(ctx, RegisterInput{Name: "Bob", Email: "not-an-email", Password: "password123"})
		assert.True(t, errors.Is(err, apperrors.ErrRequest))
	})
}

func TestAccountService_ConfirmEmail(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	register(t, env, "Ann", "ann@example.com")
	token := env.mailer.confirmationToken(t)

	t.Run("unknown email", func(t *testing.T) {
		err := env.accounts.ConfirmEmail(ctx, "nobody@example.com", token)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("wrong token", func(t *testing.T) {
		err := env.accounts.ConfirmEmail(ctx, "ann@example.com", "nope")
		assert.True(t, errors.Is(err, apperrors.ErrRequest))
	})

	t.Run("valid token", func(t *testing.T) {
		require.NoError(t, env.accounts.ConfirmEmail(ctx, "ann@example.com", token))
	})

	t.Run("already confirmed", func(t *testing.T) {
		err := env.accounts.ConfirmEmail(ctx, "ann@example.com", token)
		assert.True(t, errors.Is(err, apperrors.ErrRequest))
	})
}

func TestAccountService_Login(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	register(t, env, "Ann", "ann@example.com")

	t.Run("unconfirmed email", func(t *testing.T) {
		_, err := env.accounts.Login(ctx, LoginInput{Email: "ann@example.com", Password: "password123"})
		assert.True(t, errors.Is(err, apperrors.ErrRequest))
	})

	require.NoError(t, env.accounts.ConfirmEmail(ctx, "ann@example.com", env.mailer.confirmationToken(t)))

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.accounts.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.accounts.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong-password"})
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("success", func(t *testing.T) {
		resp, err := env.accounts.Login(ctx, LoginInput{Email: "ANN@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.True(t, resp.RefreshTokenExpiration.After(time.Now().Add(6*24*time.Hour)))

		claims, err := env.tokens.ParseAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", claims.Email)

		user, err := env.db.Repos(ctx).Users.GetByEmail("ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, resp.RefreshToken, user.RefreshToken)
	})
}

func TestAccountService_Login_RateLimited(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "Ann")

	limiter := auth.NewRateLimiter(auth.RateLimitConfig{MaxAttempts: 2, WindowDuration: time.Minute, LockoutDuration: time.Minute})
	defer limiter.Stop()
	env.accounts.limiter = limiter

	in := LoginInput{Email: "ann@example.com", Password: "wrong-password", IP: "10.0.0.1"}
	for i := 0; i < 2; i++ {
		_, err := env.accounts.Login(ctx, in)
		require.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	}

	in.Password = "password123"
	_, err := env.accounts.Login(ctx, in)
	require.True(t, errors.Is(err, apperrors.ErrTooManyRequests))

	var domainErr *apperrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Greater(t, domainErr.RetryAfter, time.Duration(0))
}

func TestAccountService_Refresh(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "Ann")

	login, err := env.accounts.Login(ctx, LoginInput{Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)

	t.Run("mismatched refresh token leaves stored token unchanged", func(t *testing.T) {
		_, err := env.accounts.Refresh(ctx, login.AccessToken, "not-the-stored-token")
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

		user, err := env.db.Repos(ctx).Users.GetByEmail("ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, login.RefreshToken, user.RefreshToken)
	})

	t.Run("empty refresh token", func(t *testing.T) {
		_, err := env.accounts.Refresh(ctx, login.AccessToken, "")
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("tampered access token", func(t *testing.T) {
		_, err := env.accounts.Refresh(ctx, login.AccessToken+"x", login.RefreshToken)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("rotates tokens", func(t *testing.T) {
		resp, err := env.accounts.Refresh(ctx, login.AccessToken, login.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, login.RefreshToken, resp.RefreshToken)

		// The previous refresh token is no longer accepted.
		_, err = env.accounts.Refresh(ctx, resp.AccessToken, login.RefreshToken)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("expired refresh token", func(t *testing.T) {
		current, err := env.db.Repos(ctx).Users.GetByEmail("ann@example.com")
		require.NoError(t, err)

		env.accounts.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		defer func() { env.accounts.now = time.Now }()

		access, _, err := env.tokens.IssueAccessToken(current)
		require.NoError(t, err)
		_, err = env.accounts.Refresh(ctx, access, current.RefreshToken)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})
}

func TestAccountService_Refresh_AcceptsExpiredAccessToken(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "Ann")

	cfg := testAuthConfig()
	cfg.AccessTokenTTL = -time.Minute
	expiredIssuer := auth.NewTokenIssuer(cfg)

	expired, _, err := expiredIssuer.IssueAccessToken(user)
	require.NoError(t, err)
	_, err = env.tokens.ParseAccessToken(expired)
	require.ErrorIs(t, err, auth.ErrTokenExpired)

	refresh, expiresAt := env.tokens.NewRefreshToken()
	require.NoError(t, env.db.Repos(ctx).Users.SetRefreshToken(user.ID, refresh, expiresAt))

	resp, err := env.accounts.Refresh(ctx, expired, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAccountService_CurrentUserAndExists(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "Ann")

	me, err := env.accounts.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)

	exists, err := env.accounts.UserExists(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = env.accounts.UserExists(ctx, user.ID+100)
	require.NoError(t, err)
	assert.False(t, exists)
}

type failingMailer struct{}

func (failingMailer) Send(ctx context.Context, msg email.Message) error {
	return errors.New("sendgrid: 503 service unavailable")
}

func TestAccountService_Register_FailedEmailLeavesNoAccount(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	input := RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "password123"}

	broken := NewAccountService(env.db, env.tokens, failingMailer{}, nil, nil, AccountConfig{
		BcryptCost: testAuthConfig().BcryptCost,
		PublicURL:  "http://api.test",
	})
	_, err := broken.Register(ctx, input)
	require.True(t, errors.Is(err, apperrors.ErrUnexpected), "got %v", err)
	assert.Equal(t, int64(0), env.countRows(t, &entities.User{}))

	user, err := env.accounts.Register(ctx, input)
	require.NoError(t, err, "the address can register again once email works")
	assert.Equal(t, "ann@example.com", user.Email)
	require.NoError(t, env.accounts.ConfirmEmail(ctx, "ann@example.com", env.mailer.confirmationToken(t)))
}
