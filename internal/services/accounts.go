package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/email"
	"github.com/mrlokans/bookshare/internal/entities"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
	"github.com/mrlokans/bookshare/internal/logging"
	"github.com/mrlokans/bookshare/internal/metrics"
)

// RegisterInput holds a new account's details.
type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
}

// LoginInput holds credentials and the caller details used for rate limiting.
type LoginInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// AccountConfig holds account settings.
type AccountConfig struct {
	BcryptCost int
	PublicURL  string
}

// AccountService handles registration, email confirmation and token issuance.
type AccountService struct {
	store   Store
	tokens  *auth.TokenIssuer
	mailer  Mailer
	auditor Auditor
	limiter *auth.RateLimiter
	cfg     AccountConfig
	now     func() time.Time
}

// NewAccountService creates an AccountService. limiter and auditor may be nil.
func NewAccountService(store Store, tokens *auth.TokenIssuer, mailer Mailer, auditor Auditor, limiter *auth.RateLimiter, cfg AccountConfig) *AccountService {
	return &AccountService{
		store:   store,
		tokens:  tokens,
		mailer:  mailer,
		auditor: auditorOrNop(auditor),
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

func normalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Register creates an unconfirmed account and emails a confirmation link.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*UserResponse, error) {
	name := strings.TrimSpace(in.Name)
	address := normalizeEmail(in.Email)

	var problems []string
	if name == "" {
		problems = append(problems, "Name is required")
	}
	if _, err := mail.ParseAddress(address); err != nil || address == "" {
		problems = append(problems, "A valid email address is required")
	}
	if len(problems) > 0 {
		return nil, apperrors.Request(problems...)
	}

	hash, err := auth.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, apperrors.Requestf("Password must be at least %d characters", auth.MinPasswordLength)
		}
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.Request("Password is too long")
		}
		return nil, unexpected(err)
	}

	token, tokenHash, err := auth.GenerateConfirmationToken()
	if err != nil {
		return nil, unexpected(err)
	}

	user := &entities.User{
		Name:                       name,
		Email:                      address,
		PasswordHash:               hash,
		EmailConfirmationTokenHash: tokenHash,
	}

	err = s.store.Transaction(ctx, func(r *database.Repositories) error {
		exists, err := r.Users.EmailExists(address)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Request("An account with this email already exists")
		}
		if err := r.Users.Create(user); err != nil {
			return err
		}

		// Sent before commit so an account that cannot be confirmed is rolled back.
		link := email.ConfirmationLink(s.cfg.PublicURL, user.Email, token)
		if err := s.mailer.Send(ctx, email.ConfirmationMessage(user.Name, user.Email, link)); err != nil {
			logging.Error().Err(err).Str("email", user.Email).Msg("Failed to send confirmation email")
			return apperrors.Unexpected(fmt.Errorf("send confirmation email: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, unexpected(err)
	}

	s.auditor.LogAccount(user.ID, "register", "Registered account")
	return newUserResponse(user), nil
}

// ConfirmEmail marks the account confirmed when token matches the one emailed.
func (s *AccountService) ConfirmEmail(ctx context.Context, address, token string) error {
	repos := s.store.Repos(ctx)

	user, err := repos.Users.GetByEmail(normalizeEmail(address))
	if err != nil {
		return lookupError(err, "User not found")
	}
	if user.EmailConfirmed {
		return apperrors.Request("Email is already confirmed")
	}
	if token == "" || !auth.TokenMatchesHash(token, user.EmailConfirmationTokenHash) {
		return apperrors.Request("Invalid confirmation token")
	}

	if err := repos.Users.ConfirmEmail(user.ID); err != nil {
		return unexpected(err)
	}

	s.auditor.LogAccount(user.ID, "email_confirm", "Confirmed email address")
	return nil
}

// Login checks credentials and issues an access token and a new refresh token.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	address := normalizeEmail(in.Email)

	if s.limiter != nil {
		if allowed, retryAfter := s.limiter.Allow(in.IP, address); !allowed {
			metrics.RecordLogin("rate_limited")
			return nil, apperrors.RateLimited(retryAfter, "Too many login attempts, try again later")
		}
	}

	repos := s.store.Repos(ctx)
	user, err := repos.Users.GetByEmail(address)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordFailure(0, in, "unknown_email")
		}
		return nil, lookupError(err, "User not found")
	}

	if !user.EmailConfirmed {
		metrics.RecordLogin("unconfirmed")
		return nil, apperrors.Request("Email address has not been confirmed")
	}

	if err := auth.CheckPassword(in.Password, user.PasswordHash); err != nil {
		s.recordFailure(user.ID, in, "bad_password")
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	resp, err := s.issueTokens(repos, user)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		s.limiter.RecordSuccess(in.IP, address)
	}
	metrics.RecordLogin(metrics.OutcomeSuccess)
	s.auditor.LogAuth(user.ID, "login", in.IP, in.UserAgent, true)
	return resp, nil
}

func (s *AccountService) recordFailure(userID uint, in LoginInput, reason string) {
	if s.limiter != nil {
		s.limiter.RecordFailure(in.IP, normalizeEmail(in.Email))
	}
	metrics.RecordLogin(reason)
	s.auditor.LogAuth(userID, "login_failed", in.IP, in.UserAgent, false)
}

// Refresh rotates the refresh token. The access token may be expired but its
// signature must be valid; it identifies the user whose stored refresh token
// must match refreshToken.
func (s *AccountService) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenResponse, error) {
	claims, err := s.tokens.ParseExpiredAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid access token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid access token")
	}

	var resp *TokenResponse
	err = s.store.Transaction(ctx, func(r *database.Repositories) error {
		user, err := r.Users.GetByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Unauthorized("Invalid access token")
			}
			return err
		}

		if !user.HasValidRefreshToken(refreshToken, s.now()) {
			return apperrors.Unauthorized("Invalid or expired refresh token")
		}

		resp, err = s.issueTokens(r, user)
		return err
	})
	if err != nil {
		return nil, unexpected(err)
	}

	s.auditor.LogAuth(userID, "token_refresh", "", "", true)
	return resp, nil
}

func (s *AccountService) issueTokens(r *database.Repositories, user *entities.User) (*TokenResponse, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, unexpected(err)
	}

	refresh, refreshExp := s.tokens.NewRefreshToken()
	if err := r.Users.SetRefreshToken(user.ID, refresh, refreshExp); err != nil {
		return nil, unexpected(err)
	}

	return &TokenResponse{
		AccessToken:            access,
		AccessTokenExpiration:  accessExp,
		RefreshToken:           refresh,
		RefreshTokenExpiration: refreshExp,
	}, nil
}

// CurrentUser returns the account of an authenticated caller.
func (s *AccountService) CurrentUser(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.store.Repos(ctx).Users.GetByID(userID)
	if err != nil {
		return nil, lookupError(err, "User not found")
	}
	return newUserResponse(user), nil
}

// UserExists implements auth.UserChecker.
func (s *AccountService) UserExists(ctx context.Context, userID uint) (bool, error) {
	return s.store.Repos(ctx).Users.Exists(userID)
}
