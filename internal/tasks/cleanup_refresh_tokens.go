package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshare/internal/logging"
)

// RefreshTokenCleaner clears refresh tokens whose expiry has passed.
type RefreshTokenCleaner interface {
	ClearExpiredRefreshTokens(now time.Time) (int64, error)
}

// CleanupRefreshTokensTask clears expired refresh tokens so they can never be
// presented again.
type CleanupRefreshTokensTask struct{}

func (t CleanupRefreshTokensTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_refresh_tokens",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupRefreshTokens clears expired tokens as of now.
func CleanupRefreshTokens(cleaner RefreshTokenCleaner, now time.Time) (int64, error) {
	if cleaner == nil {
		return 0, fmt.Errorf("refresh token cleaner not configured")
	}

	cleared, err := cleaner.ClearExpiredRefreshTokens(now)
	if err != nil {
		return 0, fmt.Errorf("cleanup refresh tokens: %w", err)
	}

	logging.Info().Int64("cleared", cleared).Msg("Cleared expired refresh tokens")
	return cleared, nil
}

func CleanupRefreshTokensProcessor(cleaner RefreshTokenCleaner) backlite.QueueProcessor[CleanupRefreshTokensTask] {
	return func(ctx context.Context, task CleanupRefreshTokensTask) error {
		_, err := CleanupRefreshTokens(cleaner, time.Now())
		return err
	}
}

func NewCleanupRefreshTokensQueue(cleaner RefreshTokenCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupRefreshTokensProcessor(cleaner))
}
