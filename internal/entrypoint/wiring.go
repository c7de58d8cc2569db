package entrypoint

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/bookshare/internal/audit"
	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/email"
	"github.com/mrlokans/bookshare/internal/metrics"
	"github.com/mrlokans/bookshare/internal/scheduler"
	"github.com/mrlokans/bookshare/internal/storage"
	"github.com/mrlokans/bookshare/internal/storage/providers/dropbox"
	"github.com/mrlokans/bookshare/internal/storage/providers/memory"
	"github.com/mrlokans/bookshare/internal/tasks"
)

// newStorage builds the configured storage provider wrapped with metrics.
// The memory client is also returned so the router can serve its files.
func newStorage(cfg *config.Config) (storage.Client, *memory.Client, error) {
	switch cfg.Storage.Provider {
	case config.StorageProviderMemory:
		client := memory.NewClient(cfg.HTTP.PublicURL)
		return storage.NewInstrumented(client, metrics.ObserveStorage), client, nil

	case config.StorageProviderDropbox:
		var source dropbox.TokenSource
		if cfg.Dropbox.RefreshToken != "" {
			source = dropbox.NewRefreshingTokenSource(cfg.Dropbox.AppKey, cfg.Dropbox.RefreshToken)
		} else {
			source = dropbox.NewStaticTokenSource(cfg.Dropbox.AccessToken)
		}
		client := dropbox.NewClient(source, dropbox.WithRootPath(cfg.Storage.RootPath))
		return storage.NewInstrumented(client, metrics.ObserveStorage), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}

// newEmailSender returns the provider that actually delivers mail.
func newEmailSender(cfg *config.Config) email.Sender {
	if cfg.Email.Provider == config.EmailProviderSendGrid {
		return email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, "")
	}
	return email.NewLogSender()
}

// maintenanceJobs enqueues the cleanup tasks when the queue is available and
// runs them inline otherwise.
func maintenanceJobs(cfg *config.Config, db *database.Database, auditService *audit.Service, taskClient *tasks.Client) []scheduler.Job {
	retention := cfg.Maintenance.AuditRetentionDays

	if taskClient != nil {
		return []scheduler.Job{
			{
				Name: "cleanup_refresh_tokens",
				Run: func(ctx context.Context) error {
					_, err := taskClient.Add(tasks.CleanupRefreshTokensTask{}).Save()
					return err
				},
			},
			{
				Name: "cleanup_audit_events",
				Run: func(ctx context.Context) error {
					_, err := taskClient.Add(tasks.CleanupAuditEventsTask{RetentionDays: retention}).Save()
					return err
				},
			},
		}
	}

	return []scheduler.Job{
		{
			Name: "cleanup_refresh_tokens",
			Run: func(ctx context.Context) error {
				_, err := tasks.CleanupRefreshTokens(db.Repos(ctx).Users, time.Now())
				return err
			},
		},
		{
			Name: "cleanup_audit_events",
			Run: func(ctx context.Context) error {
				_, err := tasks.CleanupAuditEvents(auditService, retention, time.Now())
				return err
			},
		},
	}
}
