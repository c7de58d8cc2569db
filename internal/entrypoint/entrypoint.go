package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/audit"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
	http_controllers "github.com/mrlokans/bookshare/internal/http"
	"github.com/mrlokans/bookshare/internal/logging"
	"github.com/mrlokans/bookshare/internal/scheduler"
	"github.com/mrlokans/bookshare/internal/services"
	"github.com/mrlokans/bookshare/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Dur("timeout", timeout).Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server shutdown")
	}

	// Requests have drained, stop background work
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logging.Info().Msg("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logging.Info().Str("version", version).Msg("Starting Bookshare")

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, files, err := newStorage(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	logging.Info().Str("provider", cfg.Storage.Provider).Msg("Storage initialized")

	auditService := audit.NewService(db.Repos(context.Background()).Audit)

	var mailer services.Mailer = newEmailSender(cfg)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing task client")
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewSendEmailQueue(mailer),
			tasks.NewCleanupRefreshTokensQueue(db.Repos(context.Background()).Users),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		mailer = tasks.NewQueuedSender(taskClient)
	}

	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Maintenance.Enabled {
		maintenance = scheduler.NewMaintenanceScheduler(cfg.Maintenance.Schedule, maintenanceJobs(cfg, db, auditService, taskClient)...)
		if err := maintenance.Start(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to start maintenance scheduler")
		}
	}

	tokens := auth.NewTokenIssuer(cfg.Auth)
	limiter := auth.NewRateLimiter(auth.FromConfig(cfg.Auth))

	accounts := services.NewAccountService(db, tokens, mailer, auditService, limiter, services.AccountConfig{
		BcryptCost: cfg.Auth.BcryptCost,
		PublicURL:  cfg.HTTP.PublicURL,
	})

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Accounts:       accounts,
		Books:          services.NewBookService(db, store, auditService),
		Comments:       services.NewCommentService(db, auditService),
		Categories:     services.NewCategoryService(db),
		AuthMiddleware: auth.NewMiddleware(tokens, accounts),
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		Version:        version,
	}
	if files != nil {
		routerCfg.Files = files
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		limiter.Stop()
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}
