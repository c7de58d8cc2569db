package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Storage
		Dropbox
		Email
		Tasks
		Maintenance
		Log
	}

	HTTP struct {
		Port           int32
		Host           string
		PublicURL      string // Base URL used in links sent to users
		MaxUploadBytes int64
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		JWTIssuer       string
		AccessTokenTTL  time.Duration
		RefreshTokenTTL time.Duration
		BcryptCost      int

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Storage struct {
		Provider string // "memory" or "dropbox"
		RootPath string // Folder prefix inside the provider
	}
	Dropbox struct {
		AppKey       string
		AccessToken  string // Short-lived token, used as-is when no refresh token is set
		RefreshToken string // Long-lived token obtained with `bookshare dropbox-auth`
	}
	Email struct {
		Provider       string // "log" or "sendgrid"
		SendGridAPIKey string
		FromAddress    string
		FromName       string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Maintenance struct {
		Enabled            bool
		Schedule           string // Cron format: "0 * * * *" = hourly
		AuditRetentionDays int
	}
	Log struct {
		Level  string
		Format string // "json" or "console"
	}
)

// NewConfig reads configuration from the environment. Values from a .env file
// in the working directory are loaded first and never override real variables.
func NewConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("public_url", "http://localhost:8188")
	v.SetDefault("max_upload_bytes", 50<<20)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "bookshare")
	v.SetDefault("access_token_ttl", "15m")
	v.SetDefault("refresh_token_ttl", "168h") // 7 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("storage_provider", StorageProviderMemory)
	v.SetDefault("storage_root_path", "/bookshare")
	v.SetDefault("email_provider", EmailProviderLog)
	v.SetDefault("email_from_address", "no-reply@bookshare.local")
	v.SetDefault("email_from_name", "Bookshare")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("audit_retention_days", 30)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			PublicURL:      v.GetString("PUBLIC_URL"),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:        v.GetString("JWT_SECRET"),
			JWTIssuer:        v.GetString("JWT_ISSUER"),
			AccessTokenTTL:   v.GetDuration("ACCESS_TOKEN_TTL"),
			RefreshTokenTTL:  v.GetDuration("REFRESH_TOKEN_TTL"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Storage: Storage{
			Provider: v.GetString("STORAGE_PROVIDER"),
			RootPath: v.GetString("STORAGE_ROOT_PATH"),
		},
		Dropbox: Dropbox{
			AppKey:       v.GetString("DROPBOX_APP_KEY"),
			AccessToken:  v.GetString("DROPBOX_ACCESS_TOKEN"),
			RefreshToken: v.GetString("DROPBOX_REFRESH_TOKEN"),
		},
		Email: Email{
			Provider:       v.GetString("EMAIL_PROVIDER"),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			FromAddress:    v.GetString("EMAIL_FROM_ADDRESS"),
			FromName:       v.GetString("EMAIL_FROM_NAME"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Enabled:            v.GetBool("MAINTENANCE_ENABLED"),
			Schedule:           v.GetString("MAINTENANCE_SCHEDULE"),
			AuditRetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// Validate reports configuration that would prevent the server from starting.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	switch c.Storage.Provider {
	case StorageProviderMemory:
	case StorageProviderDropbox:
		if c.Dropbox.AccessToken == "" && c.Dropbox.RefreshToken == "" {
			return fmt.Errorf("dropbox storage requires DROPBOX_ACCESS_TOKEN or DROPBOX_REFRESH_TOKEN")
		}
		if c.Dropbox.RefreshToken != "" && c.Dropbox.AppKey == "" {
			return fmt.Errorf("DROPBOX_REFRESH_TOKEN requires DROPBOX_APP_KEY")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	switch c.Email.Provider {
	case EmailProviderLog:
	case EmailProviderSendGrid:
		if c.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid email requires SENDGRID_API_KEY")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	return nil
}
