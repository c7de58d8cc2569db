package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshare/internal/audit"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/database/users"
	"github.com/mrlokans/bookshare/internal/email"
	"github.com/mrlokans/bookshare/internal/http"
	"github.com/mrlokans/bookshare/internal/services"
	"github.com/mrlokans/bookshare/internal/storage"
	"github.com/mrlokans/bookshare/internal/storage/providers/dropbox"
	"github.com/mrlokans/bookshare/internal/storage/providers/memory"
	"github.com/mrlokans/bookshare/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Unit of work
var _ services.Store = (*database.Database)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Storage
// =============================================================================

var _ storage.Client = (*dropbox.Client)(nil)
var _ storage.Client = (*memory.Client)(nil)
var _ storage.Client = (*storage.Instrumented)(nil)
var _ services.Storage = (*storage.Instrumented)(nil)
var _ http.FileReader = (*memory.Client)(nil)

var _ dropbox.TokenSource = (*dropbox.StaticTokenSource)(nil)
var _ dropbox.TokenSource = (*dropbox.RefreshingTokenSource)(nil)

// =============================================================================
// Email
// =============================================================================

var _ email.Sender = (*email.SendGridSender)(nil)
var _ email.Sender = (*email.LogSender)(nil)
var _ email.Sender = (*tasks.QueuedSender)(nil)
var _ services.Mailer = (*tasks.QueuedSender)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.Accounts = (*services.AccountService)(nil)
var _ http.Books = (*services.BookService)(nil)
var _ http.Comments = (*services.CommentService)(nil)
var _ http.Categories = (*services.CategoryService)(nil)
var _ auth.UserChecker = (*services.AccountService)(nil)
var _ services.Auditor = (*audit.Service)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ tasks.TaskAdder = (*tasks.Client)(nil)
var _ tasks.RefreshTokenCleaner = (*users.Repository)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
