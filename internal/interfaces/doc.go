// Package interfaces documents the core abstractions used throughout the application.
//
// Interfaces are declared where they are consumed and satisfied implicitly;
// this package only holds the compile-time checks tying them together.
//
// # Interface Categories
//
// ## Persistence
//
//   - services.Store: repositories plus transactions (internal/services/interfaces.go),
//     implemented by *database.Database
//   - http.Pinger: database health check (internal/http/api.go)
//
// ## External Services
//
//   - storage.Client: file storage (internal/storage/client.go), implemented by
//     the dropbox and memory providers and wrapped by storage.Instrumented
//   - services.Storage: the subset of storage.Client used by books
//   - email.Sender / services.Mailer: outgoing mail, implemented by
//     SendGridSender, LogSender and tasks.QueuedSender
//   - dropbox.TokenSource: static or refreshing Dropbox access tokens
//
// ## Application Services
//
//   - http.Accounts, http.Books, http.Comments, http.Categories: what the
//     controllers need from internal/services
//   - auth.UserChecker: lets the bearer middleware confirm a user still exists
//   - services.Auditor: audit trail, implemented by *audit.Service
//
// ## Background Work
//
//   - tasks.TaskAdder: enqueue tasks, implemented by *tasks.Client
//   - tasks.RefreshTokenCleaner, tasks.AuditEventCleaner: maintenance targets
//
// # Adding a New Storage Provider
//
//  1. Create internal/storage/providers/<name>/ with a Client that implements
//     storage.Client. Upload must overwrite, Delete must return
//     storage.ErrNotFound for missing paths.
//
//  2. Add a check here:
//
//     var _ storage.Client = (*<name>.Client)(nil)
//
//  3. Select it in entrypoint.newStorage.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add it to database.Repositories so it joins transactions.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
