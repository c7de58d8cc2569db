// Package services implements the application use cases: accounts, books,
// likes, views, comments and categories. Services return errors from the
// internal/errors taxonomy and never write HTTP responses themselves.
package services

import (
	"context"
	"io"

	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/email"
)

// Store is the unit of work the services run against.
type Store interface {
	Repos(ctx context.Context) *database.Repositories
	Transaction(ctx context.Context, fn func(r *database.Repositories) error) error
}

// Storage holds book files and covers.
type Storage interface {
	Upload(ctx context.Context, path string, content io.Reader) error
	Delete(ctx context.Context, path string) error
	TemporaryLink(ctx context.Context, path string) (string, error)
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg email.Message) error
}

// Auditor records events to the audit trail without blocking the caller.
type Auditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
	LogAccount(userID uint, action, description string)
	LogBook(userID uint, action string, bookID uint, title string, err error)
	LogComment(userID uint, commentID, bookID uint)
	LogDelete(userID uint, entityType string, entityID uint, entityName string)
}

type nopAuditor struct{}

func (nopAuditor) LogAuth(uint, string, string, string, bool) {}
func (nopAuditor) LogAccount(uint, string, string) {}
func (nopAuditor) LogBook(uint, string, uint, string, error) {}
func (nopAuditor) LogComment(uint, uint, uint) {}
func (nopAuditor) LogDelete(uint, string, uint, string) {}

func auditorOrNop(a Auditor) Auditor {
	if a == nil {
		return nopAuditor{}
	}
	return a
}
