// Package audit records security and content events to the audit trail.
//
// Events are written in the background so request handling never waits on
// the audit table; write failures are logged and dropped.
package audit

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookshare/internal/database/audit"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/logging"
)

const maxTextLength = 500

type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Wait blocks until every queued event has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) record(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			logging.Error().
				Err(err).
				Str("action", event.Action).
				Uint("user_id", event.UserID).
				Msg("Failed to write audit event")
		}
	}()
}

func event(userID uint, kind entities.AuditEventType, action, entityType string, entityID *uint) *entities.AuditEvent {
	return &entities.AuditEvent{
		UserID:     userID,
		EventType:  kind,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     entities.AuditStatusSuccess,
	}
}

// LogAuth records a login or token refresh attempt.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	ev := event(userID, entities.AuditEventAuth, action, "user", nil)
	ev.IPAddress = ipAddr
	ev.UserAgent = clip(userAgent)
	if !success {
		ev.Status = entities.AuditStatusFailed
	}
	s.record(ev)
}

// LogAccount records a change to a user account, such as registration.
func (s *Service) LogAccount(userID uint, action, description string) {
	ev := event(userID, entities.AuditEventAccount, action, "user", &userID)
	ev.Description = clip(description)
	s.record(ev)
}

// LogBook records a book create or update. A non-nil err marks it failed.
func (s *Service) LogBook(userID uint, action string, bookID uint, title string, err error) {
	ev := event(userID, entities.AuditEventBook, action, "book", &bookID)
	ev.Description = clip(title)
	if err != nil {
		ev.Status = entities.AuditStatusFailed
		ev.ErrorMsg = clip(err.Error())
	}
	s.record(ev)
}

func (s *Service) LogComment(userID uint, commentID, bookID uint) {
	ev := event(userID, entities.AuditEventComment, "comment_create", "comment", &commentID)
	ev.Description = fmt.Sprintf("Commented on book %d", bookID)
	s.record(ev)
}

// LogDelete records the removal of a book or comment.
func (s *Service) LogDelete(userID uint, entityType string, entityID uint, entityName string) {
	ev := event(userID, entities.AuditEventDelete, entityType+"_delete", entityType, &entityID)
	ev.Description = clip(fmt.Sprintf("Deleted %s: %s", entityType, entityName))
	s.record(ev)
}

// GetEvents returns a page of events for userID, or for everyone when userID is 0.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// DeleteOldEvents removes events created before olderThan.
func (s *Service) DeleteOldEvents(olderThan time.Time) (int64, error) {
	return s.repo.DeleteOldEvents(olderThan)
}

// clip shortens s to maxTextLength runes, marking the cut with "...".
func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxTextLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxTextLength-3]) + "..."
}
