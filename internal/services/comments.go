package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/entities"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
)

const maxCommentLength = 2000

// CommentService manages comments on books.
type CommentService struct {
	store   Store
	auditor Auditor
}

func NewCommentService(store Store, auditor Auditor) *CommentService {
	return &CommentService{store: store, auditor: auditorOrNop(auditor)}
}

// Create adds a comment by userID to a book.
func (s *CommentService) Create(ctx context.Context, userID, bookID uint, text string) (*CommentResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Request("Comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, apperrors.Requestf("Comment must be at most %d characters", maxCommentLength)
	}

	var comment *entities.Comment
	err := s.store.Transaction(ctx, func(r *database.Repositories) error {
		if _, err := r.Books.GetByID(bookID); err != nil {
			return lookupError(err, "Book not found")
		}

		created := &entities.Comment{UserID: userID, BookID: bookID, Text: text}
		if err := r.Comments.Create(created); err != nil {
			return err
		}

		var err error
		comment, err = r.Comments.GetByID(created.ID)
		return err
	})
	if err != nil {
		return nil, unexpected(err)
	}

	s.auditor.LogComment(userID, comment.ID, bookID)
	resp := newCommentResponse(comment)
	return &resp, nil
}

// Delete removes a comment. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, userID, commentID uint) error {
	repos := s.store.Repos(ctx)

	comment, err := repos.Comments.GetByID(commentID)
	if err != nil {
		return lookupError(err, "Comment not found")
	}
	if comment.UserID != userID {
		return apperrors.Unauthorized("Only the author can delete this comment")
	}

	if err := repos.Comments.Delete(comment.ID); err != nil {
		return unexpected(err)
	}

	s.auditor.LogDelete(userID, "comment", comment.ID, truncateText(comment.Text, 50))
	return nil
}

// List returns a page of a book's comments, newest first.
func (s *CommentService) List(ctx context.Context, bookID uint, page database.Page) (*PagedResponse[CommentResponse], error) {
	repos := s.store.Repos(ctx)

	if _, err := repos.Books.GetByID(bookID); err != nil {
		return nil, lookupError(err, "Book not found")
	}

	comments, total, err := repos.Comments.ListByBook(bookID, page.Size, page.Offset())
	if err != nil {
		return nil, unexpected(err)
	}

	items := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, newCommentResponse(&comments[i]))
	}
	return newPagedResponse(items, page, total), nil
}

func truncateText(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "..."
}
