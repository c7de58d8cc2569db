package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/mrlokans/bookshare/internal/errors"
)

// lookupError converts a repository lookup failure into a domain error,
// reporting a missing record as NotFound with msg.
func lookupError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(msg)
	}
	return unexpected(err)
}

// unexpected wraps err unless it is already a domain error.
func unexpected(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.Unexpected(err)
}
