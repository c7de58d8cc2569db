package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/mrlokans/bookshare/internal/logging"
)

// ErrNotFound is returned when a path does not exist in the store.
var ErrNotFound = errors.New("file not found in storage")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	Name        string
	Path        string
	Size        int64
	ModifiedAt  time.Time
	ID          string // Provider-specific identifier
	ContentHash string // Provider-specific content hash (if available)
}

// Client defines the interface for cloud storage operations
type Client interface {
	// Upload writes content to a file path, replacing any existing file
	Upload(ctx context.Context, path string, content io.Reader) error

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata retrieves file info without downloading content
	GetMetadata(ctx context.Context, path string) (*FileInfo, error)

	// TemporaryLink returns a short-lived URL from which the file can be fetched
	TemporaryLink(ctx context.Context, path string) (string, error)
}

// Linker is the part of Client that resolves download links.
type Linker interface {
	TemporaryLink(ctx context.Context, path string) (string, error)
}

// Deleter is the part of Client that removes files.
type Deleter interface {
	Delete(ctx context.Context, path string) error
}

// ResolveURL returns a temporary link for path, or "" when path is empty or
// the lookup fails. Failures are logged and never returned.
func ResolveURL(ctx context.Context, client Linker, path string) string {
	if path == "" {
		return ""
	}
	link, err := client.TemporaryLink(ctx, path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to resolve storage URL")
		return ""
	}
	return link
}

// DeleteIfExists removes path and treats a missing file as success.
func DeleteIfExists(ctx context.Context, client Deleter, path string) error {
	if path == "" {
		return nil
	}
	err := client.Delete(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
