package http

import "github.com/mrlokans/bookshare/internal/auth"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database   Pinger
	Accounts   Accounts
	Books      Books
	Comments   Comments
	Categories Categories

	// Authentication
	AuthMiddleware *auth.Middleware

	// Files is set when stored files are served by this process (memory storage).
	Files FileReader

	// Request body limit for book uploads, in bytes
	MaxUploadBytes int64

	// Application info
	Version string
}
