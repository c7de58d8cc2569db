package http

import (
	"context"

	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/services"
)

// Service interfaces consumed by the controllers. Each is satisfied by the
// matching type in internal/services.

// Accounts handles registration, confirmation and tokens.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.UserResponse, error)
	ConfirmEmail(ctx context.Context, address, token string) error
	Login(ctx context.Context, in services.LoginInput) (*services.TokenResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*services.TokenResponse, error)
	CurrentUser(ctx context.Context, userID uint) (*services.UserResponse, error)
}

// Books manages books and their likes, views and downloads.
type Books interface {
	Create(ctx context.Context, userID uint, in services.BookInput) (*services.BookResponse, error)
	Get(ctx context.Context, bookID uint, viewerID *uint) (*services.BookResponse, error)
	Update(ctx context.Context, userID, bookID uint, in services.BookInput) (*services.BookResponse, error)
	Delete(ctx context.Context, userID, bookID uint) error
	Like(ctx context.Context, userID, bookID uint) error
	Unlike(ctx context.Context, userID, bookID uint) error
	List(ctx context.Context, page database.Page) (*services.PagedResponse[services.BookSummary], error)
	Download(ctx context.Context, userID, bookID uint) (*services.DownloadResponse, error)
}

// Comments manages book comments.
type Comments interface {
	Create(ctx context.Context, userID, bookID uint, text string) (*services.CommentResponse, error)
	Delete(ctx context.Context, userID, commentID uint) error
	List(ctx context.Context, bookID uint, page database.Page) (*services.PagedResponse[services.CommentResponse], error)
}

// Categories lists book categories.
type Categories interface {
	List(ctx context.Context) ([]services.CategoryResponse, error)
}

// Pinger reports database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FileReader serves stored files directly. Only the in-memory storage
// provider implements it.
type FileReader interface {
	Content(path string) ([]byte, bool)
}
