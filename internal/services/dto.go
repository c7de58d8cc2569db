package services

import (
	"time"

	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/entities"
)

type TokenResponse struct {
	AccessToken            string    `json:"accessToken"`
	AccessTokenExpiration  time.Time `json:"accessTokenExpiration"`
	RefreshToken           string    `json:"refreshToken"`
	RefreshTokenExpiration time.Time `json:"refreshTokenExpiration"`
}

type UserResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"emailConfirmed"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newUserResponse(u *entities.User) *UserResponse {
	return &UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
	}
}

// AuthorResponse is the public view of a user attached to books and comments.
type AuthorResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type BookResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	FileURL     string             `json:"fileUrl"`
	CoverURL    string             `json:"coverUrl"`
	Author      AuthorResponse     `json:"author"`
	Categories  []CategoryResponse `json:"categories"`
	LikesCount  int64              `json:"likesCount"`
	TotalViews  int64              `json:"totalViews"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// BookSummary is one entry in the paginated book list.
type BookSummary struct {
	ID         uint   `json:"id"`
	CoverURL   string `json:"coverUrl"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	TotalViews int64  `json:"totalViews"`
}

type CommentResponse struct {
	ID        uint           `json:"id"`
	BookID    uint           `json:"bookId"`
	Text      string         `json:"text"`
	CreatedAt time.Time      `json:"createdAt"`
	Author    AuthorResponse `json:"author"`
}

func newCommentResponse(c *entities.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		BookID:    c.BookID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
		Author:    AuthorResponse{ID: c.User.ID, Name: c.User.Name},
	}
}

type DownloadResponse struct {
	URL string `json:"url"`
}

// PagedResponse wraps one page of items with pagination metadata.
type PagedResponse[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasPrevious bool  `json:"hasPrevious"`
	HasNext     bool  `json:"hasNext"`
}

func newPagedResponse[T any](items []T, page database.Page, total int64) *PagedResponse[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := page.TotalPages(total)
	return &PagedResponse[T]{
		Items:       items,
		CurrentPage: page.Number,
		PageSize:    page.Size,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasPrevious: page.Number > 1,
		HasNext:     page.Number < totalPages,
	}
}
