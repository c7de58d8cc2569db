package entities

import "time"

type Book struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"uniqueIndex;size:512;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	FileName    string  `gorm:"size:1024;not null" json:"file_name"`      // Storage path of the PDF
	CoverName   *string `gorm:"size:1024" json:"cover_name,omitempty"` // Storage path of the cover, if any
	UserID      uint    `gorm:"index;not null" json:"user_id"`
	User        User    `json:"user,omitempty"`

	BookCategories []BookCategory `gorm:"constraint:OnDelete:CASCADE" json:"book_categories,omitempty"`
	Likes          []Like         `gorm:"constraint:OnDelete:CASCADE" json:"likes,omitempty"`
	Views          []View         `gorm:"constraint:OnDelete:CASCADE" json:"views,omitempty"`
	Comments       []Comment      `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Downloads      []Download     `gorm:"constraint:OnDelete:CASCADE" json:"downloads,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// BookCategory links a book to one of its categories.
type BookCategory struct {
	BookID     uint     `gorm:"primaryKey" json:"book_id"`
	CategoryID uint     `gorm:"primaryKey" json:"category_id"`
	Category   Category `gorm:"constraint:OnDelete:CASCADE" json:"category"`
}

func (BookCategory) TableName() string {
	return "book_categories"
}

type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_likes_user_book;not null" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_likes_user_book;index;not null" json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// View is one view event. UserID is nil for anonymous views.
type View struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   *uint     `gorm:"index" json:"user_id,omitempty"`
	BookID   uint      `gorm:"index;not null" json:"book_id"`
	ViewedAt time.Time `gorm:"autoCreateTime" json:"viewed_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      User      `json:"user,omitempty"`
	BookID    uint      `gorm:"index;not null" json:"book_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type Download struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	BookID       uint      `gorm:"index;not null" json:"book_id"`
	DownloadedAt time.Time `gorm:"autoCreateTime" json:"downloaded_at"`
}

// CategoryIDs returns the ids of the categories linked to the book.
func (b *Book) CategoryIDs() []uint {
	ids := make([]uint, 0, len(b.BookCategories))
	for _, bc := range b.BookCategories {
		ids = append(ids, bc.CategoryID)
	}
	return ids
}
