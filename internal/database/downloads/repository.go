// Package downloads provides database operations for book download records.
package downloads

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create records that the user downloaded the book.
func (r *Repository) Create(userID, bookID uint) error {
	return r.db.Create(&entities.Download{UserID: userID, BookID: bookID}).Error
}

// CountByBook returns the number of downloads of a book.
func (r *Repository) CountByBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Download{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}
