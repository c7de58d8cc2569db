// Package likes provides database operations for book likes.
package likes

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

// Exists reports whether the user has liked the book.
func (r *Repository) Exists(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Like{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// Create records a like.
func (r *Repository) Create(userID, bookID uint) error {
	return r.db.Create(&entities.Like{UserID: userID, BookID: bookID}).Error
}

// Delete removes the user's like of the book. Returns the number of rows removed.
func (r *Repository) Delete(userID, bookID uint) (int64, error) {
	result := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&entities.Like{})
	return result.RowsAffected, result.Error
}

// CountByBook returns the number of likes on a book.
func (r *Repository) CountByBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Like{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}
