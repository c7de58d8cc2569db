// Package views provides database operations for book view events.
package views

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

// Exists reports whether the user has viewed the book before.
func (r *Repository) Exists(userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.View{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// Create records a view. A nil userID records an anonymous view.
func (r *Repository) Create(userID *uint, bookID uint) error {
	return r.db.Create(&entities.View{UserID: userID, BookID: bookID}).Error
}

// CountByBook returns the number of view events for a book.
func (r *Repository) CountByBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.View{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}

// CountByBooks returns view counts keyed by book ID. Books without views are absent.
func (r *Repository) CountByBooks(bookIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(bookIDs))
	if len(bookIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		BookID uint
		Total  int64
	}
	err := r.db.Model(&entities.View{}).
		Select("book_id, COUNT(*) AS total").
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.BookID] = row.Total
	}
	return counts, nil
}
