// Package comments provides database operations for book comments.
package comments

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

// Create inserts a comment.
func (r *Repository) Create(comment *entities.Comment) error {
	return r.db.Omit("User").Create(comment).Error
}

// GetByID retrieves a comment with its author.
func (r *Repository) GetByID(id uint) (*entities.Comment, error) {
	var comment entities.Comment
	err := r.db.Preload("User").First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Comment{}, id).Error
}

// ListByBook returns a page of a book's comments, newest first, and the total count.
func (r *Repository) ListByBook(bookID uint, limit, offset int) ([]entities.Comment, int64, error) {
	var comments []entities.Comment
	var total int64

	query := r.db.Model(&entities.Comment{}).Where("book_id = ?", bookID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, total, err
}
