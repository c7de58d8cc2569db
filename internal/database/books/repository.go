// Package books provides database operations for books and their category links.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetDetailed(123)
package books

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshare/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the book row only; associations are written separately.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Omit(clause.Associations).Create(book).Error
}

// AddCategories links the book to each category.
func (r *Repository) AddCategories(bookID uint, categoryIDs []uint) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]entities.BookCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		links = append(links, entities.BookCategory{BookID: bookID, CategoryID: id})
	}
	return r.db.Create(&links).Error
}

// ReplaceCategories drops the book's existing category links and writes new ones.
func (r *Repository) ReplaceCategories(bookID uint, categoryIDs []uint) error {
	if err := r.db.Where("book_id = ?", bookID).Delete(&entities.BookCategory{}).Error; err != nil {
		return err
	}
	return r.AddCategories(bookID, categoryIDs)
}

// GetByID retrieves a book without its associations.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetDetailed retrieves a book with its owner, categories, likes and views.
func (r *Repository) GetDetailed(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Preload("User").
		Preload("BookCategories.Category").
		Preload("Likes").
		Preload("Views").
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// TitleExists reports whether another book already uses the title.
// Pass excludeID = 0 to check against every book.
func (r *Repository) TitleExists(title string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&entities.Book{}).Where("title = ?", title)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Update saves the book's own columns.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Omit(clause.Associations).Save(book).Error
}

// Delete removes a book. Category links, likes, views, comments and downloads
// are removed by the database through ON DELETE CASCADE.
func (r *Repository) Delete(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// List returns a page of books with their owners, newest first, and the total count.
func (r *Repository) List(limit, offset int) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	if err := r.db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&books).Error
	return books, total, err
}

// Count returns the total number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
