// Package categories provides database operations for book categories.
package categories

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

// List returns all categories ordered by name.
func (r *Repository) List() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetByIDs returns the categories whose IDs are in ids.
func (r *Repository) GetByIDs(ids []uint) ([]entities.Category, error) {
	var categories []entities.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetByName returns the category with the given name.
func (r *Repository) GetByName(name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a category.
func (r *Repository) Create(category *entities.Category) error {
	return r.db.Create(category).Error
}
