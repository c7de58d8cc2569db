// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshare/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user with the given ID exists.
func (r *Repository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// EmailExists reports whether the email address is already registered.
func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// SetRefreshToken stores a refresh token and its expiry for the user.
func (r *Repository) SetRefreshToken(userID uint, token string, expiresAt time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"refresh_token":            token,
		"refresh_token_expires_at": expiresAt.UTC(),
	}).Error
}

// ConfirmEmail marks the user's email as confirmed and clears the pending token.
func (r *Repository) ConfirmEmail(userID uint) error {
	return r.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"email_confirmed":               true,
		"email_confirmation_token_hash": "",
	}).Error
}

// ClearExpiredRefreshTokens removes refresh tokens that expired before now.
// Returns the number of users updated.
func (r *Repository) ClearExpiredRefreshTokens(now time.Time) (int64, error) {
	result := r.db.Model(&entities.User{}).
		Where("refresh_token <> '' AND refresh_token_expires_at < ?", now.UTC()).
		Updates(map[string]any{
			"refresh_token":            "",
			"refresh_token_expires_at": nil,
		})
	return result.RowsAffected, result.Error
}
