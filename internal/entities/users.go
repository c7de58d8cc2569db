package entities

import "time"

type User struct {
	ID                         uint       `gorm:"primaryKey" json:"id"`
	Name                       string     `gorm:"size:100;not null" json:"name"`
	Email                      string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash               string     `gorm:"size:255;not null" json:"-"`
	EmailConfirmed             bool       `gorm:"not null;default:false" json:"email_confirmed"`
	EmailConfirmationTokenHash string     `gorm:"size:64" json:"-"` // SHA-256 of the emailed token
	RefreshToken               string     `gorm:"size:64;index" json:"-"`
	RefreshTokenExpiresAt      *time.Time `json:"-"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// HasValidRefreshToken reports whether token matches the stored refresh token
// and the stored token has not expired at now.
func (u *User) HasValidRefreshToken(token string, now time.Time) bool {
	if u.RefreshToken == "" || token == "" || u.RefreshToken != token {
		return false
	}
	return u.RefreshTokenExpiresAt != nil && now.Before(*u.RefreshTokenExpiresAt)
}
