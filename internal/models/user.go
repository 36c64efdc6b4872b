// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered member who can author posts.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"` // Stored lowercased
	PasswordHash string    `json:"-"`     // Never serialize the hash
	TOTPSecret   *string   `json:"-"`     // Nullable; set during 2FA enrollment
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Has2FA returns true if the user has completed 2FA enrollment.
// Login for such users requires a TOTP code in addition to the password.
func (u *User) Has2FA() bool {
	return u.TOTPEnabled
}
