package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Provider        *string    `json:"provider"`
	ProviderID      *string    `json:"provider_id,omitempty"`
	Avatar          *string    `json:"avatar"`
	PasswordHash    *string    `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasPassword reports whether the user can sign in with a local password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Public returns the identity that may be shown to other users.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PublicUser is the part of a user visible to friends.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// SocialProfile is the identity an OAuth provider reports for an access token.
type SocialProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Avatar     string
}
