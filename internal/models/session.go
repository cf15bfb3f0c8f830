package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a stored bearer token. Only the SHA-256 of the token is kept.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
