package models

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

func ParseInvitationStatus(s string) (InvitationStatus, bool) {
	switch st := InvitationStatus(s); st {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusDeclined:
		return st, true
	}
	return "", false
}

type WatchInvitation struct {
	ID           uuid.UUID        `json:"id"`
	FriendshipID uuid.UUID        `json:"friendship_id"`
	SenderID     uuid.UUID        `json:"sender_id"`
	TmdbID       int              `json:"tmdb_id"`
	Type         MediaType        `json:"type"`
	Status       InvitationStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// InvitationWithFriend is an invitation as listed for one participant.
type InvitationWithFriend struct {
	WatchInvitation
	Friend PublicUser `json:"friend"`
}

type SendInvitationParams struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	TmdbID      int
	Type        MediaType
}
