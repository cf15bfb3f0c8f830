package models

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

type FriendshipStatus string

const (
	FriendshipStatusPending  FriendshipStatus = "pending"
	FriendshipStatusAccepted FriendshipStatus = "accepted"
	FriendshipStatusDeclined FriendshipStatus = "declined"
	FriendshipStatusBlocked  FriendshipStatus = "blocked"
)

func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipStatusPending, FriendshipStatusAccepted, FriendshipStatusDeclined, FriendshipStatusBlocked:
		return true
	}
	return false
}

// ResponseAction is the recipient's answer to a friend request or watch invitation.
type ResponseAction string

const (
	ActionAccept  ResponseAction = "accept"
	ActionDecline ResponseAction = "decline"
)

func ParseResponseAction(s string) (ResponseAction, bool) {
	switch a := ResponseAction(s); a {
	case ActionAccept, ActionDecline:
		return a, true
	}
	return "", false
}

type Friendship struct {
	ID          uuid.UUID        `json:"id"`
	RequesterID uuid.UUID        `json:"requester_id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Status      FriendshipStatus `json:"status"`
	AcceptedAt  *time.Time       `json:"accepted_at"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Involves reports whether userID is one of the two participants.
func (f *Friendship) Involves(userID uuid.UUID) bool {
	return f.RequesterID == userID || f.RecipientID == userID
}

// OtherParticipant returns the participant that is not userID.
func (f *Friendship) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if f.RequesterID == userID {
		return f.RecipientID
	}
	return f.RequesterID
}

// UserPair is an unordered pair of users stored low-first, so (a, b) and
// (b, a) produce the same key. Ordering matches Postgres uuid comparison.
type UserPair struct {
	Low  uuid.UUID
	High uuid.UUID
}

func NewUserPair(a, b uuid.UUID) UserPair {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return UserPair{Low: a, High: b}
}

type FriendWithUser struct {
	Friendship
	Friend PublicUser `json:"friend"`
}

type FriendRequest struct {
	Friendship
	Requester PublicUser `json:"requester"`
}
