package models

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func ParseMediaType(s string) (MediaType, bool) {
	switch t := MediaType(s); t {
	case MediaTypeMovie, MediaTypeTV:
		return t, true
	}
	return "", false
}

type MediaStatus string

const (
	MediaStatusWatching  MediaStatus = "watching"
	MediaStatusCompleted MediaStatus = "completed"
	MediaStatusPlanned   MediaStatus = "planned"
)

var MediaStatuses = []MediaStatus{MediaStatusWatching, MediaStatusCompleted, MediaStatusPlanned}

func ParseMediaStatus(s string) (MediaStatus, bool) {
	for _, st := range MediaStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// UserMedia is one user's tracking record for a title. There is at most one
// row per (user, tmdb id) regardless of type.
type UserMedia struct {
	ID                 uuid.UUID   `json:"id"`
	UserID             uuid.UUID   `json:"user_id"`
	TmdbID             int         `json:"tmdb_id"`
	Type               MediaType   `json:"type"`
	Status             MediaStatus `json:"status"`
	Recommended        bool        `json:"recommended"`
	Liked              bool        `json:"liked"`
	Episode            *string     `json:"episode"`
	WatchingWith       *uuid.UUID  `json:"watching_with"`
	InvitationAccepted bool        `json:"invitation_accepted"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

type UpsertMediaParams struct {
	TmdbID      int
	Type        MediaType
	Status      MediaStatus
	Recommended bool
	Liked       *bool
	Episode     *string
}

// MediaWithPartner is a ledger row plus the user it is being watched with.
type MediaWithPartner struct {
	UserMedia
	WatchingWithUser *PublicUser `json:"watching_with_user"`
}

type MediaStats struct {
	Total       int `json:"total"`
	Watching    int `json:"watching"`
	Completed   int `json:"completed"`
	Planned     int `json:"planned"`
	Movies      int `json:"movies"`
	TVShows     int `json:"tv_shows"`
	Recommended int `json:"recommended"`
}
