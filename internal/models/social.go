package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendActivity struct {
	FriendshipID            uuid.UUID  `json:"friendship_id"`
	Friend                  PublicUser `json:"friend"`
	FriendshipSince         time.Time  `json:"friendship_since"`
	SeriesCompletedTogether []int      `json:"series_completed_together"`
	SeriesWatchingTogether  []int      `json:"series_watching_together"`
	TotalCompleted          int        `json:"total_completed"`
	TotalWatching           int        `json:"total_watching"`
}

type SharedActivityStats struct {
	TotalFriends                 int `json:"total_friends"`
	TotalSeriesCompletedTogether int `json:"total_series_completed_together"`
	TotalSeriesWatchingTogether  int `json:"total_series_watching_together"`
}

type SharedActivity struct {
	User    PublicUser          `json:"user"`
	Stats   SharedActivityStats `json:"stats"`
	Friends []FriendActivity    `json:"friends"`
}

type InterestedFriend struct {
	PublicUser
	AddedAt time.Time `json:"added_at"`
}

// WantToSee groups the friends that planned the same title.
type WantToSee struct {
	TmdbID  int                `json:"tmdb_id"`
	Type    MediaType          `json:"type"`
	Friends []InterestedFriend `json:"friends"`
}

type Profile struct {
	User      *User      `json:"user"`
	Stats     MediaStats `json:"stats"`
	Friends   int        `json:"friends"`
	Platforms []Platform `json:"platforms"`
}
