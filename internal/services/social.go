package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/models"
)

// friendIDsSQL selects the other participant of every accepted friendship of $1.
const friendIDsSQL = `SELECT CASE WHEN f.requester_id = $1 THEN f.recipient_id ELSE f.requester_id END
	 FROM friendships f
	 WHERE (f.requester_id = $1 OR f.recipient_id = $1) AND f.status = 'accepted'`

// SocialService serves read-only views derived from friendships, invitations
// and media ledgers.
type SocialService struct {
	db DB
}

func NewSocialService(db DB) *SocialService {
	return &SocialService{db: db}
}

func (s *SocialService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error) {
	return listFriends(ctx, s.db, userID)
}

func listFriends(ctx context.Context, q Querier, userID uuid.UUID) ([]models.FriendWithUser, error) {
	rows, err := q.Query(ctx,
		`SELECT f.id, f.requester_id, f.recipient_id, f.status, f.accepted_at, f.created_at, f.updated_at,
		        u.id, u.name, u.email
		 FROM friendships f
		 JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.recipient_id ELSE f.requester_id END
		 WHERE (f.requester_id = $1 OR f.recipient_id = $1) AND f.status = 'accepted'
		 ORDER BY u.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	friends := []models.FriendWithUser{}
	for rows.Next() {
		var f models.FriendWithUser
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.AcceptedAt, &f.CreatedAt, &f.UpdatedAt,
			&f.Friend.ID, &f.Friend.Name, &f.Friend.Email); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating friends: %w", err)
	}

	return friends, nil
}

// SharedActivity reports, per friend, the titles watched together: accepted
// invitations count as completed together, pending ones as in progress.
func (s *SocialService) SharedActivity(ctx context.Context, userID uuid.UUID) (*models.SharedActivity, error) {
	user, err := getUserBy(ctx, s.db, "id", userID)
	if err != nil {
		return nil, err
	}

	friends, err := listFriends(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT wi.friendship_id, wi.tmdb_id, wi.status
		 FROM watch_invitations wi
		 JOIN friendships f ON f.id = wi.friendship_id
		 WHERE (f.requester_id = $1 OR f.recipient_id = $1)
		   AND f.status = 'accepted'
		   AND wi.status IN ('accepted', 'pending')
		 ORDER BY wi.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing shared invitations: %w", err)
	}
	defer rows.Close()

	type together struct {
		completed []int
		watching  []int
	}
	byFriendship := make(map[uuid.UUID]*together, len(friends))
	for rows.Next() {
		var (
			friendshipID uuid.UUID
			tmdbID       int
			status       models.InvitationStatus
		)
		if err := rows.Scan(&friendshipID, &tmdbID, &status); err != nil {
			return nil, fmt.Errorf("scanning shared invitation: %w", err)
		}
		t, ok := byFriendship[friendshipID]
		if !ok {
			t = &together{}
			byFriendship[friendshipID] = t
		}
		if status == models.InvitationStatusAccepted {
			t.completed = append(t.completed, tmdbID)
		} else {
			t.watching = append(t.watching, tmdbID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shared invitations: %w", err)
	}

	activity := &models.SharedActivity{
		User:    user.Public(),
		Friends: make([]models.FriendActivity, 0, len(friends)),
	}
	for _, f := range friends {
		fa := models.FriendActivity{
			FriendshipID:            f.ID,
			Friend:                  f.Friend,
			FriendshipSince:         f.CreatedAt,
			SeriesCompletedTogether: []int{},
			SeriesWatchingTogether:  []int{},
		}
		if t, ok := byFriendship[f.ID]; ok {
			fa.SeriesCompletedTogether = append(fa.SeriesCompletedTogether, t.completed...)
			fa.SeriesWatchingTogether = append(fa.SeriesWatchingTogether, t.watching...)
		}
		fa.TotalCompleted = len(fa.SeriesCompletedTogether)
		fa.TotalWatching = len(fa.SeriesWatchingTogether)

		activity.Stats.TotalSeriesCompletedTogether += fa.TotalCompleted
		activity.Stats.TotalSeriesWatchingTogether += fa.TotalWatching
		activity.Friends = append(activity.Friends, fa)
	}
	activity.Stats.TotalFriends = len(activity.Friends)

	return activity, nil
}

// FriendRecommendations returns the titles friends flagged as recommended,
// keyed by media type. Only one title is kept per type: the highest tmdb id.
func (s *SocialService) FriendRecommendations(ctx context.Context, userID uuid.UUID) (map[models.MediaType]int, error) {
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT m.type, m.tmdb_id
		 FROM user_media m
		 WHERE m.recommended AND m.user_id IN (`+friendIDsSQL+`)
		 ORDER BY m.type, m.tmdb_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	defer rows.Close()

	recommendations := map[models.MediaType]int{}
	for rows.Next() {
		var (
			t      models.MediaType
			tmdbID int
		)
		if err := rows.Scan(&t, &tmdbID); err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		if current, ok := recommendations[t]; !ok || tmdbID > current {
			recommendations[t] = tmdbID
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendations: %w", err)
	}

	return recommendations, nil
}

// FriendsWantToSee groups friends' planned titles, in tmdb id order, listing
// who planned each one and when.
func (s *SocialService) FriendsWantToSee(ctx context.Context, userID uuid.UUID) ([]models.WantToSee, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.tmdb_id, m.type, m.created_at, u.id, u.name, u.email
		 FROM user_media m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.status = 'planned' AND m.user_id IN (`+friendIDsSQL+`)
		 ORDER BY m.tmdb_id, m.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing planned media: %w", err)
	}
	defer rows.Close()

	groups := []models.WantToSee{}
	index := map[int]int{}
	for rows.Next() {
		var (
			tmdbID int
			t      models.MediaType
			friend models.InterestedFriend
		)
		if err := rows.Scan(&tmdbID, &t, &friend.AddedAt, &friend.ID, &friend.Name, &friend.Email); err != nil {
			return nil, fmt.Errorf("scanning planned media: %w", err)
		}
		i, ok := index[tmdbID]
		if !ok {
			i = len(groups)
			index[tmdbID] = i
			groups = append(groups, models.WantToSee{TmdbID: tmdbID, Type: t})
		}
		groups[i].Friends = append(groups[i].Friends, friend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating planned media: %w", err)
	}

	return groups, nil
}

func (s *SocialService) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	user, err := getUserBy(ctx, s.db, "id", userID)
	if err != nil {
		return nil, err
	}

	stats, err := mediaStats(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	var friends int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM (`+friendIDsSQL+`) AS friends`, userID).Scan(&friends); err != nil {
		return nil, fmt.Errorf("counting friends: %w", err)
	}

	platforms, err := subscribedPlatforms(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:      user,
		Stats:     *stats,
		Friends:   friends,
		Platforms: platforms,
	}, nil
}
