package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/watchtogether/internal/models"
)

var (
	ErrInvalidMediaType   = newError(ErrValidation, "Type must be movie or tv")
	ErrInvalidMediaStatus = newError(ErrValidation, "Invalid status. Valid statuses are: watching, completed, planned")
	ErrInvalidTmdbID      = newError(ErrValidation, "tmdb_id must be a positive integer")
	ErrMediaNotFound      = newError(ErrNotFound, "Media not found")
)

const mediaColumns = `id, user_id, tmdb_id, type, status, recommended, liked, episode, watching_with, invitation_accepted, created_at, updated_at`

type MediaService struct {
	db DB
}

func NewMediaService(db DB) *MediaService {
	return &MediaService{db: db}
}

// Upsert creates or updates the user's row for a title. Rows are keyed on
// (user_id, tmdb_id), so a second upsert with another type rewrites the type.
// An omitted liked flag keeps the stored value. The bool result reports
// whether the row was created.
func (s *MediaService) Upsert(ctx context.Context, userID uuid.UUID, params models.UpsertMediaParams) (*models.UserMedia, bool, error) {
	if params.TmdbID <= 0 {
		return nil, false, ErrInvalidTmdbID
	}
	if _, ok := models.ParseMediaType(string(params.Type)); !ok {
		return nil, false, ErrInvalidMediaType
	}
	if _, ok := models.ParseMediaStatus(string(params.Status)); !ok {
		return nil, false, ErrInvalidMediaStatus
	}

	m := &models.UserMedia{}
	var created bool
	err := s.db.QueryRow(ctx,
		`INSERT INTO user_media (user_id, tmdb_id, type, status, recommended, liked, episode)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6::boolean, false), $7)
		 ON CONFLICT (user_id, tmdb_id) DO UPDATE SET
		     type = EXCLUDED.type,
		     status = EXCLUDED.status,
		     recommended = EXCLUDED.recommended,
		     liked = COALESCE($6::boolean, user_media.liked),
		     episode = EXCLUDED.episode,
		     updated_at = NOW()
		 RETURNING `+mediaColumns+`, (xmax = 0) AS created`,
		userID, params.TmdbID, string(params.Type), string(params.Status), params.Recommended, params.Liked, params.Episode,
	).Scan(&m.ID, &m.UserID, &m.TmdbID, &m.Type, &m.Status, &m.Recommended, &m.Liked, &m.Episode, &m.WatchingWith,
		&m.InvitationAccepted, &m.CreatedAt, &m.UpdatedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("upserting media: %w", err)
	}

	return m, created, nil
}

func (s *MediaService) FetchByStatus(ctx context.Context, userID uuid.UUID, status string) ([]models.UserMedia, error) {
	st, ok := models.ParseMediaStatus(status)
	if !ok {
		return nil, ErrInvalidMediaStatus
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+mediaColumns+`
		 FROM user_media
		 WHERE user_id = $1 AND status = $2
		 ORDER BY updated_at DESC`,
		userID, string(st),
	)
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	defer rows.Close()

	media := []models.UserMedia{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning media: %w", err)
		}
		media = append(media, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating media: %w", err)
	}

	return media, nil
}

// FetchByTmdbID returns the user's row for a title of the given type together
// with the public identity of the friend it is being watched with.
func (s *MediaService) FetchByTmdbID(ctx context.Context, userID uuid.UUID, tmdbID int, mediaType string) (*models.MediaWithPartner, error) {
	t, ok := models.ParseMediaType(mediaType)
	if !ok {
		return nil, ErrInvalidMediaType
	}
	if tmdbID <= 0 {
		return nil, ErrInvalidTmdbID
	}

	result := &models.MediaWithPartner{}
	m := &result.UserMedia
	var partnerID *uuid.UUID
	var partnerName, partnerEmail *string
	err := s.db.QueryRow(ctx,
		`SELECT m.id, m.user_id, m.tmdb_id, m.type, m.status, m.recommended, m.liked, m.episode, m.watching_with,
		        m.invitation_accepted, m.created_at, m.updated_at,
		        p.id, p.name, p.email
		 FROM user_media m
		 LEFT JOIN users p ON p.id = m.watching_with
		 WHERE m.user_id = $1 AND m.tmdb_id = $2 AND m.type = $3`,
		userID, tmdbID, string(t),
	).Scan(&m.ID, &m.UserID, &m.TmdbID, &m.Type, &m.Status, &m.Recommended, &m.Liked, &m.Episode, &m.WatchingWith,
		&m.InvitationAccepted, &m.CreatedAt, &m.UpdatedAt,
		&partnerID, &partnerName, &partnerEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting media: %w", err)
	}

	if partnerID != nil {
		partner := models.PublicUser{ID: *partnerID}
		if partnerName != nil {
			partner.Name = *partnerName
		}
		if partnerEmail != nil {
			partner.Email = *partnerEmail
		}
		result.WatchingWithUser = &partner
	}

	return result, nil
}

func (s *MediaService) Stats(ctx context.Context, userID uuid.UUID) (*models.MediaStats, error) {
	return mediaStats(ctx, s.db, userID)
}

func mediaStats(ctx context.Context, q Querier, userID uuid.UUID) (*models.MediaStats, error) {
	stats := &models.MediaStats{}
	err := q.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'watching'),
		        COUNT(*) FILTER (WHERE status = 'completed'),
		        COUNT(*) FILTER (WHERE status = 'planned'),
		        COUNT(*) FILTER (WHERE type = 'movie'),
		        COUNT(*) FILTER (WHERE type = 'tv'),
		        COUNT(*) FILTER (WHERE recommended)
		 FROM user_media
		 WHERE user_id = $1`,
		userID,
	).Scan(&stats.Total, &stats.Watching, &stats.Completed, &stats.Planned, &stats.Movies, &stats.TVShows, &stats.Recommended)
	if err != nil {
		return nil, fmt.Errorf("getting media stats: %w", err)
	}
	return stats, nil
}

func scanMedia(row Row) (*models.UserMedia, error) {
	m := &models.UserMedia{}
	if err := row.Scan(&m.ID, &m.UserID, &m.TmdbID, &m.Type, &m.Status, &m.Recommended, &m.Liked, &m.Episode, &m.WatchingWith,
		&m.InvitationAccepted, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}
