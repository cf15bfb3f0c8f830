package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/models"
)

var (
	ErrPlatformNotFound     = newError(ErrNotFound, "Platform not found")
	ErrSubscriptionNotFound = newError(ErrNotFound, "You are not subscribed to this platform")
)

type PlatformService struct {
	db DB
}

func NewPlatformService(db DB) *PlatformService {
	return &PlatformService{db: db}
}

func (s *PlatformService) Exists(ctx context.Context, platformID int) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM platforms WHERE id = $1)", platformID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking platform: %w", err)
	}
	return exists, nil
}

func (s *PlatformService) List(ctx context.Context) ([]models.Platform, error) {
	rows, err := s.db.Query(ctx, "SELECT id, code, name FROM platforms ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing platforms: %w", err)
	}
	defer rows.Close()
	return collectPlatforms(rows)
}

// Subscribe activates the user's subscription, reactivating a previous one if
// present. The bool result reports whether a new subscription was created.
func (s *PlatformService) Subscribe(ctx context.Context, userID uuid.UUID, platformID int) (bool, error) {
	exists, err := s.Exists(ctx, platformID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrPlatformNotFound
	}

	var created bool
	err = s.db.QueryRow(ctx,
		`INSERT INTO user_platforms (user_id, platform_id, is_active)
		 VALUES ($1, $2, true)
		 ON CONFLICT (user_id, platform_id) DO UPDATE SET is_active = true, updated_at = NOW()
		 RETURNING (xmax = 0)`,
		userID, platformID,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("subscribing to platform: %w", err)
	}
	return created, nil
}

func (s *PlatformService) Unsubscribe(ctx context.Context, userID uuid.UUID, platformID int) error {
	result, err := s.db.Exec(ctx,
		`UPDATE user_platforms SET is_active = false, updated_at = NOW()
		 WHERE user_id = $1 AND platform_id = $2 AND is_active`,
		userID, platformID,
	)
	if err != nil {
		return fmt.Errorf("unsubscribing from platform: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (s *PlatformService) ListSubscribed(ctx context.Context, userID uuid.UUID) ([]models.Platform, error) {
	return subscribedPlatforms(ctx, s.db, userID)
}

func subscribedPlatforms(ctx context.Context, q Querier, userID uuid.UUID) ([]models.Platform, error) {
	rows, err := q.Query(ctx,
		`SELECT p.id, p.code, p.name
		 FROM user_platforms up
		 JOIN platforms p ON p.id = up.platform_id
		 WHERE up.user_id = $1 AND up.is_active
		 ORDER BY p.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing subscribed platforms: %w", err)
	}
	defer rows.Close()
	return collectPlatforms(rows)
}

func collectPlatforms(rows Rows) ([]models.Platform, error) {
	platforms := []models.Platform{}
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p.ID, &p.Code, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating platforms: %w", err)
	}
	return platforms, nil
}
