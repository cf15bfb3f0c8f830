package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/watchtogether/internal/logging"
	"github.com/HammerMeetNail/watchtogether/internal/models"
)

const sessionKeyPrefix = "session:"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// AuthService issues opaque bearer tokens. Only the SHA-256 of a token is
// stored: durably in Postgres and cached in Redis for the same lifetime.
// A nil Redis client disables the cache.
type AuthService struct {
	db    DB
	redis *redis.Client
}

func NewAuthService(db DB, redis *redis.Client) *AuthService {
	return &AuthService{db: db, redis: redis}
}

func generateToken() (token, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generating random bytes: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) IssueToken(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	token, tokenHash, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(ttl)
	if _, err := s.db.Exec(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt,
	); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	s.cache(ctx, tokenHash, userID, ttl)
	return token, nil
}

// ValidateToken returns the user a live token belongs to.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	tokenHash := hashToken(token)

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, sessionKeyPrefix+tokenHash).Result()
		if err == nil {
			if userID, err := uuid.Parse(cached); err == nil {
				return userID, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("session cache lookup failed", logging.Fields{"error": err})
		}
	}

	session := models.Session{TokenHash: tokenHash}
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, expires_at FROM sessions WHERE token_hash = $1`,
		tokenHash,
	).Scan(&session.ID, &session.UserID, &session.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("querying session: %w", err)
	}

	remaining := time.Until(session.ExpiresAt)
	if remaining <= 0 {
		if _, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE id = $1", session.ID); err != nil {
			logging.FromContext(ctx).Warn("removing expired session failed", logging.Fields{"error": err})
		}
		return uuid.Nil, ErrSessionExpired
	}

	s.cache(ctx, tokenHash, session.UserID, remaining)
	return session.UserID, nil
}

func (s *AuthService) RevokeToken(ctx context.Context, token string) error {
	tokenHash := hashToken(token)
	s.evict(ctx, tokenHash)

	if _, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE token_hash = $1", tokenHash); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *AuthService) RevokeAllTokens(ctx context.Context, userID uuid.UUID) error {
	rows, err := s.db.Query(ctx, "SELECT token_hash FROM sessions WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("querying user sessions: %w", err)
	}
	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			rows.Close()
			return fmt.Errorf("scanning token hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating sessions: %w", err)
	}

	s.evict(ctx, hashes...)

	if _, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("deleting user sessions: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes every session past its expiry and reports how
// many were removed. Expired tokens are already rejected by ValidateToken;
// this only reclaims the rows.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("purging expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *AuthService) cache(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+tokenHash, userID.String(), ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("caching session failed", logging.Fields{"error": err})
	}
}

func (s *AuthService) evict(ctx context.Context, hashes ...string) {
	if s.redis == nil || len(hashes) == 0 {
		return
	}
	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = sessionKeyPrefix + h
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		logging.FromContext(ctx).Warn("evicting sessions failed", logging.Fields{"error": err})
	}
}
