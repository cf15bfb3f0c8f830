package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/watchtogether/internal/models"
)

var (
	ErrCannotFriendSelf      = newError(ErrValidation, "Cannot send friend request to yourself")
	ErrCannotBlockSelf       = newError(ErrValidation, "Cannot block yourself")
	ErrInvalidAction         = newError(ErrValidation, "Action must be accept or decline")
	ErrAlreadyFriends        = newError(ErrConflict, "You are already friends with this user")
	ErrFriendRequestPending  = newError(ErrConflict, "Friend request already pending")
	ErrFriendshipBlocked     = newError(ErrForbidden, "Cannot send friend request to this user")
	ErrFriendRequestNotFound = newError(ErrNotFound, "Friend request not found or not pending")
	ErrFriendshipNotFound    = newError(ErrNotFound, "Friendship not found")
	ErrNotFriends            = newError(ErrForbidden, "You are not friends with this user")
)

const friendshipColumns = `id, requester_id, recipient_id, status, accepted_at, created_at, updated_at`

type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

// RequestFriendship creates a pending request from requester to recipient.
// A previously declined pair is replaced so each pair keeps a single row.
func (s *FriendService) RequestFriendship(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.Friendship, error) {
	if requesterID == recipientID {
		return nil, ErrCannotFriendSelf
	}

	pair := models.NewUserPair(requesterID, recipientID)
	var friendship *models.Friendship

	err := withTx(ctx, s.db, func(tx Tx) error {
		existing, err := findFriendshipByPair(ctx, tx, pair, true)
		if err != nil && !errors.Is(err, ErrFriendshipNotFound) {
			return err
		}

		if existing != nil {
			switch existing.Status {
			case models.FriendshipStatusAccepted:
				return ErrAlreadyFriends
			case models.FriendshipStatusPending:
				return ErrFriendRequestPending
			case models.FriendshipStatusBlocked:
				return ErrFriendshipBlocked
			case models.FriendshipStatusDeclined:
				if _, err := tx.Exec(ctx, "DELETE FROM friendships WHERE id = $1", existing.ID); err != nil {
					return fmt.Errorf("removing declined friendship: %w", err)
				}
			}
		}

		friendship, err = scanFriendship(tx.QueryRow(ctx,
			`INSERT INTO friendships (requester_id, recipient_id, status)
			 VALUES ($1, $2, 'pending')
			 RETURNING `+friendshipColumns,
			requesterID, recipientID,
		))
		if isUniqueViolation(err) {
			return ErrFriendRequestPending
		}
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("creating friendship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return friendship, nil
}

// RespondToFriendship applies the recipient's answer to a pending request.
// The requester, strangers and already-answered requests all get
// ErrFriendRequestNotFound.
func (s *FriendService) RespondToFriendship(ctx context.Context, friendshipID, responderID uuid.UUID, action models.ResponseAction) (*models.Friendship, error) {
	if _, ok := models.ParseResponseAction(string(action)); !ok {
		return nil, ErrInvalidAction
	}

	status := models.FriendshipStatusDeclined
	var acceptedAt *time.Time
	if action == models.ActionAccept {
		status = models.FriendshipStatusAccepted
		now := time.Now()
		acceptedAt = &now
	}

	friendship, err := scanFriendship(s.db.QueryRow(ctx,
		`UPDATE friendships
		 SET status = $1, accepted_at = $2, updated_at = NOW()
		 WHERE id = $3 AND recipient_id = $4 AND status = 'pending'
		 RETURNING `+friendshipColumns,
		string(status), acceptedAt, friendshipID, responderID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("responding to friendship: %w", err)
	}

	return friendship, nil
}

// BlockUser moves the pair into the terminal blocked state, creating the row
// if the two users never interacted.
func (s *FriendService) BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) (*models.Friendship, error) {
	if blockerID == blockedID {
		return nil, ErrCannotBlockSelf
	}

	friendship, err := scanFriendship(s.db.QueryRow(ctx,
		`INSERT INTO friendships (requester_id, recipient_id, status)
		 VALUES ($1, $2, 'blocked')
		 ON CONFLICT ((LEAST(requester_id, recipient_id)), (GREATEST(requester_id, recipient_id)))
		 DO UPDATE SET status = 'blocked', accepted_at = NULL, updated_at = NOW()
		 RETURNING `+friendshipColumns,
		blockerID, blockedID,
	))
	if isForeignKeyViolation(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blocking user: %w", err)
	}

	return friendship, nil
}

func (s *FriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.id, f.requester_id, f.recipient_id, f.status, f.accepted_at, f.created_at, f.updated_at,
		        u.id, u.name, u.email
		 FROM friendships f
		 JOIN users u ON f.requester_id = u.id
		 WHERE f.recipient_id = $1 AND f.status = 'pending'
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	requests := []models.FriendRequest{}
	for rows.Next() {
		var r models.FriendRequest
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.RecipientID, &r.Status, &r.AcceptedAt, &r.CreatedAt, &r.UpdatedAt,
			&r.Requester.ID, &r.Requester.Name, &r.Requester.Email); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requests: %w", err)
	}

	return requests, nil
}

func (s *FriendService) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT f.id, f.requester_id, f.recipient_id, f.status, f.accepted_at, f.created_at, f.updated_at,
		        u.id, u.name, u.email
		 FROM friendships f
		 JOIN users u ON f.recipient_id = u.id
		 WHERE f.requester_id = $1 AND f.status = 'pending'
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sent requests: %w", err)
	}
	defer rows.Close()

	requests := []models.FriendWithUser{}
	for rows.Next() {
		var f models.FriendWithUser
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.AcceptedAt, &f.CreatedAt, &f.UpdatedAt,
			&f.Friend.ID, &f.Friend.Name, &f.Friend.Email); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requests: %w", err)
	}

	return requests, nil
}

// AreFriends returns the accepted friendship between a and b, or ErrNotFriends.
func (s *FriendService) AreFriends(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error) {
	if a == b {
		return nil, ErrNotFriends
	}
	friendship, err := findFriendshipByPair(ctx, s.db, models.NewUserPair(a, b), false)
	if errors.Is(err, ErrFriendshipNotFound) {
		return nil, ErrNotFriends
	}
	if err != nil {
		return nil, err
	}
	if friendship.Status != models.FriendshipStatusAccepted {
		return nil, ErrNotFriends
	}
	return friendship, nil
}

// findFriendshipByPair loads the single row for an unordered pair, optionally
// locking it for the rest of the transaction.
func findFriendshipByPair(ctx context.Context, q Querier, pair models.UserPair, forUpdate bool) (*models.Friendship, error) {
	sql := `SELECT ` + friendshipColumns + `
		 FROM friendships
		 WHERE LEAST(requester_id, recipient_id) = $1
		   AND GREATEST(requester_id, recipient_id) = $2`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	friendship, err := scanFriendship(q.QueryRow(ctx, sql, pair.Low, pair.High))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friendship: %w", err)
	}
	return friendship, nil
}

func scanFriendship(row Row) (*models.Friendship, error) {
	f := &models.Friendship{}
	if err := row.Scan(&f.ID, &f.RequesterID, &f.RecipientID, &f.Status, &f.AcceptedAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if !f.Status.Valid() {
		return nil, fmt.Errorf("friendship %s has unknown status %q", f.ID, f.Status)
	}
	return f, nil
}
