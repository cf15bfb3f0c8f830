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
	ErrCannotInviteSelf        = newError(ErrValidation, "Cannot send watch invitation to yourself")
	ErrInvalidInvitationStatus = newError(ErrValidation, "Invalid status. Valid statuses are: pending, accepted, declined")
	ErrInvitationNotFriends    = newError(ErrForbidden, "You can only send watch invitations to friends")
	ErrInvitationPending       = newError(ErrConflict, "You already have a pending invitation for this content with this user")
	ErrInvitationExists        = newError(ErrConflict, "An invitation for this content already exists with this user")
	ErrInvitationNotFound      = newError(ErrNotFound, "Watch invitation not found, not pending, or you cannot respond to it")
)

const invitationColumns = `id, friendship_id, sender_id, tmdb_id, type, status, created_at, updated_at`

type InvitationService struct {
	db      DB
	friends *FriendService
}

func NewInvitationService(db DB) *InvitationService {
	return &InvitationService{db: db, friends: NewFriendService(db)}
}

// SendInvitation creates a pending invitation inside the accepted friendship
// between sender and recipient. The lookup for an existing invitation is a
// fast path; the unique index on (friendship_id, tmdb_id, type) decides races.
func (s *InvitationService) SendInvitation(ctx context.Context, params models.SendInvitationParams) (*models.WatchInvitation, error) {
	if params.SenderID == params.RecipientID {
		return nil, ErrCannotInviteSelf
	}
	if _, ok := models.ParseMediaType(string(params.Type)); !ok {
		return nil, ErrInvalidMediaType
	}
	if params.TmdbID <= 0 {
		return nil, ErrInvalidTmdbID
	}

	friendship, err := s.friends.AreFriends(ctx, params.SenderID, params.RecipientID)
	if errors.Is(err, ErrNotFriends) {
		return nil, ErrInvitationNotFriends
	}
	if err != nil {
		return nil, err
	}

	var existing models.InvitationStatus
	err = s.db.QueryRow(ctx,
		`SELECT status FROM watch_invitations
		 WHERE friendship_id = $1 AND tmdb_id = $2 AND type = $3`,
		friendship.ID, params.TmdbID, string(params.Type),
	).Scan(&existing)
	switch {
	case err == nil:
		if existing == models.InvitationStatusPending {
			return nil, ErrInvitationPending
		}
		return nil, ErrInvitationExists
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("checking existing invitation: %w", err)
	}

	invitation, err := scanInvitation(s.db.QueryRow(ctx,
		`INSERT INTO watch_invitations (friendship_id, sender_id, tmdb_id, type, status)
		 VALUES ($1, $2, $3, $4, 'pending')
		 RETURNING `+invitationColumns,
		friendship.ID, params.SenderID, params.TmdbID, string(params.Type),
	))
	if isUniqueViolation(err) {
		return nil, ErrInvitationExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating invitation: %w", err)
	}

	return invitation, nil
}

// RespondToInvitation lets the non-sending participant accept or decline a
// pending invitation. Accepting links both participants' ledger rows for the
// title to each other in the same transaction; missing rows are skipped.
func (s *InvitationService) RespondToInvitation(ctx context.Context, invitationID, responderID uuid.UUID, action models.ResponseAction) (*models.WatchInvitation, error) {
	if _, ok := models.ParseResponseAction(string(action)); !ok {
		return nil, ErrInvalidAction
	}

	status := models.InvitationStatusDeclined
	if action == models.ActionAccept {
		status = models.InvitationStatusAccepted
	}

	var updated *models.WatchInvitation
	err := withTx(ctx, s.db, func(tx Tx) error {
		inv := &models.WatchInvitation{}
		friendship := &models.Friendship{}
		err := tx.QueryRow(ctx,
			`SELECT wi.id, wi.friendship_id, wi.sender_id, wi.tmdb_id, wi.type, wi.status, wi.created_at, wi.updated_at,
			        f.requester_id, f.recipient_id, f.status
			 FROM watch_invitations wi
			 JOIN friendships f ON f.id = wi.friendship_id
			 WHERE wi.id = $1
			 FOR UPDATE OF wi`,
			invitationID,
		).Scan(&inv.ID, &inv.FriendshipID, &inv.SenderID, &inv.TmdbID, &inv.Type, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
			&friendship.RequesterID, &friendship.RecipientID, &friendship.Status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvitationNotFound
		}
		if err != nil {
			return fmt.Errorf("getting invitation: %w", err)
		}
		friendship.ID = inv.FriendshipID

		// A block after sending freezes every invitation of the pair.
		if friendship.Status != models.FriendshipStatusAccepted ||
			inv.Status != models.InvitationStatusPending ||
			!friendship.Involves(responderID) || responderID == inv.SenderID {
			return ErrInvitationNotFound
		}

		updated, err = scanInvitation(tx.QueryRow(ctx,
			`UPDATE watch_invitations SET status = $1, updated_at = NOW()
			 WHERE id = $2
			 RETURNING `+invitationColumns,
			string(status), inv.ID,
		))
		if err != nil {
			return fmt.Errorf("updating invitation: %w", err)
		}

		if status != models.InvitationStatusAccepted {
			return nil
		}

		for _, userID := range []uuid.UUID{friendship.RequesterID, friendship.RecipientID} {
			if _, err := tx.Exec(ctx,
				`UPDATE user_media
				 SET watching_with = $1, invitation_accepted = true, updated_at = NOW()
				 WHERE user_id = $2 AND tmdb_id = $3`,
				friendship.OtherParticipant(userID), userID, inv.TmdbID,
			); err != nil {
				return fmt.Errorf("linking media for user %s: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ListReceived returns invitations sent to the user by friends, newest first.
// An empty status means pending.
func (s *InvitationService) ListReceived(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error) {
	return s.list(ctx, userID, status, false)
}

// ListSent returns invitations the user sent, newest first.
func (s *InvitationService) ListSent(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error) {
	return s.list(ctx, userID, status, true)
}

func (s *InvitationService) list(ctx context.Context, userID uuid.UUID, rawStatus string, sent bool) ([]models.InvitationWithFriend, error) {
	status := models.InvitationStatusPending
	if rawStatus != "" {
		parsed, ok := models.ParseInvitationStatus(rawStatus)
		if !ok {
			return nil, ErrInvalidInvitationStatus
		}
		status = parsed
	}

	senderFilter := "wi.sender_id <> $1"
	if sent {
		senderFilter = "wi.sender_id = $1"
	}

	rows, err := s.db.Query(ctx,
		`SELECT wi.id, wi.friendship_id, wi.sender_id, wi.tmdb_id, wi.type, wi.status, wi.created_at, wi.updated_at,
		        u.id, u.name, u.email
		 FROM watch_invitations wi
		 JOIN friendships f ON f.id = wi.friendship_id
		 JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.recipient_id ELSE f.requester_id END
		 WHERE (f.requester_id = $1 OR f.recipient_id = $1)
		   AND `+senderFilter+`
		   AND wi.status = $2
		 ORDER BY wi.created_at DESC`,
		userID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	defer rows.Close()

	invitations := []models.InvitationWithFriend{}
	for rows.Next() {
		var inv models.InvitationWithFriend
		if err := rows.Scan(&inv.ID, &inv.FriendshipID, &inv.SenderID, &inv.TmdbID, &inv.Type, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
			&inv.Friend.ID, &inv.Friend.Name, &inv.Friend.Email); err != nil {
			return nil, fmt.Errorf("scanning invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invitations: %w", err)
	}

	return invitations, nil
}

func scanInvitation(row Row) (*models.WatchInvitation, error) {
	inv := &models.WatchInvitation{}
	if err := row.Scan(&inv.ID, &inv.FriendshipID, &inv.SenderID, &inv.TmdbID, &inv.Type, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	return inv, nil
}
