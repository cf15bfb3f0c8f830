package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/models"
	"github.com/HammerMeetNail/watchtogether/internal/services"
)

type InvitationHandler struct {
	invitations services.InvitationServiceInterface
}

func NewInvitationHandler(invitations services.InvitationServiceInterface) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type SendInvitationRequest struct {
	FriendID string `json:"friend_id"`
	TmdbID   int    `json:"tmdb_id"`
	Type     string `json:"type"`
}

func (h *InvitationHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req SendInvitationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	friendID, ok := parseUUIDField(w, req.FriendID, "friend ID")
	if !ok {
		return
	}

	invitation, err := h.invitations.SendInvitation(r.Context(), models.SendInvitationParams{
		SenderID:    user.ID,
		RecipientID: friendID,
		TmdbID:      req.TmdbID,
		Type:        models.MediaType(req.Type),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Watch invitation sent successfully", invitation)
}

func (h *InvitationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	invitationID, ok := pathUUID(w, r, "invitationId", "invitation ID")
	if !ok {
		return
	}
	action, ok := parseAction(w, r)
	if !ok {
		return
	}

	invitation, err := h.invitations.RespondToInvitation(r.Context(), invitationID, user.ID, action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	message := "Watch invitation declined successfully"
	if action == models.ActionAccept {
		message = "Watch invitation accepted successfully"
	}
	writeSuccess(w, http.StatusOK, message, invitation)
}

func (h *InvitationHandler) Received(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.invitations.ListReceived)
}

func (h *InvitationHandler) Sent(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.invitations.ListSent)
}

type listInvitationsFunc func(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error)

// list serves both directions. A missing {status} segment lists pending.
func (h *InvitationHandler) list(w http.ResponseWriter, r *http.Request, fetch listInvitationsFunc) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	status := r.PathValue("status")
	if status == "" {
		status = string(models.InvitationStatusPending)
	}

	invitations, err := fetch(r.Context(), user.ID, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Watch invitations with status '%s' retrieved successfully", status), invitations)
}
