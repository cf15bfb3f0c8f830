package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/models"
	"github.com/HammerMeetNail/watchtogether/internal/services"
)

type FriendHandler struct {
	friends services.FriendServiceInterface
}

func NewFriendHandler(friends services.FriendServiceInterface) *FriendHandler {
	return &FriendHandler{friends: friends}
}

// FriendTargetRequest names the other user of a friend request or block.
type FriendTargetRequest struct {
	FriendID string `json:"friend_id"`
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	friendID, ok := decodeFriendID(w, r)
	if !ok {
		return
	}

	friendship, err := h.friends.RequestFriendship(r.Context(), user.ID, friendID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Friend request sent successfully", friendship)
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	friendshipID, ok := pathUUID(w, r, "friendshipId", "friendship ID")
	if !ok {
		return
	}
	action, ok := parseAction(w, r)
	if !ok {
		return
	}

	friendship, err := h.friends.RespondToFriendship(r.Context(), friendshipID, user.ID, action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	message := "Friend request declined successfully"
	if action == models.ActionAccept {
		message = "Friend request accepted successfully"
	}
	writeSuccess(w, http.StatusOK, message, friendship)
}

func (h *FriendHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	requests, err := h.friends.ListPendingRequests(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Friend requests retrieved successfully", requests)
}

func (h *FriendHandler) SentRequests(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	requests, err := h.friends.ListSentRequests(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Sent friend requests retrieved successfully", requests)
}

func (h *FriendHandler) Block(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	friendID, ok := decodeFriendID(w, r)
	if !ok {
		return
	}

	friendship, err := h.friends.BlockUser(r.Context(), user.ID, friendID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User blocked successfully", friendship)
}

func decodeFriendID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req FriendTargetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return uuid.Nil, false
	}
	return parseUUIDField(w, req.FriendID, "friend ID")
}
