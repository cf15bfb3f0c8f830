package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/models"
	"github.com/HammerMeetNail/watchtogether/internal/services"
)

func TestFriendHandler_SendRequest(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendID := uuid.New()

	tests := []struct {
		name    string
		user    *models.User
		body    any
		err     error
		status  int
		message string
	}{
		{"unauthenticated", nil, FriendTargetRequest{FriendID: friendID.String()}, nil, http.StatusUnauthorized, "Authentication required"},
		{"invalid friend id", user, FriendTargetRequest{FriendID: "42"}, nil, http.StatusBadRequest, "Invalid friend ID"},
		{"self", user, FriendTargetRequest{FriendID: friendID.String()}, services.ErrCannotFriendSelf, http.StatusBadRequest, "Cannot send friend request to yourself"},
		{"already friends", user, FriendTargetRequest{FriendID: friendID.String()}, services.ErrAlreadyFriends, http.StatusBadRequest, "You are already friends with this user"},
		{"blocked", user, FriendTargetRequest{FriendID: friendID.String()}, services.ErrFriendshipBlocked, http.StatusForbidden, "Cannot send friend request to this user"},
		{"unknown user", user, FriendTargetRequest{FriendID: friendID.String()}, services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewFriendHandler(&mockFriendService{
				RequestFunc: func(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.Friendship, error) {
					return nil, tt.err
				},
			})

			rr := httptest.NewRecorder()
			handler.SendRequest(rr, newRequest(t, http.MethodPost, "/api/user/friend-request", tt.body, tt.user))
			assertErrorResponse(t, rr, tt.status, tt.message)
		})
	}
}

func TestFriendHandler_SendRequest_Success(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendID := uuid.New()
	handler := NewFriendHandler(&mockFriendService{
		RequestFunc: func(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.Friendship, error) {
			if requesterID != user.ID || recipientID != friendID {
				t.Fatalf("unexpected ids %s -> %s", requesterID, recipientID)
			}
			return &models.Friendship{ID: uuid.New(), RequesterID: requesterID, RecipientID: recipientID, Status: models.FriendshipStatusPending}, nil
		},
	})

	rr := httptest.NewRecorder()
	handler.SendRequest(rr, newRequest(t, http.MethodPost, "/api/user/friend-request", FriendTargetRequest{FriendID: friendID.String()}, user))

	assertSuccessResponse(t, rr, http.StatusCreated, "Friend request sent successfully")
}

func TestFriendHandler_Respond(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendshipID := uuid.New()

	tests := []struct {
		name    string
		pathID  string
		body    any
		err     error
		status  int
		message string
	}{
		{"invalid id", "abc", map[string]string{"action": "accept"}, nil, http.StatusBadRequest, "Invalid friendship ID"},
		{"invalid action", friendshipID.String(), map[string]string{"action": "maybe"}, nil, http.StatusBadRequest, "Action must be accept or decline"},
		{"not pending", friendshipID.String(), map[string]string{"action": "accept"}, services.ErrFriendRequestNotFound, http.StatusNotFound, "Friend request not found or not pending"},
		{"accept", friendshipID.String(), map[string]string{"action": "accept"}, nil, http.StatusOK, "Friend request accepted successfully"},
		{"decline", friendshipID.String(), map[string]string{"action": "decline"}, nil, http.StatusOK, "Friend request declined successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewFriendHandler(&mockFriendService{
				RespondFunc: func(ctx context.Context, id, responderID uuid.UUID, action models.ResponseAction) (*models.Friendship, error) {
					if id != friendshipID || responderID != user.ID {
						t.Fatalf("unexpected ids %s %s", id, responderID)
					}
					return &models.Friendship{ID: id}, tt.err
				},
			})

			req := newRequest(t, http.MethodPatch, "/api/user/friend-request/"+tt.pathID+"/respond", tt.body, user)
			req.SetPathValue("friendshipId", tt.pathID)
			rr := httptest.NewRecorder()
			handler.Respond(rr, req)

			if tt.status == http.StatusOK {
				assertSuccessResponse(t, rr, tt.status, tt.message)
				return
			}
			assertErrorResponse(t, rr, tt.status, tt.message)
		})
	}
}

func TestFriendHandler_Lists(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	handler := NewFriendHandler(&mockFriendService{
		ListPendingFunc: func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
			return []models.FriendRequest{{Friendship: models.Friendship{ID: uuid.New()}}}, nil
		},
	})

	rr := httptest.NewRecorder()
	handler.PendingRequests(rr, newRequest(t, http.MethodGet, "/api/user/friend-requests", nil, user))
	env := assertSuccessResponse(t, rr, http.StatusOK, "Friend requests retrieved successfully")
	if items, _ := env.Data.([]any); len(items) != 1 {
		t.Errorf("expected one request, got %v", env.Data)
	}

	rr = httptest.NewRecorder()
	handler.SentRequests(rr, newRequest(t, http.MethodGet, "/api/user/friend-requests/sent", nil, user))
	env = assertSuccessResponse(t, rr, http.StatusOK, "Sent friend requests retrieved successfully")
	if items, ok := env.Data.([]any); !ok || len(items) != 0 {
		t.Errorf("expected empty list, got %v", env.Data)
	}
}

func TestFriendHandler_Block(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	handler := NewFriendHandler(&mockFriendService{
		BlockFunc: func(ctx context.Context, blockerID, blockedID uuid.UUID) (*models.Friendship, error) {
			if blockerID == blockedID {
				return nil, services.ErrCannotBlockSelf
			}
			return &models.Friendship{Status: models.FriendshipStatusBlocked}, nil
		},
	})

	rr := httptest.NewRecorder()
	handler.Block(rr, newRequest(t, http.MethodPost, "/api/user/block", FriendTargetRequest{FriendID: user.ID.String()}, user))
	assertErrorResponse(t, rr, http.StatusBadRequest, "Cannot block yourself")

	rr = httptest.NewRecorder()
	handler.Block(rr, newRequest(t, http.MethodPost, "/api/user/block", FriendTargetRequest{FriendID: uuid.NewString()}, user))
	assertSuccessResponse(t, rr, http.StatusOK, "User blocked successfully")
}
