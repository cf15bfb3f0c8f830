package handlers

import (
	"net/http"

	"github.com/HammerMeetNail/watchtogether/internal/services"
)

type SocialHandler struct {
	social services.SocialServiceInterface
}

func NewSocialHandler(social services.SocialServiceInterface) *SocialHandler {
	return &SocialHandler{social: social}
}

func (h *SocialHandler) Friends(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	friends, err := h.social.ListFriends(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Friends retrieved successfully", friends)
}

func (h *SocialHandler) SharedActivity(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	activity, err := h.social.SharedActivity(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Social data retrieved successfully", activity)
}

func (h *SocialHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	recommendations, err := h.social.FriendRecommendations(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if len(recommendations) == 0 {
		friends, err := h.social.ListFriends(r.Context(), user.ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if len(friends) == 0 {
			writeSuccess(w, http.StatusOK, "No friends found", []any{})
			return
		}
	}
	writeSuccess(w, http.StatusOK, "Friends recommendations retrieved successfully", recommendations)
}

func (h *SocialHandler) WantToSee(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	titles, err := h.social.FriendsWantToSee(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Friends want to see retrieved successfully", titles)
}

func (h *SocialHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	profile, err := h.social.Profile(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User profile retrieved successfully", profile)
}
