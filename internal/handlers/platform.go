package handlers

import (
	"net/http"

	"github.com/HammerMeetNail/watchtogether/internal/services"
)

type PlatformHandler struct {
	platforms services.PlatformServiceInterface
}

func NewPlatformHandler(platforms services.PlatformServiceInterface) *PlatformHandler {
	return &PlatformHandler{platforms: platforms}
}

func (h *PlatformHandler) List(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.platforms.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Platforms retrieved successfully", platforms)
}

// Subscribe answers 201 for a new subscription and 200 when an inactive one
// is reactivated.
func (h *PlatformHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	platformID, ok := pathInt(w, r, "platformId", "platform ID")
	if !ok {
		return
	}

	created, err := h.platforms.Subscribe(r.Context(), user.ID, platformID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	data := map[string]int{"platform_id": platformID}
	if created {
		writeSuccess(w, http.StatusCreated, "Subscribed to platform successfully", data)
		return
	}
	writeSuccess(w, http.StatusOK, "Subscription activated successfully", data)
}

func (h *PlatformHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	platformID, ok := pathInt(w, r, "platformId", "platform ID")
	if !ok {
		return
	}

	if err := h.platforms.Unsubscribe(r.Context(), user.ID, platformID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Unsubscribed from platform successfully", map[string]int{"platform_id": platformID})
}

func (h *PlatformHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	platforms, err := h.platforms.ListSubscribed(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Subscribed platforms retrieved successfully", platforms)
}
