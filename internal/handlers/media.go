package handlers

import (
	"fmt"
	"net/http"

	"github.com/HammerMeetNail/watchtogether/internal/models"
	"github.com/HammerMeetNail/watchtogether/internal/services"
)

type MediaHandler struct {
	media services.MediaServiceInterface
}

func NewMediaHandler(media services.MediaServiceInterface) *MediaHandler {
	return &MediaHandler{media: media}
}

// UpsertMediaRequest mirrors models.UpsertMediaParams. A missing liked keeps
// the stored value.
type UpsertMediaRequest struct {
	TmdbID      int     `json:"tmdb_id"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Recommended bool    `json:"recommended"`
	Liked       *bool   `json:"liked"`
	Episode     *string `json:"episode"`
}

func (h *MediaHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req UpsertMediaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	media, created, err := h.media.Upsert(r.Context(), user.ID, models.UpsertMediaParams{
		TmdbID:      req.TmdbID,
		Type:        models.MediaType(req.Type),
		Status:      models.MediaStatus(req.Status),
		Recommended: req.Recommended,
		Liked:       req.Liked,
		Episode:     req.Episode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if created {
		writeSuccess(w, http.StatusCreated, "Media added successfully", media)
		return
	}
	writeSuccess(w, http.StatusOK, "Media updated successfully", media)
}

func (h *MediaHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	status := r.PathValue("status")
	media, err := h.media.FetchByStatus(r.Context(), user.ID, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Media with status '%s' retrieved successfully", status), media)
}

func (h *MediaHandler) ByTmdbID(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	tmdbID, ok := pathInt(w, r, "tmdbId", "TMDB ID")
	if !ok {
		return
	}

	media, err := h.media.FetchByTmdbID(r.Context(), user.ID, tmdbID, r.PathValue("type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Media retrieved successfully", media)
}

func (h *MediaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	stats, err := h.media.Stats(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Media statistics retrieved successfully", stats)
}
