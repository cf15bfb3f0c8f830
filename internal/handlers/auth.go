package handlers

import (
	"net/http"
	"time"

	"github.com/HammerMeetNail/watchtogether/internal/models"
	"github.com/HammerMeetNail/watchtogether/internal/services"
)

type AuthHandler struct {
	identity services.IdentityServiceInterface
	tokens   services.TokenIssuer
	profiles services.ProfileFetcher
	tokenTTL time.Duration
}

func NewAuthHandler(identity services.IdentityServiceInterface, tokens services.TokenIssuer, profiles services.ProfileFetcher, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		tokens:   tokens,
		profiles: profiles,
		tokenTTL: tokenTTL,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProviderTokenRequest struct {
	AccessToken string `json:"access_token"`
}

// AuthResponse carries the bearer token clients send as Authorization.
type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.identity.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.issue(w, r, user, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.issue(w, r, user, http.StatusOK, "Login successful")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if requireUser(w, r) == nil {
		return
	}

	if err := h.tokens.RevokeToken(r.Context(), GetTokenFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	if err := h.tokens.RevokeAllTokens(r.Context(), user.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Logged out from all devices successfully", nil)
}

// Refresh rotates the current token: a new one is issued before the old one
// is revoked so a failure never leaves the client without a token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	token, err := h.tokens.IssueToken(r.Context(), user.ID, h.tokenTTL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.tokens.RevokeToken(r.Context(), GetTokenFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Token refreshed successfully", h.response(user, token))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	writeSuccess(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Providers retrieved successfully", map[string][]string{
		"providers": h.profiles.Providers(),
	})
}

// SocialToken signs in with an access token obtained from the provider's
// client-side flow, creating the account on first use.
func (h *AuthHandler) SocialToken(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.fetchProfile(w, r)
	if !ok {
		return
	}

	user, err := h.identity.ResolveOrCreateBySocialProfile(r.Context(), profile)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.issue(w, r, user, http.StatusOK, "Login successful")
}

func (h *AuthHandler) LinkProvider(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	profile, ok := h.fetchProfile(w, r)
	if !ok {
		return
	}

	updated, err := h.identity.LinkProvider(r.Context(), user.ID, profile)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Social account linked successfully", updated)
}

func (h *AuthHandler) UnlinkProvider(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	updated, err := h.identity.UnlinkProvider(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Social account unlinked successfully", updated)
}

func (h *AuthHandler) fetchProfile(w http.ResponseWriter, r *http.Request) (models.SocialProfile, bool) {
	provider := r.PathValue("provider")
	if !h.profiles.Enabled(provider) {
		writeServiceError(w, r, services.ErrUnsupportedProvider)
		return models.SocialProfile{}, false
	}

	var req ProviderTokenRequest
	if err := decodeJSON(r, &req); err != nil || req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "access_token is required")
		return models.SocialProfile{}, false
	}

	profile, err := h.profiles.Fetch(r.Context(), provider, req.AccessToken)
	if err != nil {
		writeServiceError(w, r, err)
		return models.SocialProfile{}, false
	}
	return profile, true
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, user *models.User, status int, message string) {
	token, err := h.tokens.IssueToken(r.Context(), user.ID, h.tokenTTL)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, status, message, h.response(user, token))
}

func (h *AuthHandler) response(user *models.User, token string) AuthResponse {
	return AuthResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.tokenTTL / time.Second),
	}
}
