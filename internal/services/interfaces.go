package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/models"
)

// IdentityServiceInterface defines the contract for resolving credentials to users.
type IdentityServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ResolveOrCreateBySocialProfile(ctx context.Context, profile models.SocialProfile) (*models.User, error)
	LinkProvider(ctx context.Context, userID uuid.UUID, profile models.SocialProfile) (*models.User, error)
	UnlinkProvider(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// ProfileFetcher resolves a provider access token to a social profile.
type ProfileFetcher interface {
	Providers() []string
	Enabled(provider string) bool
	Fetch(ctx context.Context, provider, accessToken string) (models.SocialProfile, error)
}

// TokenIssuer defines the contract for bearer token management.
type TokenIssuer interface {
	IssueToken(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllTokens(ctx context.Context, userID uuid.UUID) error
}

// FriendServiceInterface defines the contract for friendship transitions.
type FriendServiceInterface interface {
	RequestFriendship(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.Friendship, error)
	RespondToFriendship(ctx context.Context, friendshipID, responderID uuid.UUID, action models.ResponseAction) (*models.Friendship, error)
	BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) (*models.Friendship, error)
	ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error)
	ListSentRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error)
}

// InvitationServiceInterface defines the contract for watch invitations.
type InvitationServiceInterface interface {
	SendInvitation(ctx context.Context, params models.SendInvitationParams) (*models.WatchInvitation, error)
	RespondToInvitation(ctx context.Context, invitationID, responderID uuid.UUID, action models.ResponseAction) (*models.WatchInvitation, error)
	ListReceived(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error)
	ListSent(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error)
}

// MediaServiceInterface defines the contract for the per-user media ledger.
type MediaServiceInterface interface {
	Upsert(ctx context.Context, userID uuid.UUID, params models.UpsertMediaParams) (*models.UserMedia, bool, error)
	FetchByStatus(ctx context.Context, userID uuid.UUID, status string) ([]models.UserMedia, error)
	FetchByTmdbID(ctx context.Context, userID uuid.UUID, tmdbID int, mediaType string) (*models.MediaWithPartner, error)
	Stats(ctx context.Context, userID uuid.UUID) (*models.MediaStats, error)
}

// SocialServiceInterface defines the contract for derived social views.
type SocialServiceInterface interface {
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error)
	SharedActivity(ctx context.Context, userID uuid.UUID) (*models.SharedActivity, error)
	FriendRecommendations(ctx context.Context, userID uuid.UUID) (map[models.MediaType]int, error)
	FriendsWantToSee(ctx context.Context, userID uuid.UUID) ([]models.WantToSee, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// PlatformServiceInterface defines the contract for the platform catalog.
type PlatformServiceInterface interface {
	List(ctx context.Context) ([]models.Platform, error)
	Subscribe(ctx context.Context, userID uuid.UUID, platformID int) (bool, error)
	Unsubscribe(ctx context.Context, userID uuid.UUID, platformID int) error
	ListSubscribed(ctx context.Context, userID uuid.UUID) ([]models.Platform, error)
}

var (
	_ IdentityServiceInterface   = (*IdentityService)(nil)
	_ ProfileFetcher             = (*SocialProfileFetcher)(nil)
	_ TokenIssuer                = (*AuthService)(nil)
	_ FriendServiceInterface     = (*FriendService)(nil)
	_ InvitationServiceInterface = (*InvitationService)(nil)
	_ MediaServiceInterface      = (*MediaService)(nil)
	_ SocialServiceInterface     = (*SocialService)(nil)
	_ PlatformServiceInterface   = (*PlatformService)(nil)
)
