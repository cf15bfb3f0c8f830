package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/watchtogether/internal/models"
	"github.com/HammerMeetNail/watchtogether/internal/services"
)

type mockIdentityService struct {
	RegisterFunc       func(ctx context.Context, name, email, password string) (*models.User, error)
	AuthenticateFunc   func(ctx context.Context, email, password string) (*models.User, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	ResolveSocialFunc  func(ctx context.Context, profile models.SocialProfile) (*models.User, error)
	LinkProviderFunc   func(ctx context.Context, userID uuid.UUID, profile models.SocialProfile) (*models.User, error)
	UnlinkProviderFunc func(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

func (m *mockIdentityService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password)
	}
	return nil, nil
}

func (m *mockIdentityService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, services.ErrInvalidCredentials
}

func (m *mockIdentityService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, services.ErrUserNotFound
}

func (m *mockIdentityService) ResolveOrCreateBySocialProfile(ctx context.Context, profile models.SocialProfile) (*models.User, error) {
	if m.ResolveSocialFunc != nil {
		return m.ResolveSocialFunc(ctx, profile)
	}
	return nil, nil
}

func (m *mockIdentityService) LinkProvider(ctx context.Context, userID uuid.UUID, profile models.SocialProfile) (*models.User, error) {
	if m.LinkProviderFunc != nil {
		return m.LinkProviderFunc(ctx, userID, profile)
	}
	return nil, nil
}

func (m *mockIdentityService) UnlinkProvider(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if m.UnlinkProviderFunc != nil {
		return m.UnlinkProviderFunc(ctx, userID)
	}
	return nil, nil
}

type mockTokenIssuer struct {
	IssueTokenFunc      func(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	ValidateTokenFunc   func(ctx context.Context, token string) (uuid.UUID, error)
	RevokeTokenFunc     func(ctx context.Context, token string) error
	RevokeAllTokensFunc func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockTokenIssuer) IssueToken(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	if m.IssueTokenFunc != nil {
		return m.IssueTokenFunc(ctx, userID, ttl)
	}
	return "token", nil
}

func (m *mockTokenIssuer) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return uuid.Nil, services.ErrSessionNotFound
}

func (m *mockTokenIssuer) RevokeToken(ctx context.Context, token string) error {
	if m.RevokeTokenFunc != nil {
		return m.RevokeTokenFunc(ctx, token)
	}
	return nil
}

func (m *mockTokenIssuer) RevokeAllTokens(ctx context.Context, userID uuid.UUID) error {
	if m.RevokeAllTokensFunc != nil {
		return m.RevokeAllTokensFunc(ctx, userID)
	}
	return nil
}

type mockProfileFetcher struct {
	enabled   map[string]bool
	FetchFunc func(ctx context.Context, provider, accessToken string) (models.SocialProfile, error)
}

func (m *mockProfileFetcher) Providers() []string {
	var providers []string
	for _, p := range []string{services.ProviderFacebook, services.ProviderGoogle} {
		if m.enabled[p] {
			providers = append(providers, p)
		}
	}
	return providers
}

func (m *mockProfileFetcher) Enabled(provider string) bool {
	return m.enabled[provider]
}

func (m *mockProfileFetcher) Fetch(ctx context.Context, provider, accessToken string) (models.SocialProfile, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, provider, accessToken)
	}
	return models.SocialProfile{}, nil
}

type mockFriendService struct {
	RequestFunc     func(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.Friendship, error)
	RespondFunc     func(ctx context.Context, friendshipID, responderID uuid.UUID, action models.ResponseAction) (*models.Friendship, error)
	BlockFunc       func(ctx context.Context, blockerID, blockedID uuid.UUID) (*models.Friendship, error)
	ListPendingFunc func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error)
	ListSentFunc    func(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error)
	AreFriendsFunc  func(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error)
}

func (m *mockFriendService) RequestFriendship(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.Friendship, error) {
	if m.RequestFunc != nil {
		return m.RequestFunc(ctx, requesterID, recipientID)
	}
	return nil, nil
}

func (m *mockFriendService) RespondToFriendship(ctx context.Context, friendshipID, responderID uuid.UUID, action models.ResponseAction) (*models.Friendship, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, friendshipID, responderID, action)
	}
	return nil, nil
}

func (m *mockFriendService) BlockUser(ctx context.Context, blockerID, blockedID uuid.UUID) (*models.Friendship, error) {
	if m.BlockFunc != nil {
		return m.BlockFunc(ctx, blockerID, blockedID)
	}
	return nil, nil
}

func (m *mockFriendService) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, userID)
	}
	return []models.FriendRequest{}, nil
}

func (m *mockFriendService) ListSentRequests(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error) {
	if m.ListSentFunc != nil {
		return m.ListSentFunc(ctx, userID)
	}
	return []models.FriendWithUser{}, nil
}

func (m *mockFriendService) AreFriends(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error) {
	if m.AreFriendsFunc != nil {
		return m.AreFriendsFunc(ctx, a, b)
	}
	return nil, services.ErrNotFriends
}

type mockInvitationService struct {
	SendFunc         func(ctx context.Context, params models.SendInvitationParams) (*models.WatchInvitation, error)
	RespondFunc      func(ctx context.Context, invitationID, responderID uuid.UUID, action models.ResponseAction) (*models.WatchInvitation, error)
	ListReceivedFunc func(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error)
	ListSentFunc     func(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error)
}

func (m *mockInvitationService) SendInvitation(ctx context.Context, params models.SendInvitationParams) (*models.WatchInvitation, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockInvitationService) RespondToInvitation(ctx context.Context, invitationID, responderID uuid.UUID, action models.ResponseAction) (*models.WatchInvitation, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(ctx, invitationID, responderID, action)
	}
	return nil, nil
}

func (m *mockInvitationService) ListReceived(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error) {
	if m.ListReceivedFunc != nil {
		return m.ListReceivedFunc(ctx, userID, status)
	}
	return []models.InvitationWithFriend{}, nil
}

func (m *mockInvitationService) ListSent(ctx context.Context, userID uuid.UUID, status string) ([]models.InvitationWithFriend, error) {
	if m.ListSentFunc != nil {
		return m.ListSentFunc(ctx, userID, status)
	}
	return []models.InvitationWithFriend{}, nil
}

type mockMediaService struct {
	UpsertFunc        func(ctx context.Context, userID uuid.UUID, params models.UpsertMediaParams) (*models.UserMedia, bool, error)
	FetchByStatusFunc func(ctx context.Context, userID uuid.UUID, status string) ([]models.UserMedia, error)
	FetchByTmdbIDFunc func(ctx context.Context, userID uuid.UUID, tmdbID int, mediaType string) (*models.MediaWithPartner, error)
	StatsFunc         func(ctx context.Context, userID uuid.UUID) (*models.MediaStats, error)
}

func (m *mockMediaService) Upsert(ctx context.Context, userID uuid.UUID, params models.UpsertMediaParams) (*models.UserMedia, bool, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, params)
	}
	return nil, false, nil
}

func (m *mockMediaService) FetchByStatus(ctx context.Context, userID uuid.UUID, status string) ([]models.UserMedia, error) {
	if m.FetchByStatusFunc != nil {
		return m.FetchByStatusFunc(ctx, userID, status)
	}
	return []models.UserMedia{}, nil
}

func (m *mockMediaService) FetchByTmdbID(ctx context.Context, userID uuid.UUID, tmdbID int, mediaType string) (*models.MediaWithPartner, error) {
	if m.FetchByTmdbIDFunc != nil {
		return m.FetchByTmdbIDFunc(ctx, userID, tmdbID, mediaType)
	}
	return nil, services.ErrMediaNotFound
}

func (m *mockMediaService) Stats(ctx context.Context, userID uuid.UUID) (*models.MediaStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID)
	}
	return &models.MediaStats{}, nil
}

type mockSocialService struct {
	ListFriendsFunc     func(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error)
	SharedActivityFunc  func(ctx context.Context, userID uuid.UUID) (*models.SharedActivity, error)
	RecommendationsFunc func(ctx context.Context, userID uuid.UUID) (map[models.MediaType]int, error)
	WantToSeeFunc       func(ctx context.Context, userID uuid.UUID) ([]models.WantToSee, error)
	ProfileFunc         func(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

func (m *mockSocialService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendWithUser, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	return []models.FriendWithUser{}, nil
}

func (m *mockSocialService) SharedActivity(ctx context.Context, userID uuid.UUID) (*models.SharedActivity, error) {
	if m.SharedActivityFunc != nil {
		return m.SharedActivityFunc(ctx, userID)
	}
	return &models.SharedActivity{}, nil
}

func (m *mockSocialService) FriendRecommendations(ctx context.Context, userID uuid.UUID) (map[models.MediaType]int, error) {
	if m.RecommendationsFunc != nil {
		return m.RecommendationsFunc(ctx, userID)
	}
	return map[models.MediaType]int{}, nil
}

func (m *mockSocialService) FriendsWantToSee(ctx context.Context, userID uuid.UUID) ([]models.WantToSee, error) {
	if m.WantToSeeFunc != nil {
		return m.WantToSeeFunc(ctx, userID)
	}
	return []models.WantToSee{}, nil
}

func (m *mockSocialService) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return &models.Profile{}, nil
}

type mockPlatformService struct {
	ListFunc           func(ctx context.Context) ([]models.Platform, error)
	SubscribeFunc      func(ctx context.Context, userID uuid.UUID, platformID int) (bool, error)
	UnsubscribeFunc    func(ctx context.Context, userID uuid.UUID, platformID int) error
	ListSubscribedFunc func(ctx context.Context, userID uuid.UUID) ([]models.Platform, error)
}

func (m *mockPlatformService) List(ctx context.Context) ([]models.Platform, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.Platform{}, nil
}

func (m *mockPlatformService) Subscribe(ctx context.Context, userID uuid.UUID, platformID int) (bool, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, userID, platformID)
	}
	return true, nil
}

func (m *mockPlatformService) Unsubscribe(ctx context.Context, userID uuid.UUID, platformID int) error {
	if m.UnsubscribeFunc != nil {
		return m.UnsubscribeFunc(ctx, userID, platformID)
	}
	return nil
}

func (m *mockPlatformService) ListSubscribed(ctx context.Context, userID uuid.UUID) ([]models.Platform, error) {
	if m.ListSubscribedFunc != nil {
		return m.ListSubscribedFunc(ctx, userID)
	}
	return []models.Platform{}, nil
}

var (
	_ services.IdentityServiceInterface   = (*mockIdentityService)(nil)
	_ services.TokenIssuer                = (*mockTokenIssuer)(nil)
	_ services.ProfileFetcher             = (*mockProfileFetcher)(nil)
	_ services.FriendServiceInterface     = (*mockFriendService)(nil)
	_ services.InvitationServiceInterface = (*mockInvitationService)(nil)
	_ services.MediaServiceInterface      = (*mockMediaService)(nil)
	_ services.SocialServiceInterface     = (*mockSocialService)(nil)
	_ services.PlatformServiceInterface   = (*mockPlatformService)(nil)
)
