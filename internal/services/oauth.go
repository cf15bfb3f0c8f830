package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/HammerMeetNail/watchtogether/internal/logging"
	"github.com/HammerMeetNail/watchtogether/internal/models"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	facebookMeURL     = "https://graph.facebook.com/me"
)

var (
	ErrUnsupportedProvider = newError(ErrNotFound, "Authentication provider not supported")

	// ErrInvalidProviderToken means the provider rejected the access token (401).
	ErrInvalidProviderToken = errors.New("provider rejected the access token")
	// ErrProviderUnavailable means the provider could not be reached (502).
	ErrProviderUnavailable = errors.New("authentication provider is unavailable")
)

// SocialProfileFetcher exchanges a provider access token for the profile the
// provider reports. Only providers with a configured client id are enabled.
type SocialProfileFetcher struct {
	client    *http.Client
	endpoints map[string]string
}

// NewSocialProfileFetcher enables google and facebook when their client ids
// are non-empty.
func NewSocialProfileFetcher(googleClientID, facebookClientID string) *SocialProfileFetcher {
	f := &SocialProfileFetcher{
		client:    &http.Client{Timeout: 10 * time.Second},
		endpoints: map[string]string{},
	}
	if googleClientID != "" {
		f.endpoints[ProviderGoogle] = googleUserInfoURL
	}
	if facebookClientID != "" {
		f.endpoints[ProviderFacebook] = facebookMeURL
	}
	return f
}

// WithEndpoint points a provider at another profile URL, enabling it.
func (f *SocialProfileFetcher) WithEndpoint(provider, endpoint string) *SocialProfileFetcher {
	f.endpoints[provider] = endpoint
	return f
}

func (f *SocialProfileFetcher) Providers() []string {
	providers := make([]string, 0, len(f.endpoints))
	for p := range f.endpoints {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

func (f *SocialProfileFetcher) Enabled(provider string) bool {
	_, ok := f.endpoints[provider]
	return ok
}

func (f *SocialProfileFetcher) Fetch(ctx context.Context, provider, accessToken string) (models.SocialProfile, error) {
	endpoint, ok := f.endpoints[provider]
	if !ok {
		return models.SocialProfile{}, ErrUnsupportedProvider
	}
	if accessToken == "" {
		return models.SocialProfile{}, ErrInvalidProviderToken
	}

	switch provider {
	case ProviderFacebook:
		var me struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Email   string `json:"email"`
			Picture struct {
				Data struct {
					URL string `json:"url"`
				} `json:"data"`
			} `json:"picture"`
		}
		q := url.Values{}
		q.Set("fields", "id,name,email,picture.type(large)")
		q.Set("access_token", accessToken)
		if err := f.getJSON(ctx, provider, endpoint+"?"+q.Encode(), "", &me); err != nil {
			return models.SocialProfile{}, err
		}
		return models.SocialProfile{
			Provider:   provider,
			ProviderID: me.ID,
			Email:      me.Email,
			Name:       me.Name,
			Avatar:     me.Picture.Data.URL,
		}, nil
	default:
		var info struct {
			Sub     string `json:"sub"`
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := f.getJSON(ctx, provider, endpoint, accessToken, &info); err != nil {
			return models.SocialProfile{}, err
		}
		return models.SocialProfile{
			Provider:   provider,
			ProviderID: info.Sub,
			Email:      info.Email,
			Name:       info.Name,
			Avatar:     info.Picture,
		}, nil
	}
}

func (f *SocialProfileFetcher) getJSON(ctx context.Context, provider, endpoint, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden:
		return ErrInvalidProviderToken
	case resp.StatusCode != http.StatusOK:
		logging.FromContext(ctx).Warn("provider profile request failed", logging.Fields{
			"provider": provider,
			"status":   resp.StatusCode,
		})
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding profile: %v", ErrProviderUnavailable, err)
	}
	return nil
}
