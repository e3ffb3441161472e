package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"folio/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProfile is the identity Google vouches for after a code exchange, or
// the profile a client posts to /auth/google.
type GoogleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleConfig configures GoogleProvider. Endpoint and UserInfoURL default to
// Google's production endpoints.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

// GoogleProvider runs the OAuth 2.0 authorization code flow against Google.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider builds a GoogleProvider from cfg.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

// AuthCodeURL returns the consent screen URL carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades an authorization code for the user's verified profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, models.NewUnauthorizedError("Google authorization failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("failed to get google user info: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewUnauthorizedError(fmt.Sprintf("Google user info request failed with status %d", resp.StatusCode))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("failed to decode google user info: %w", err))
	}
	if info.Email == "" || !info.VerifiedEmail {
		return nil, models.NewUnauthorizedError("Google account email is not verified")
	}

	return &GoogleProfile{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
