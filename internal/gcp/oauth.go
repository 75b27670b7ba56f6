package gcp

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/blogger/v3"
	"google.golang.org/api/drive/v3"
)

// OAuthClient exchanges a long-lived refresh token for access tokens. The
// token source is built on first use and shared for the process lifetime.
type OAuthClient struct {
	config       *oauth2.Config
	refreshToken string

	once        sync.Once
	tokenSource oauth2.TokenSource
}

// NewOAuthClient creates a refresh-token client against Google's endpoint.
// No network call is made until a token is needed.
func NewOAuthClient(clientID, clientSecret, refreshToken, redirectURL string) *OAuthClient {
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{drive.DriveScope, blogger.BloggerScope},
		},
		refreshToken: refreshToken,
	}
}

// TokenSource returns the cached, auto-refreshing token source.
func (c *OAuthClient) TokenSource() oauth2.TokenSource {
	c.once.Do(func() {
		// The source outlives any single request, so it is not tied to one.
		c.tokenSource = c.config.TokenSource(context.Background(), &oauth2.Token{
			RefreshToken: c.refreshToken,
		})
	})
	return c.tokenSource
}
