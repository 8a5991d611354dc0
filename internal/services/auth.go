package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/wedx/internal/shared"
	"golang.org/x/oauth2"
)

// NewOAuthConfig builds the OAuth2 client configuration for the backend's auth server.
func NewOAuthConfig(cfg shared.AuthConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.AuthURL,
			TokenURL:  cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// PasswordLogin exchanges an email and password for a token using the resource owner password grant.
//
// client, when non-nil, is used for the token request.
func PasswordLogin(ctx context.Context, conf *oauth2.Config, client *http.Client, email, password string) (*oauth2.Token, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password", shared.ErrMissingCredentials)
	}
	if client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	}

	token, err := conf.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// StoredTokenSource returns a refreshing token source over the token saved in store,
// writing refreshed tokens back to it. A missing token yields [shared.ErrNoToken].
func StoredTokenSource(ctx context.Context, conf *oauth2.Config, store *shared.TokenStore) (oauth2.TokenSource, error) {
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	src := conf.TokenSource(ctx, token)
	return shared.NewPersistingTokenSource(src, store, token), nil
}
