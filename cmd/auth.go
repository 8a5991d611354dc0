package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wedx/internal/server"
	"github.com/desertthunder/wedx/internal/services"
	"github.com/desertthunder/wedx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const browserLoginTimeout = 5 * time.Minute

// AuthLogin signs in and saves the token to the configured token path.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	conf := services.NewOAuthConfig(r.config.Auth)

	var (
		token *oauth2.Token
		err   error
	)
	if cmd.Bool("browser") {
		token, err = r.browserLogin(ctx, conf)
	} else {
		r.logger.Info("signing in with password", "email", cmd.String("email"))
		token, err = services.PasswordLogin(ctx, conf, r.httpClient, cmd.String("email"), cmd.String("password"))
	}
	if err != nil {
		return err
	}

	if err := r.tokens.Save(token); err != nil {
		return err
	}
	r.logger.Info("token saved", "path", r.tokens.Path())

	return r.writePlain("✓ Signed in\n")
}

// browserLogin runs the authorization code flow with a local callback server.
func (r *Runner) browserLogin(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	handler := server.NewOAuthHandler(conf, shared.GenerateID())

	router := server.NewBasicRouter()
	router.Use(server.Recoverer(r.logger), server.RequestLogger(r.logger))
	router.Handler(handler)

	ctx, cancel := context.WithTimeout(ctx, browserLoginTimeout)
	defer cancel()

	srv := server.New(r.config.Server.Addr(), router)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ctx, srv)
	}()

	authURL := handler.AuthCodeURL()
	r.writePlain("Opening the browser to sign in. If it does not open, visit:\n%s\n", authURL)
	if err := shared.OpenBrowser(ctx, authURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
	}

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		return result.Token, nil
	case err := <-serveErr:
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("callback server stopped: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, ctx.Err())
	}
}

// AuthLogout deletes the saved token. The draft only lives in memory, so nothing else is kept.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.tokens.Delete(); err != nil {
		return err
	}
	r.logger.Info("token deleted", "path", r.tokens.Path())
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the saved token and checks the backend's /health endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	token, err := r.tokens.Load()
	switch {
	case errors.Is(err, shared.ErrNoToken):
		r.writePlain("Authentication: ✗ Not signed in\n")
	case err != nil:
		return err
	case !token.Expiry.IsZero() && token.Expiry.Before(time.Now()) && token.RefreshToken == "":
		r.writePlain("Authentication: ✗ Token expired at %s\n", token.Expiry.Format(time.RFC3339))
	case token.Expiry.IsZero():
		r.writePlain("Authentication: ✓ Signed in\n")
	default:
		r.writePlain("Authentication: ✓ Signed in (token expires %s)\n", token.Expiry.Format(time.RFC3339))
	}

	if r.api == nil {
		return nil
	}

	health, err := r.api.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	r.writePlain("✓ Service is healthy\n")
	r.writePlain("Status: %s\n", health.Status)
	if health.Version != "" {
		r.writePlain("Version: %s\n", health.Version)
	}
	return nil
}

// AuthImportCurl saves the bearer token found in a cURL command copied from the browser.
func (r *Runner) AuthImportCurl(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var (
		req *shared.CurlRequest
		err error
	)
	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
	}

	bearer, ok := req.BearerToken()
	if !ok {
		return fmt.Errorf("%w: no bearer token in the Authorization header", shared.ErrInvalidInput)
	}

	if err := r.tokens.Save(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}); err != nil {
		return err
	}
	r.logger.Info("token imported", "path", r.tokens.Path(), "url", req.URL)

	return r.writePlain("✓ Token imported to %s\n", r.tokens.Path())
}
