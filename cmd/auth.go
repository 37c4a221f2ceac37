package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/vidhub/internal/server"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// AuthYouTube runs the OAuth2 consent flow in the browser and stores the token in the config file.
func (r *Runner) AuthYouTube(ctx context.Context, cmd *cli.Command) error {
	yt := r.config.YouTube
	if yt.ClientID == "" || yt.ClientSecret == "" {
		return fmt.Errorf("%w: set youtube.client_id and youtube.client_secret (or %s / %s)",
			shared.ErrMissingCredentials, shared.EnvYouTubeClientID, shared.EnvYouTubeSecret)
	}

	noBrowser := cmd.Bool("no-browser")
	open := func(authURL string) error {
		r.writePlain("Open this URL to authorize vidhub:\n%s\n\n", authURL)
		if noBrowser {
			return nil
		}
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
		return nil
	}

	token, err := server.Authorize(ctx, yt.OAuthConfig(), open, cmd.Duration("timeout"), r.logger)
	if err != nil {
		return err
	}

	if err := r.saveToken(token); err != nil {
		return err
	}

	r.logger.Info("youtube token saved", "path", r.configPath, "expires", token.Expiry)
	return r.writePlain("✓ YouTube authorized; token saved to %s\n", r.configPath)
}

// saveToken stores token in the config and writes it to configPath when one is set.
func (r *Runner) saveToken(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}
	if err := r.config.YouTube.SetToken(token); err != nil {
		return fmt.Errorf("failed to update youtube configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// AuthStatus reports which YouTube credentials are configured without calling the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	yt := r.config.YouTube
	mark := func(ok bool) string {
		if ok {
			return "✓"
		}
		return "✗"
	}

	r.writePlainHeader("YouTube credentials")
	r.writePlain("%s API key\n", mark(yt.APIKey != ""))
	r.writePlain("%s OAuth client\n", mark(yt.ClientID != "" && yt.ClientSecret != ""))
	r.writePlain("%s Access token\n", mark(yt.AccessToken != ""))
	r.writePlain("%s Refresh token\n", mark(yt.RefreshToken != ""))

	if yt.APIKey == "" && yt.Token() == nil {
		return fmt.Errorf("%w: configure youtube.api_key or run 'vidhub auth youtube'", shared.ErrMissingCredentials)
	}
	return nil
}
