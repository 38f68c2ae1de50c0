package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotpin/internal/server"
	"github.com/desertthunder/spotpin/internal/services"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/desertthunder/spotpin/internal/ui"
	"github.com/urfave/cli/v3"
)

// Login runs the authorization code flow with a local callback server and prints the refresh token.
// --save merges the credentials into the .env file.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	auth, err := services.NewAuthenticator(r.config.Spotify)
	if err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv, err := server.Listen(addr, server.NewOAuthHandler(auth, state), r.logger)
	if err != nil {
		return err
	}

	authURL := auth.AuthURL(state)
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("failed to open browser automatically", "error", err)
			r.writePlainln("%s", ui.Warning("⚠ Could not open browser automatically."))
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", server.DefaultTimeout)

	token, err := srv.Wait(ctx, server.DefaultTimeout)
	if err != nil {
		return err
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token in response", shared.ErrAuth)
	}

	r.logger.Info("authorization complete")
	r.writePlain("%s\n\n", ui.Success("✓ Authorization successful"))

	if !cmd.Bool("save") {
		r.writePlain("Add this to your .env file:\n%s=%s\n", shared.EnvRefreshToken, token.RefreshToken)
		return nil
	}

	envFile := cmd.String("env-file")
	if err := shared.SaveEnv(envFile, map[string]string{
		shared.EnvClientID:     r.config.Spotify.ClientID,
		shared.EnvClientSecret: r.config.Spotify.ClientSecret,
		shared.EnvRefreshToken: token.RefreshToken,
	}); err != nil {
		return err
	}
	r.config.Spotify.RefreshToken = token.RefreshToken
	return r.writePlain("Credentials saved to %s\n", envFile)
}
