package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/playlistor/playlistor/internal/server"
	"github.com/playlistor/playlistor/internal/services"
	"github.com/playlistor/playlistor/internal/shared"
)

// AuthSpotify performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// exchanges the auth code for tokens which are saved to the config file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	r.reloadConfig(configPath)

	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	spotify, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}
	r.spotify = spotify

	state, err := shared.GenerateState()
	if err != nil {
		return err
	}

	handler := server.NewOAuthHandler(spotify.OAuthConfig(), state)
	callback := server.NewCallbackServer(r.config.Server.Host, r.config.Server.Port, handler)

	authURL := spotify.GetAuthURL(state)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization at %s...\n", callback.Addr())

	token, err := callback.WaitForToken(ctx)
	if err != nil {
		return err
	}

	spotify.SetToken(ctx, token)

	if err := r.saveSpotifyToken(configPath, token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: playlistor convert <playlist-url>\n")

	return nil
}

// AuthAppleMusic stores a Music-User-Token for library writes.
//
// The token comes from a MusicKit authorization in the browser; there is no
// localhost flow for it, so the user pastes it in.
func (r *Runner) AuthAppleMusic(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	r.reloadConfig(configPath)

	userToken := cmd.StringArg("token")
	if userToken == "" {
		return fmt.Errorf("%w: music user token", shared.ErrMissingArgument)
	}

	if r.config.Credentials.AppleMusic.DeveloperToken == "" {
		return fmt.Errorf("%w: apple_music developer_token must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	r.config.Credentials.AppleMusic.MusicUserToken = userToken
	if err := shared.SaveConfig(configPath, r.config); err != nil {
		return err
	}

	r.writePlainln("✓ Apple Music user token saved")
	r.writePlain("✓ Config updated at %s\n", configPath)

	return nil
}

// AuthStatus reports which services have usable credentials.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	spotify := r.config.Credentials.Spotify
	apple := r.config.Credentials.AppleMusic

	r.writePlainHeader("Authentication Status")

	if spotify.ClientID != "" && spotify.ClientSecret != "" {
		r.writePlain("Spotify credentials: ✓ configured\n")
	} else {
		r.writePlain("Spotify credentials: ✗ missing\n")
	}
	if spotify.Token() != nil {
		r.writePlain("Spotify token: ✓ present\n")
	} else {
		r.writePlain("Spotify token: ✗ run 'playlistor auth spotify'\n")
	}

	if apple.DeveloperToken != "" {
		r.writePlain("Apple Music developer token: ✓ configured\n")
	} else {
		r.writePlain("Apple Music developer token: ✗ missing\n")
	}
	if apple.MusicUserToken != "" {
		r.writePlain("Apple Music user token: ✓ present\n")
	} else {
		r.writePlain("Apple Music user token: ✗ run 'playlistor auth apple-music <token>'\n")
	}

	return nil
}
