package parser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/services"
	"github.com/playlistor/playlistor/internal/shared"
)

// SpotifyParser resolves Spotify playlist URLs through the Web API.
// It requires an authenticated SpotifyService.
type SpotifyParser struct {
	client *services.SpotifyService
}

// NewSpotifyParser creates a parser backed by the given API client.
func NewSpotifyParser(client *services.SpotifyService) *SpotifyParser {
	return &SpotifyParser{client: client}
}

// Supports reports whether rawURL points at a Spotify playlist.
func (p *SpotifyParser) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), "open.spotify.com") &&
		strings.Contains(u.Path, "/playlist/")
}

// Parse fetches the playlist through the API and normalizes it.
func (p *SpotifyParser) Parse(ctx context.Context, rawURL string) (*models.SourcePlaylist, error) {
	canonical, err := shared.CanonicalURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	id, err := playlistIDFromURL(canonical)
	if err != nil {
		return nil, err
	}

	remote, err := p.client.Playlist(ctx, id)
	if err != nil {
		return nil, err
	}

	playlist := &models.SourcePlaylist{
		Title:        remote.Name,
		Creator:      remote.Owner.DisplayName,
		CanonicalURL: canonical,
	}
	if playlist.Creator == "" {
		playlist.Creator = remote.Owner.ID
	}
	if len(remote.Images) > 0 {
		playlist.ArtworkURL = remote.Images[0].URL
	}

	for _, item := range remote.Tracks.Items {
		track := item.Track
		if track.ID == "" {
			// Local files and removed tracks have no catalog entry.
			continue
		}

		artists := make([]string, 0, len(track.Artists))
		for _, artist := range track.Artists {
			artists = append(artists, artist.Name)
		}

		playlist.Tracks = append(playlist.Tracks, models.SourceTrack{
			ID:      track.ID,
			Name:    track.Name,
			Artists: artists,
		})
	}

	return playlist, nil
}

// playlistIDFromURL extracts the id from /playlist/<id> paths.
func playlistIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if segment == "playlist" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}

	return "", fmt.Errorf("%w: no playlist id in %s", shared.ErrInvalidInput, rawURL)
}
