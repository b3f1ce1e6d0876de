package parser

import (
	"context"
	"fmt"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/shared"
)

// Parser resolves one service's playlist URLs into source playlists.
type Parser interface {
	// Supports reports whether this parser handles the given URL.
	Supports(url string) bool

	// Parse fetches and normalizes the playlist behind url.
	Parse(ctx context.Context, url string) (*models.SourcePlaylist, error)
}

// ForURL returns the first parser that supports url.
func ForURL(url string, parsers ...Parser) (Parser, error) {
	for _, p := range parsers {
		if p.Supports(url) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no parser for %s", shared.ErrInvalidInput, url)
}

// DirectionForURL infers the conversion direction from the source URL.
func DirectionForURL(url string) (models.Direction, error) {
	switch {
	case (&AppleMusicParser{}).Supports(url):
		return models.AppleMusicToSpotify, nil
	case (&SpotifyParser{}).Supports(url):
		return models.SpotifyToAppleMusic, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized playlist url %s", shared.ErrInvalidInput, url)
	}
}
