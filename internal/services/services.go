// package services defines the Destination capability for music providers
//
// Spotify, Apple Music
package services

import (
	"context"
	"fmt"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/shared"
)

// Destination is the capability a streaming provider exposes to the
// conversion engine: catalog search plus batched playlist assembly.
type Destination interface {
	// Name returns the service name (e.g. "spotify", "apple-music").
	Name() string

	// SearchTrack resolves a source track to the id of its best catalog
	// match, querying with the provider's own artist-count cap and limit 1.
	// Returns shared.ErrTrackNotFound when the catalog has no match.
	SearchTrack(ctx context.Context, track models.SourceTrack) (string, error)

	// CreatePlaylist creates a playlist and submits the initial batch of
	// track ids in the same operation. len(initial) must not exceed
	// MaxBatchItems; the caller chunks before submission.
	CreatePlaylist(ctx context.Context, title, description string, initial []string) (*CreatedPlaylist, error)

	// AddTracks appends one batch of track ids to an existing playlist.
	// An empty batch is a no-op, not an error.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// MaxBatchItems returns the provider's maximum items per playlist call.
	MaxBatchItems() int
}

// CreatedPlaylist identifies a playlist created on a destination service.
// URL is empty for providers that return no shareable link.
type CreatedPlaylist struct {
	ID  string
	URL string
}

// submitError classifies a failed playlist-submission response by status
// code: server-side failures are retryable, everything else is fatal.
func submitError(service string, status int) error {
	if status >= 500 {
		return fmt.Errorf("%w: %s returned status %d", shared.ErrRetryableUpstream, service, status)
	}
	return fmt.Errorf("%w: %s returned status %d", shared.ErrUpstream, service, status)
}
