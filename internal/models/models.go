package models

import (
	"fmt"
	"strings"
)

// Service name constants used in results, logs, and persisted rows.
const (
	ServiceSpotify    = "spotify"
	ServiceAppleMusic = "apple-music"
)

// Direction selects the source and destination service for one conversion.
type Direction int

const (
	// AppleMusicToSpotify converts an Apple Music playlist into a Spotify playlist.
	AppleMusicToSpotify Direction = iota
	// SpotifyToAppleMusic converts a Spotify playlist into an Apple Music playlist.
	SpotifyToAppleMusic
)

func (d Direction) String() string {
	switch d {
	case AppleMusicToSpotify:
		return "apple-music:spotify"
	case SpotifyToAppleMusic:
		return "spotify:apple-music"
	default:
		return "unknown"
	}
}

// ParseDirection parses the "source:destination" form produced by String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "apple-music:spotify":
		return AppleMusicToSpotify, nil
	case "spotify:apple-music":
		return SpotifyToAppleMusic, nil
	default:
		return 0, fmt.Errorf("invalid direction %q", s)
	}
}

// Source returns the service name the playlist is read from.
func (d Direction) Source() string {
	if d == SpotifyToAppleMusic {
		return ServiceSpotify
	}
	return ServiceAppleMusic
}

// Destination returns the service name the playlist is written to.
func (d Direction) Destination() string {
	if d == SpotifyToAppleMusic {
		return ServiceAppleMusic
	}
	return ServiceSpotify
}

// SourceTrack is one track of a source playlist as produced by the parser.
// Artists preserves the order the source service lists them in.
type SourceTrack struct {
	ID      string
	Name    string
	Artists []string
}

// ArtistLine returns the artists joined into a single display string.
func (t SourceTrack) ArtistLine() string {
	return strings.Join(t.Artists, ",")
}

// SourcePlaylist is a parsed playlist passed by value into the conversion
// engine. CanonicalURL is the playlist URL with query parameters stripped
// and is the identity used for caching and idempotency.
type SourcePlaylist struct {
	Title        string
	Creator      string
	ArtworkURL   string
	CanonicalURL string
	Tracks       []SourceTrack
}

// TrackMapping is a confirmed correspondence between a track's Spotify and
// Apple Music catalog ids. At most one mapping exists per SpotifyID and per
// AppleMusicID; conflicting upserts update the opposite-service id.
type TrackMapping struct {
	Name         string
	Artists      string
	SpotifyID    string
	AppleMusicID string
}

// MatchOutcome is the result of searching the destination catalog for one
// source track. DestinationID is empty when the search missed.
type MatchOutcome struct {
	Track         SourceTrack
	DestinationID string
}

// Matched reports whether the destination catalog yielded an accepted match.
func (o MatchOutcome) Matched() bool {
	return o.DestinationID != ""
}

// ConversionResult is returned once per conversion and never mutated after
// construction. TrackCount is the total number of source tracks, matched or
// not. PlaylistURL is empty for destinations that return no shareable URL
// (Apple Music library playlists).
type ConversionResult struct {
	PlaylistURL  string        `json:"playlist_url,omitempty"`
	TrackCount   int           `json:"number_of_tracks"`
	MissedTracks []SourceTrack `json:"missed_tracks"`
	Source       string        `json:"source"`
	Destination  string        `json:"destination"`
}

// MatchedCount returns the number of source tracks that made it into the
// destination playlist.
func (r ConversionResult) MatchedCount() int {
	return r.TrackCount - len(r.MissedTracks)
}
