// Package services defines the [Destination] capability interface for music
// streaming providers and implements it for Spotify and Apple Music.
//
// # Destination Interface
//
// A Destination resolves source tracks against its own catalog and assembles
// playlists from the matches. The conversion engine treats all destinations
// uniformly; provider idiosyncrasies stay inside each implementation:
//
//   - Query construction: Spotify search relevance degrades with long artist
//     lists, so [SpotifyService] caps the query at two artists.
//     [AppleMusicService] uses the first artist only.
//   - Batch limits: both providers accept at most 100 items per
//     playlist-items call, exposed via [Destination.MaxBatchItems] rather
//     than hard-coded at call sites.
//   - Response shapes: each implementation parses its own provider JSON.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token
// refresh via the [oauth2] client. Playlist creation returns a shareable
// open.spotify.com URL.
//
// # Apple Music Implementation
//
// [AppleMusicService] authenticates with a developer token (signed JWT) plus
// a per-user Music-User-Token. Library playlists created through the API have
// no shareable URL, so [CreatedPlaylist.URL] is empty for this destination.
//
// # Error Handling
//
// Search misses return [shared.ErrTrackNotFound]. Submission failures are
// classified by status code: 5xx responses wrap [shared.ErrRetryableUpstream]
// and everything else wraps [shared.ErrUpstream], which the conversion engine
// uses to decide between retry and abort.
package services
