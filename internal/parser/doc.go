// Package parser turns public playlist URLs into source playlists.
//
// Each parser handles one service: [SpotifyParser] resolves through the
// Spotify Web API, [AppleMusicParser] scrapes the public playlist page.
// [ForURL] dispatches a URL to the parser that supports it.
//
// Parsers normalize into [models.SourcePlaylist] and never talk to the
// destination side; matching and submission live in the tasks package.
package parser
