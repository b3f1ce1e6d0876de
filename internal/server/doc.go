// Package server runs the localhost OAuth2 callback flow for Spotify
// authorization.
//
// The auth command starts a [CallbackServer] on the configured host and
// port, opens the user's browser at the authorization URL, and waits for
// Spotify to redirect back to /callback. [OAuthHandler] validates the state
// parameter, exchanges the authorization code for tokens, and delivers the
// result over a channel. The handler processes exactly one callback; a
// second hit is rejected so a replayed redirect cannot overwrite the token.
//
// The server exists only for the duration of one authorization and shuts
// down as soon as a result (or timeout) arrives.
package server
