package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/playlistor/playlistor/internal/shared"
)

// authTimeout bounds how long the flow waits for the user to authorize.
const authTimeout = 2 * time.Minute

// CallbackServer hosts the OAuth callback endpoint for one authorization.
type CallbackServer struct {
	addr    string
	handler *OAuthHandler
}

// NewCallbackServer creates a server for the given host, port, and handler.
func NewCallbackServer(host string, port int, handler *OAuthHandler) *CallbackServer {
	return &CallbackServer{
		addr:    fmt.Sprintf("%s:%d", host, port),
		handler: handler,
	}
}

// Addr returns the listen address.
func (s *CallbackServer) Addr() string {
	return s.addr
}

// WaitForToken serves /callback until the handler produces a result, the
// context is canceled, or the authorization times out, then shuts the
// server down and returns the token.
func (s *CallbackServer) WaitForToken(ctx context.Context) (*oauth2.Token, error) {
	mux := http.NewServeMux()
	mux.Handle("/callback", s.handler)

	httpServer := &http.Server{Addr: s.addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result OAuthResult
	select {
	case result = <-s.handler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, authTimeout)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
