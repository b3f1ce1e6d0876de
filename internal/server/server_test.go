package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// tokenServer stands in for the provider's token endpoint during the
// authorization-code exchange.
func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(ts.Close)

	return ts
}

func oauthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/callback",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Valid Callback Delivers Token", func(t *testing.T) {
		ts := tokenServer(t)
		handler := NewOAuthHandler(oauthConfig(ts.URL), "state-123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state-123&code=auth-code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("expected success page")
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "at" {
			t.Errorf("unexpected token %+v", result.Token)
		}
	})

	t.Run("State Mismatch Rejected", func(t *testing.T) {
		handler := NewOAuthHandler(oauthConfig("http://unused"), "state-123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=auth-code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected state error in result")
		}
	})

	t.Run("Denied Authorization Surfaces Error", func(t *testing.T) {
		handler := NewOAuthHandler(oauthConfig("http://unused"), "state-123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state-123&error=access_denied&error_description=user+denied", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected denial error, got %v", result.Error())
		}
	})

	t.Run("Second Callback Ignored", func(t *testing.T) {
		ts := tokenServer(t)
		handler := NewOAuthHandler(oauthConfig(ts.URL), "state-123")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=state-123&code=auth-code", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=state-123&code=other-code", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected second callback rejected, got %d", second.Code)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	t.Run("Returns Token From Callback", func(t *testing.T) {
		ts := tokenServer(t)
		handler := NewOAuthHandler(oauthConfig(ts.URL), "state-123")
		srv := NewCallbackServer("127.0.0.1", 0, handler)

		// Deliver the callback directly; WaitForToken only selects on the
		// handler's result channel.
		go func() {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-123&code=auth-code", nil))
		}()

		token, err := srv.WaitForToken(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "at" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("Context Cancel Stops Waiting", func(t *testing.T) {
		handler := NewOAuthHandler(oauthConfig("http://unused"), "state-123")
		srv := NewCallbackServer("127.0.0.1", 0, handler)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := srv.WaitForToken(ctx); err == nil {
			t.Error("expected context error")
		}
	})

	t.Run("Addr", func(t *testing.T) {
		srv := NewCallbackServer("localhost", 8080, nil)
		if srv.Addr() != "localhost:8080" {
			t.Errorf("unexpected addr %q", srv.Addr())
		}
	})
}
