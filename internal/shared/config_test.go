package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Database.Path != "playlistor.db" {
		t.Errorf("unexpected database path %q", config.Database.Path)
	}
	if config.Queue.Name != "playlistor-conversions" {
		t.Errorf("unexpected queue name %q", config.Queue.Name)
	}
	if config.Credentials.AppleMusic.Storefront != "us" {
		t.Errorf("unexpected storefront %q", config.Credentials.AppleMusic.Storefront)
	}
	if config.Conversion.Production {
		t.Error("production must default to false")
	}
	if config.Server.Port != 8080 {
		t.Errorf("unexpected server port %d", config.Server.Port)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Valid File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "cid"
client_secret = "secret"
redirect_uri = "http://localhost:9999/callback"

[conversion]
production = true
cache_ttl_minutes = 15
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "cid" {
			t.Errorf("unexpected client id %q", config.Credentials.Spotify.ClientID)
		}
		if !config.Conversion.Production {
			t.Error("expected production true")
		}
		if config.Conversion.CacheTTL() != 15*time.Minute {
			t.Errorf("unexpected cache TTL %v", config.Conversion.CacheTTL())
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Malformed TOML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	config := DefaultConfig()
	config.Credentials.Spotify.ClientID = "cid"
	config.Credentials.Spotify.AccessToken = "at"
	config.Conversion.MaxRetries = 5

	if err := SaveConfig(path, config); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if loaded.Credentials.Spotify.ClientID != "cid" {
		t.Errorf("client id lost in round trip: %q", loaded.Credentials.Spotify.ClientID)
	}
	if loaded.Credentials.Spotify.AccessToken != "at" {
		t.Errorf("access token lost in round trip: %q", loaded.Credentials.Spotify.AccessToken)
	}
	if loaded.Conversion.MaxRetries != 5 {
		t.Errorf("max retries lost in round trip: %d", loaded.Conversion.MaxRetries)
	}
}

func TestSpotifyConfigTokens(t *testing.T) {
	t.Run("Update Then Token", func(t *testing.T) {
		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		var config SpotifyConfig

		err := config.Update(&oauth2.Token{
			AccessToken:  "at",
			RefreshToken: "rt",
			Expiry:       expiry,
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}

		token := config.Token()
		if token == nil {
			t.Fatal("expected a token")
		}
		if token.AccessToken != "at" || token.RefreshToken != "rt" {
			t.Errorf("unexpected token %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expiry lost: %v", token.Expiry)
		}
	})

	t.Run("Empty Token Rejected", func(t *testing.T) {
		var config SpotifyConfig
		if err := config.Update(&oauth2.Token{}); err == nil {
			t.Error("expected error for empty access token")
		}
		if err := config.Update(nil); err == nil {
			t.Error("expected error for nil token")
		}
	})

	t.Run("Never Authorized", func(t *testing.T) {
		var config SpotifyConfig
		if config.Token() != nil {
			t.Error("expected nil token before authorization")
		}
	})
}

func TestConversionConfigDefaults(t *testing.T) {
	var config ConversionConfig

	if config.CacheTTL() != time.Hour {
		t.Errorf("expected 1h default TTL, got %v", config.CacheTTL())
	}
	if config.RetryBackoff() != 30*time.Second {
		t.Errorf("expected 30s default backoff, got %v", config.RetryBackoff())
	}

	config.CacheTTLMinutes = 5
	config.RetryBackoffSeconds = 2
	if config.CacheTTL() != 5*time.Minute {
		t.Errorf("unexpected TTL %v", config.CacheTTL())
	}
	if config.RetryBackoff() != 2*time.Second {
		t.Errorf("unexpected backoff %v", config.RetryBackoff())
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("Creates From Template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("template is not loadable: %v", err)
		}
		if config.Database.Path == "" {
			t.Error("template missing database path")
		}
	})

	t.Run("Refuses To Overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error for existing file")
		}
	})
}
