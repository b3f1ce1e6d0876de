// Apple Music API implementation of [Destination]
//
// Response types based on https://developer.apple.com/documentation/applemusicapi
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/shared"
)

const (
	appleMusicBaseURL = "https://api.music.apple.com/v1"

	appleMusicMaxBatchItems = 100

	// A single artist is observed to improve Apple Music search accuracy.
	appleMusicQueryArtistCap = 1

	defaultStorefront = "us"
)

// AppleMusicSong represents a catalog song in Apple Music responses.
type AppleMusicSong struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Name       string `json:"name"`
		ArtistName string `json:"artistName"`
	} `json:"attributes"`
}

type appleMusicSearchResponse struct {
	Results struct {
		Songs struct {
			Data []AppleMusicSong `json:"data"`
		} `json:"songs"`
	} `json:"results"`
}

type appleMusicLibraryTrack struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// AppleMusicService implements the Destination interface against the Apple
// Music API. Requests carry a developer token (signed JWT) and a per-user
// Music-User-Token for library writes.
type AppleMusicService struct {
	developerToken string
	userToken      string
	storefront     string
	httpClient     *http.Client
}

// NewAppleMusicService creates a new Apple Music service instance.
func NewAppleMusicService(developerToken, storefront string) *AppleMusicService {
	if storefront == "" {
		storefront = defaultStorefront
	}

	return &AppleMusicService{
		developerToken: developerToken,
		storefront:     storefront,
		httpClient:     http.DefaultClient,
	}
}

// Authenticate stores the music user token for subsequent library requests.
//
// Expects credentials["music_user_token"].
func (a *AppleMusicService) Authenticate(ctx context.Context, credentials map[string]string) error {
	userToken, ok := credentials["music_user_token"]
	if !ok || userToken == "" {
		return fmt.Errorf("%w: missing music_user_token", shared.ErrMissingCredentials)
	}

	a.userToken = userToken
	return nil
}

func (a *AppleMusicService) Name() string {
	return models.ServiceAppleMusic
}

// MaxBatchItems returns the Apple Music cap on tracks per playlist call.
func (a *AppleMusicService) MaxBatchItems() int {
	return appleMusicMaxBatchItems
}

func (a *AppleMusicService) doRequest(ctx context.Context, method, endpoint string, body, result any) (int, error) {
	if a.developerToken == "" {
		return 0, fmt.Errorf("%w: missing developer token", shared.ErrNotAuthenticated)
	}

	apiURL := appleMusicBaseURL + endpoint

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.developerToken)
	req.Header.Set("Content-Type", "application/json")
	if a.userToken != "" {
		req.Header.Set("Music-User-Token", a.userToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: apple music status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// SearchTrack resolves a source track against the Apple Music catalog.
//
// The query joins the track name with the first artist only and asks for a
// single result; the top result is accepted without verification.
func (a *AppleMusicService) SearchTrack(ctx context.Context, track models.SourceTrack) (string, error) {
	artists := track.Artists
	if len(artists) > appleMusicQueryArtistCap {
		artists = artists[:appleMusicQueryArtistCap]
	}
	term := strings.TrimSpace(track.Name + " " + strings.Join(artists, " "))

	endpoint := fmt.Sprintf("/catalog/%s/search?term=%s&types=songs&limit=1",
		url.PathEscape(a.storefront), url.QueryEscape(term))

	var response appleMusicSearchResponse
	if _, err := a.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return "", err
	}

	if len(response.Results.Songs.Data) == 0 {
		return "", fmt.Errorf("%w: no result for %q", shared.ErrTrackNotFound, term)
	}

	return response.Results.Songs.Data[0].ID, nil
}

// CreatePlaylist creates a library playlist with the initial batch of tracks
// attached via the relationships payload.
//
// Apple Music returns no shareable URL for library playlists, so the
// CreatedPlaylist carries an id only.
func (a *AppleMusicService) CreatePlaylist(ctx context.Context, title, description string, initial []string) (*CreatedPlaylist, error) {
	body := struct {
		Attributes struct {
			Name        string `json:"name"`
			Description string `json:"description,omitempty"`
		} `json:"attributes"`
		Relationships struct {
			Tracks struct {
				Data []appleMusicLibraryTrack `json:"data"`
			} `json:"tracks"`
		} `json:"relationships"`
	}{}
	body.Attributes.Name = title
	body.Attributes.Description = description
	body.Relationships.Tracks.Data = librarySongs(initial)

	var created struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}

	status, err := a.doRequest(ctx, http.MethodPost, "/me/library/playlists", body, &created)
	if err != nil {
		if status >= 400 {
			return nil, submitError(a.Name(), status)
		}
		return nil, err
	}

	if len(created.Data) == 0 {
		return nil, fmt.Errorf("%w: create playlist returned no data", shared.ErrUpstream)
	}

	return &CreatedPlaylist{ID: created.Data[0].ID}, nil
}

// AddTracks appends one batch of track ids to an existing library playlist.
func (a *AppleMusicService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	body := struct {
		Data []appleMusicLibraryTrack `json:"data"`
	}{Data: librarySongs(trackIDs)}

	endpoint := fmt.Sprintf("/me/library/playlists/%s/tracks", url.PathEscape(playlistID))
	if status, err := a.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		if status >= 400 {
			return submitError(a.Name(), status)
		}
		return err
	}

	return nil
}

func librarySongs(ids []string) []appleMusicLibraryTrack {
	tracks := make([]appleMusicLibraryTrack, len(ids))
	for i, id := range ids {
		tracks[i] = appleMusicLibraryTrack{ID: id, Type: "songs"}
	}
	return tracks
}
