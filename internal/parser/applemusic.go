package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/shared"
)

// AppleMusicParser scrapes a public Apple Music playlist page.
//
// Playlist pages embed a schema.org MusicPlaylist document in a JSON-LD
// script tag, which carries the title, curator, artwork, and per-track name,
// artist, and catalog URL. No API credentials are required to read it.
type AppleMusicParser struct {
	httpClient *http.Client
}

// NewAppleMusicParser creates a parser using the given client, or
// http.DefaultClient when nil.
func NewAppleMusicParser(httpClient *http.Client) *AppleMusicParser {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AppleMusicParser{httpClient: httpClient}
}

// Supports reports whether rawURL points at an Apple Music playlist.
func (p *AppleMusicParser) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), "music.apple.com") &&
		strings.Contains(u.Path, "/playlist/")
}

// jsonLDPlaylist mirrors the slice of the schema.org document we read.
type jsonLDPlaylist struct {
	Type   string       `json:"@type"`
	Name   string       `json:"name"`
	URL    string       `json:"url"`
	Image  string       `json:"image"`
	Author jsonLDAuthor `json:"author"`
	Tracks []struct {
		Name     string       `json:"name"`
		URL      string       `json:"url"`
		ByArtist jsonLDArtist `json:"byArtist"`
	} `json:"track"`
}

type jsonLDAuthor struct {
	Name string `json:"name"`
}

// jsonLDArtist tolerates byArtist appearing as an object, an array of
// objects, or a bare string.
type jsonLDArtist struct {
	Names []string
}

func (a *jsonLDArtist) UnmarshalJSON(data []byte) error {
	var one jsonLDAuthor
	if err := json.Unmarshal(data, &one); err == nil && one.Name != "" {
		a.Names = []string{one.Name}
		return nil
	}

	var many []jsonLDAuthor
	if err := json.Unmarshal(data, &many); err == nil {
		for _, artist := range many {
			if artist.Name != "" {
				a.Names = append(a.Names, artist.Name)
			}
		}
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil && name != "" {
		a.Names = []string{name}
	}
	return nil
}

// Parse fetches the playlist page and extracts the embedded playlist data.
func (p *AppleMusicParser) Parse(ctx context.Context, rawURL string) (*models.SourcePlaylist, error) {
	canonical, err := shared.CanonicalURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonical, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParseFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: apple music page status %d", shared.ErrParseFailed, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParseFailed, err)
	}

	embedded, err := findPlaylistJSON(doc)
	if err != nil {
		return nil, err
	}

	playlist := &models.SourcePlaylist{
		Title:        embedded.Name,
		Creator:      embedded.Author.Name,
		ArtworkURL:   embedded.Image,
		CanonicalURL: canonical,
	}

	if playlist.ArtworkURL == "" {
		if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
			playlist.ArtworkURL = strings.TrimSpace(og)
		}
	}

	for _, t := range embedded.Tracks {
		playlist.Tracks = append(playlist.Tracks, models.SourceTrack{
			ID:      songIDFromURL(t.URL),
			Name:    t.Name,
			Artists: t.ByArtist.Names,
		})
	}

	return playlist, nil
}

// findPlaylistJSON locates the MusicPlaylist JSON-LD block among the page's
// structured-data script tags.
func findPlaylistJSON(doc *goquery.Document) (*jsonLDPlaylist, error) {
	var (
		playlist  *jsonLDPlaylist
		decodeErr error
	)

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var candidate jsonLDPlaylist
		if err := json.Unmarshal([]byte(s.Text()), &candidate); err != nil {
			decodeErr = err
			return true
		}
		if candidate.Type != "MusicPlaylist" {
			return true
		}
		playlist = &candidate
		return false
	})

	if playlist == nil {
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: malformed playlist data: %v", shared.ErrParseFailed, decodeErr)
		}
		return nil, fmt.Errorf("%w: no playlist data in page", shared.ErrParseFailed)
	}

	return playlist, nil
}

// songIDFromURL pulls the catalog song id out of a track URL of the form
// https://music.apple.com/us/album/<slug>/<album-id>?i=<song-id>.
func songIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("i")
}
