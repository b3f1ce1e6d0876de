package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/playlistor/playlistor/internal/cache"
	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/services"
	"github.com/playlistor/playlistor/internal/shared"
)

// playlistDescription is attached to every playlist the engine creates.
const playlistDescription = "Made with Playlistor (https://playlistor.io) :)"

// untitledFallback replaces an empty source title on services that reject
// nameless playlists.
const untitledFallback = "Untitled"

// MappingStore persists cross-service track id pairs discovered during a
// conversion.
type MappingStore interface {
	UpsertMany(mappings []models.TrackMapping, dir models.Direction) error
}

// ConversionLog records completed conversions.
type ConversionLog interface {
	Append(playlist models.SourcePlaylist, result models.ConversionResult) error
}

// Counter tracks named monotonic counts.
type Counter interface {
	Incr(name string) error
}

// playlistCounter mirrors repositories.PlaylistCounter without importing it.
const playlistCounter = "playlists"

// Converter orchestrates playlist conversions between streaming services.
type Converter struct {
	spotify    services.Destination
	appleMusic services.Destination
	mappings   MappingStore
	journal    ConversionLog
	counter    Counter
	results    cache.Cache
	limiter    *rate.Limiter
	logger     *log.Logger
	production bool
	cacheTTL   time.Duration
}

// ConverterOption configures optional Converter collaborators.
type ConverterOption func(*Converter)

// WithMappingStore enables track mapping persistence.
func WithMappingStore(store MappingStore) ConverterOption {
	return func(c *Converter) { c.mappings = store }
}

// WithConversionLog enables the append-only conversion journal.
func WithConversionLog(journal ConversionLog) ConverterOption {
	return func(c *Converter) { c.journal = journal }
}

// WithCounter enables the created-playlists counter.
func WithCounter(counter Counter) ConverterOption {
	return func(c *Converter) { c.counter = counter }
}

// WithResultCache enables the URL result cache with the given TTL.
func WithResultCache(results cache.Cache, ttl time.Duration) ConverterOption {
	return func(c *Converter) {
		c.results = results
		c.cacheTTL = ttl
	}
}

// WithSearchRate bounds catalog searches to n per second.
func WithSearchRate(n int) ConverterOption {
	return func(c *Converter) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// WithProduction enables production behavior: cache hits short-circuit the
// conversion instead of recomputing.
func WithProduction(production bool) ConverterOption {
	return func(c *Converter) { c.production = production }
}

// NewConverter creates a Converter for the given destination services.
func NewConverter(spotify, appleMusic services.Destination, logger *log.Logger, opts ...ConverterOption) *Converter {
	c := &Converter{
		spotify:    spotify,
		appleMusic: appleMusic,
		logger:     logger,
		cacheTTL:   time.Hour,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// destination returns the service on the receiving end of dir.
func (c *Converter) destination(dir models.Direction) services.Destination {
	if dir.Destination() == models.ServiceSpotify {
		return c.spotify
	}
	return c.appleMusic
}

// sendProgress sends a progress update without blocking.
// If the channel is full or nil, the update is dropped.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Convert runs a full conversion of playlist in the given direction.
//
// Every source track produces exactly one progress update. Search failures
// of any kind demote the track to the missed list; only playlist creation
// and submission failures abort the conversion. A 5xx there is reported as
// shared.ErrRetryableUpstream after matched mappings have been persisted.
func (c *Converter) Convert(ctx context.Context, playlist models.SourcePlaylist, dir models.Direction, progress chan<- ProgressUpdate) (*models.ConversionResult, error) {
	dest := c.destination(dir)
	if dest == nil {
		return nil, fmt.Errorf("%w: no %s service configured", shared.ErrInvalidInput, dir.Destination())
	}

	if replay := c.cachedResult(playlist, dir); replay != nil {
		c.logger.Info("Serving conversion from result cache", "url", playlist.CanonicalURL)
		sendProgress(progress, completedUpdate(replay))
		return replay, nil
	}

	title := playlist.Title
	if title == "" {
		title = untitledFallback
	}

	outcomes := c.searchTracks(ctx, dest, playlist.Tracks, progress)

	var (
		matched  []string
		missed   []models.SourceTrack
		mappings []models.TrackMapping
	)
	for _, outcome := range outcomes {
		if !outcome.Matched() {
			missed = append(missed, outcome.Track)
			continue
		}
		matched = append(matched, outcome.DestinationID)
		mappings = append(mappings, newMapping(outcome, dir))
	}

	result := &models.ConversionResult{
		TrackCount:   len(playlist.Tracks),
		MissedTracks: missed,
		Source:       dir.Source(),
		Destination:  dir.Destination(),
	}

	created, err := c.submitPlaylist(ctx, dest, title, matched, progress)
	if err != nil {
		if errors.Is(err, shared.ErrRetryableUpstream) {
			// Persist what we matched so the retry hits the mapping cache.
			c.persistMappings(mappings, dir)
		}
		return nil, err
	}

	result.PlaylistURL = created.URL

	c.persistMappings(mappings, dir)
	c.recordConversion(playlist, *result)
	c.storeResult(playlist, created.URL)
	c.incrementCounter()

	if len(missed) > 0 {
		c.logger.Warn("Some tracks could not be matched",
			"missed", len(missed), "matched", len(matched), "destination", dest.Name())
	}

	sendProgress(progress, completedUpdate(result))
	return result, nil
}

// cachedResult returns a degraded replay result when production mode is on
// and a fresh cache entry exists for the playlist URL.
func (c *Converter) cachedResult(playlist models.SourcePlaylist, dir models.Direction) *models.ConversionResult {
	if !c.production || c.results == nil || playlist.CanonicalURL == "" {
		return nil
	}

	url, ok := c.results.Get(playlist.CanonicalURL)
	if !ok {
		return nil
	}

	// Replay carries no track-level detail. The original search results are
	// gone; only the destination URL survives.
	return &models.ConversionResult{
		PlaylistURL: url,
		Source:      dir.Source(),
		Destination: dir.Destination(),
	}
}

// searchTracks resolves every source track against the destination catalog,
// in input order, one progress update per track.
func (c *Converter) searchTracks(ctx context.Context, dest services.Destination, tracks []models.SourceTrack, progress chan<- ProgressUpdate) []models.MatchOutcome {
	total := len(tracks)
	sendProgress(progress, searchStartUpdate(total, dest.Name()))

	outcomes := make([]models.MatchOutcome, 0, total)
	for i, track := range tracks {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				c.logger.Debug("Rate limiter interrupted", "error", err)
			}
		}

		id, err := dest.SearchTrack(ctx, track)
		if err != nil {
			// Any search failure is a miss, never a conversion failure.
			if !errors.Is(err, shared.ErrTrackNotFound) {
				c.logger.Debug("Track search failed", "track", track.Name, "error", err)
			}
			id = ""
		}

		outcomes = append(outcomes, models.MatchOutcome{Track: track, DestinationID: id})
		sendProgress(progress, trackSearchedUpdate(i+1, total, track, id != ""))
	}

	return outcomes
}

// submitPlaylist creates the destination playlist and adds matched tracks in
// batches bounded by the destination's limit. A playlist is created even when
// nothing matched.
func (c *Converter) submitPlaylist(ctx context.Context, dest services.Destination, title string, trackIDs []string, progress chan<- ProgressUpdate) (*services.CreatedPlaylist, error) {
	chunks := shared.Chunk(trackIDs, dest.MaxBatchItems())

	var initial []string
	if len(chunks) > 0 {
		initial = chunks[0]
	}

	sendProgress(progress, createPlaylistUpdate(title, dest.Name()))
	created, err := dest.CreatePlaylist(ctx, title, playlistDescription, initial)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	if len(chunks) > 1 {
		for i, chunk := range chunks[1:] {
			sendProgress(progress, submitBatchUpdate(i+2, len(chunks), len(chunk)))
			if err := dest.AddTracks(ctx, created.ID, chunk); err != nil {
				return nil, fmt.Errorf("failed to add tracks: %w", err)
			}
		}
	}

	return created, nil
}

// newMapping builds the cross-service mapping row for a matched track.
func newMapping(outcome models.MatchOutcome, dir models.Direction) models.TrackMapping {
	mapping := models.TrackMapping{
		Name:    outcome.Track.Name,
		Artists: outcome.Track.ArtistLine(),
	}

	if dir.Destination() == models.ServiceSpotify {
		mapping.SpotifyID = outcome.DestinationID
		mapping.AppleMusicID = outcome.Track.ID
	} else {
		mapping.AppleMusicID = outcome.DestinationID
		mapping.SpotifyID = outcome.Track.ID
	}

	return mapping
}

func (c *Converter) persistMappings(mappings []models.TrackMapping, dir models.Direction) {
	if c.mappings == nil || len(mappings) == 0 {
		return
	}
	if err := c.mappings.UpsertMany(mappings, dir); err != nil {
		c.logger.Warn("Failed to persist track mappings", "count", len(mappings), "error", err)
	}
}

func (c *Converter) recordConversion(playlist models.SourcePlaylist, result models.ConversionResult) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Append(playlist, result); err != nil {
		c.logger.Warn("Failed to record conversion", "error", err)
	}
}

func (c *Converter) storeResult(playlist models.SourcePlaylist, url string) {
	if c.results == nil || url == "" || playlist.CanonicalURL == "" {
		return
	}
	c.results.Set(playlist.CanonicalURL, url, c.cacheTTL)
}

func (c *Converter) incrementCounter() {
	if c.counter == nil {
		return
	}
	if err := c.counter.Incr(playlistCounter); err != nil {
		c.logger.Warn("Failed to increment playlist counter", "error", err)
	}
}
