package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/playlistor/playlistor/internal/cache"
	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/services"
	"github.com/playlistor/playlistor/internal/shared"
	tu "github.com/playlistor/playlistor/internal/testing"
)

type fakeMappings struct {
	batches [][]models.TrackMapping
	dirs    []models.Direction
	err     error
}

func (f *fakeMappings) UpsertMany(mappings []models.TrackMapping, dir models.Direction) error {
	f.batches = append(f.batches, mappings)
	f.dirs = append(f.dirs, dir)
	return f.err
}

type fakeJournal struct {
	entries []models.ConversionResult
	err     error
}

func (f *fakeJournal) Append(playlist models.SourcePlaylist, result models.ConversionResult) error {
	f.entries = append(f.entries, result)
	return f.err
}

type fakeCounter struct {
	counts map[string]int
	err    error
}

func (f *fakeCounter) Incr(name string) error {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[name]++
	return f.err
}

type fixture struct {
	dest     *tu.MockDestination
	mappings *fakeMappings
	journal  *fakeJournal
	counter  *fakeCounter
	results  *cache.MemoryCache
}

func newFixture(searchResults map[string]string, opts ...ConverterOption) (*Converter, *fixture) {
	f := &fixture{
		dest:     &tu.MockDestination{ServiceName: models.ServiceSpotify, SearchResults: searchResults},
		mappings: &fakeMappings{},
		journal:  &fakeJournal{},
		counter:  &fakeCounter{},
		results:  cache.NewMemoryCache(),
	}

	base := []ConverterOption{
		WithMappingStore(f.mappings),
		WithConversionLog(f.journal),
		WithCounter(f.counter),
		WithResultCache(f.results, time.Hour),
	}

	converter := NewConverter(f.dest, nil, shared.NewLogger(io.Discard), append(base, opts...)...)
	return converter, f
}

func testPlaylist(tracks ...models.SourceTrack) models.SourcePlaylist {
	return models.SourcePlaylist{
		Title:        "Road Trip",
		Creator:      "someone",
		CanonicalURL: "https://music.apple.com/us/playlist/road-trip/pl.123",
		Tracks:       tracks,
	}
}

func TestConverterConvert(t *testing.T) {
	ctx := context.Background()

	t.Run("Worked Example", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		playlist := testPlaylist(
			models.SourceTrack{ID: "am1", Name: "Alpha", Artists: []string{"A", "B", "C"}},
			models.SourceTrack{ID: "am2", Name: "Beta", Artists: []string{"D"}},
		)

		result, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TrackCount != 2 {
			t.Errorf("expected track count 2 (all source tracks), got %d", result.TrackCount)
		}
		if result.MatchedCount() != 1 {
			t.Errorf("expected 1 matched track, got %d", result.MatchedCount())
		}
		if len(result.MissedTracks) != 1 || result.MissedTracks[0].Name != "Beta" {
			t.Errorf("expected Beta to be missed, got %v", result.MissedTracks)
		}
		if result.Source != models.ServiceAppleMusic || result.Destination != models.ServiceSpotify {
			t.Errorf("unexpected direction labels: %s -> %s", result.Source, result.Destination)
		}

		if len(f.dest.SearchCalls) != 2 {
			t.Errorf("expected 2 searches, got %d", len(f.dest.SearchCalls))
		}
		if len(f.dest.CreateCalls) != 1 {
			t.Fatalf("expected 1 create call, got %d", len(f.dest.CreateCalls))
		}

		create := f.dest.CreateCalls[0]
		if create.Title != "Road Trip" {
			t.Errorf("expected playlist title 'Road Trip', got %q", create.Title)
		}
		if create.Description != playlistDescription {
			t.Errorf("unexpected description %q", create.Description)
		}
		if len(create.Initial) != 1 || create.Initial[0] != "sp1" {
			t.Errorf("expected initial batch [sp1], got %v", create.Initial)
		}
		if len(f.dest.AddCalls) != 0 {
			t.Errorf("expected no extra batches, got %d", len(f.dest.AddCalls))
		}

		if f.counter.counts[playlistCounter] != 1 {
			t.Errorf("expected counter incremented once, got %d", f.counter.counts[playlistCounter])
		}
		if len(f.journal.entries) != 1 {
			t.Errorf("expected 1 journal entry, got %d", len(f.journal.entries))
		}
	})

	t.Run("Mapping Rows Carry Both Service IDs", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		playlist := testPlaylist(models.SourceTrack{ID: "am1", Name: "Alpha", Artists: []string{"A"}})

		if _, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(f.mappings.batches) != 1 || len(f.mappings.batches[0]) != 1 {
			t.Fatalf("expected one mapping batch with one row, got %v", f.mappings.batches)
		}

		mapping := f.mappings.batches[0][0]
		if mapping.SpotifyID != "sp1" || mapping.AppleMusicID != "am1" {
			t.Errorf("unexpected mapping ids: %+v", mapping)
		}
		if mapping.Name != "Alpha" || mapping.Artists != "A" {
			t.Errorf("unexpected mapping metadata: %+v", mapping)
		}
	})

	t.Run("Empty Title Falls Back To Untitled", func(t *testing.T) {
		converter, f := newFixture(nil)
		playlist := testPlaylist()
		playlist.Title = ""

		if _, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if f.dest.CreateCalls[0].Title != untitledFallback {
			t.Errorf("expected fallback title, got %q", f.dest.CreateCalls[0].Title)
		}
	})

	t.Run("All Misses Still Creates Empty Playlist", func(t *testing.T) {
		converter, f := newFixture(nil)
		playlist := testPlaylist(
			models.SourceTrack{Name: "Alpha"},
			models.SourceTrack{Name: "Beta"},
		)

		result, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.TrackCount != 2 {
			t.Errorf("expected track count 2, got %d", result.TrackCount)
		}
		if result.MatchedCount() != 0 {
			t.Errorf("expected 0 matched tracks, got %d", result.MatchedCount())
		}
		if len(result.MissedTracks) != 2 {
			t.Errorf("expected 2 missed tracks, got %d", len(result.MissedTracks))
		}
		if result.MissedTracks[0].Name != "Alpha" || result.MissedTracks[1].Name != "Beta" {
			t.Errorf("missed tracks out of input order: %v", result.MissedTracks)
		}
		if len(f.dest.CreateCalls) != 1 || len(f.dest.CreateCalls[0].Initial) != 0 {
			t.Errorf("expected one create call with empty initial batch")
		}
	})

	t.Run("One Progress Update Per Track", func(t *testing.T) {
		converter, _ := newFixture(map[string]string{"Alpha": "sp1"})
		playlist := testPlaylist(
			models.SourceTrack{Name: "Alpha"},
			models.SourceTrack{Name: "Beta"},
			models.SourceTrack{Name: "Gamma"},
		)

		progress := make(chan ProgressUpdate, 50)
		if _, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		perTrack := 0
		for update := range progress {
			if update.Phase == SearchTracks && update.Step > 0 {
				perTrack++
				if update.Total != 3 {
					t.Errorf("expected total 3, got %d", update.Total)
				}
			}
		}

		if perTrack != 3 {
			t.Errorf("expected 3 per-track updates, got %d", perTrack)
		}
	})

	t.Run("Chunked Submission Respects Batch Limit", func(t *testing.T) {
		results := map[string]string{}
		var tracks []models.SourceTrack
		for i := 0; i < 5; i++ {
			name := fmt.Sprintf("Track %d", i)
			results[name] = fmt.Sprintf("sp%d", i)
			tracks = append(tracks, models.SourceTrack{Name: name})
		}

		converter, f := newFixture(results)
		f.dest.BatchLimit = 2

		if _, err := converter.Convert(ctx, testPlaylist(tracks...), models.AppleMusicToSpotify, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(f.dest.CreateCalls[0].Initial) != 2 {
			t.Errorf("expected initial batch of 2, got %d", len(f.dest.CreateCalls[0].Initial))
		}
		if len(f.dest.AddCalls) != 2 {
			t.Fatalf("expected 2 append batches, got %d", len(f.dest.AddCalls))
		}
		if len(f.dest.AddCalls[0].TrackIDs) != 2 || len(f.dest.AddCalls[1].TrackIDs) != 1 {
			t.Errorf("unexpected batch sizes: %d, %d",
				len(f.dest.AddCalls[0].TrackIDs), len(f.dest.AddCalls[1].TrackIDs))
		}
	})

	t.Run("Search Failures Are Misses Not Errors", func(t *testing.T) {
		converter, f := newFixture(nil)
		f.dest.SearchErr = fmt.Errorf("%w: spotify returned status 502", shared.ErrAPIRequest)
		playlist := testPlaylist(models.SourceTrack{Name: "Alpha"})

		result, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.MissedTracks) != 1 {
			t.Errorf("expected the failing track to be missed")
		}
	})
}

func TestConverterCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Production Replay Short Circuits", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"}, WithProduction(true))
		playlist := testPlaylist(models.SourceTrack{Name: "Alpha"})
		f.results.Set(playlist.CanonicalURL, "https://open.spotify.com/playlist/abc", time.Hour)

		result, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.PlaylistURL != "https://open.spotify.com/playlist/abc" {
			t.Errorf("expected cached URL, got %q", result.PlaylistURL)
		}
		if result.TrackCount != 0 || result.MissedTracks != nil {
			t.Errorf("replay should carry no track detail: %+v", result)
		}
		if len(f.dest.SearchCalls) != 0 || len(f.dest.CreateCalls) != 0 {
			t.Errorf("replay must not touch the destination service")
		}
		if f.counter.counts[playlistCounter] != 0 {
			t.Errorf("replay must not increment the counter")
		}
	})

	t.Run("Cache Ignored Outside Production", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		playlist := testPlaylist(models.SourceTrack{Name: "Alpha"})
		f.results.Set(playlist.CanonicalURL, "https://open.spotify.com/playlist/abc", time.Hour)

		if _, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.dest.SearchCalls) != 1 {
			t.Errorf("expected a full conversion outside production")
		}
	})

	t.Run("Successful Conversion Writes Cache", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		playlist := testPlaylist(models.SourceTrack{Name: "Alpha"})

		result, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cached, ok := f.results.Get(playlist.CanonicalURL)
		if !ok || cached != result.PlaylistURL {
			t.Errorf("expected cache entry %q, got %q (present=%v)", result.PlaylistURL, cached, ok)
		}
	})

	t.Run("No URL Means No Cache Write", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		// Library-style destinations come back without a shareable URL.
		f.dest.Created = &services.CreatedPlaylist{ID: "lib-1"}
		playlist := testPlaylist(models.SourceTrack{Name: "Alpha"})

		if _, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, ok := f.results.Get(playlist.CanonicalURL); ok {
			t.Errorf("expected no cache entry without a destination URL")
		}
	})
}

func TestConverterRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("Retryable Submit Persists Mappings First", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		f.dest.CreateErr = fmt.Errorf("%w: spotify returned status 503", shared.ErrRetryableUpstream)

		_, err := converter.Convert(ctx, testPlaylist(models.SourceTrack{ID: "am1", Name: "Alpha"}), models.AppleMusicToSpotify, nil)
		if !errors.Is(err, shared.ErrRetryableUpstream) {
			t.Fatalf("expected retryable error, got %v", err)
		}

		if len(f.mappings.batches) != 1 {
			t.Errorf("expected mappings persisted before surfacing the retry, got %d batches", len(f.mappings.batches))
		}
		if f.counter.counts[playlistCounter] != 0 {
			t.Errorf("failed conversion must not increment the counter")
		}
		if len(f.journal.entries) != 0 {
			t.Errorf("failed conversion must not be journaled")
		}
	})

	t.Run("Retryable Append After Create Persists Mappings", func(t *testing.T) {
		results := map[string]string{}
		var tracks []models.SourceTrack
		for i := 0; i < 3; i++ {
			name := fmt.Sprintf("Track %d", i)
			results[name] = fmt.Sprintf("sp%d", i)
			tracks = append(tracks, models.SourceTrack{ID: fmt.Sprintf("am%d", i), Name: name})
		}

		converter, f := newFixture(results)
		f.dest.BatchLimit = 2
		f.dest.AddErr = fmt.Errorf("%w: spotify returned status 502", shared.ErrRetryableUpstream)
		playlist := testPlaylist(tracks...)

		_, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if !errors.Is(err, shared.ErrRetryableUpstream) {
			t.Fatalf("expected retryable error, got %v", err)
		}

		// The playlist was created; only the second batch failed to land.
		if len(f.dest.CreateCalls) != 1 || len(f.dest.AddCalls) != 1 {
			t.Fatalf("expected one create and one failed append, got %d/%d",
				len(f.dest.CreateCalls), len(f.dest.AddCalls))
		}
		if len(f.mappings.batches) != 1 || len(f.mappings.batches[0]) != 3 {
			t.Errorf("expected all 3 mappings persisted before surfacing the retry, got %v", f.mappings.batches)
		}
		if f.counter.counts[playlistCounter] != 0 || len(f.journal.entries) != 0 {
			t.Errorf("failed conversion must leave no success side effects")
		}

		f.dest.AddErr = nil
		result, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if result.TrackCount != 3 || len(result.MissedTracks) != 0 {
			t.Errorf("retry result should match a clean run, got %+v", result)
		}
		if f.counter.counts[playlistCounter] != 1 {
			t.Errorf("expected exactly one increment across both attempts, got %d", f.counter.counts[playlistCounter])
		}
	})

	t.Run("Retry Then Success Increments Counter Once", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		f.dest.CreateErr = fmt.Errorf("%w: spotify returned status 500", shared.ErrRetryableUpstream)
		playlist := testPlaylist(models.SourceTrack{ID: "am1", Name: "Alpha"})

		if _, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil); err == nil {
			t.Fatal("expected first attempt to fail")
		}

		f.dest.CreateErr = nil
		result, err := converter.Convert(ctx, playlist, models.AppleMusicToSpotify, nil)
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if result.TrackCount != 1 || result.MatchedCount() != 1 {
			t.Errorf("expected retry result to match its single track, got %+v", result)
		}

		if f.counter.counts[playlistCounter] != 1 {
			t.Errorf("expected exactly one increment across both attempts, got %d", f.counter.counts[playlistCounter])
		}
	})

	t.Run("Fatal Submit Propagates Without Side Effects", func(t *testing.T) {
		converter, f := newFixture(map[string]string{"Alpha": "sp1"})
		f.dest.CreateErr = fmt.Errorf("%w: spotify returned status 403", shared.ErrUpstream)

		_, err := converter.Convert(ctx, testPlaylist(models.SourceTrack{Name: "Alpha"}), models.AppleMusicToSpotify, nil)
		if err == nil || errors.Is(err, shared.ErrRetryableUpstream) {
			t.Fatalf("expected fatal error, got %v", err)
		}

		if f.counter.counts[playlistCounter] != 0 || len(f.journal.entries) != 0 {
			t.Errorf("fatal failure must leave no success side effects")
		}
	})
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		SearchTracks:    "search_tracks",
		CreatePlaylist:  "create_playlist",
		SubmitTracks:    "submit_tracks",
		PersistMappings: "persist_mappings",
		Completed:       "completed",
	}

	for phase, want := range cases {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
