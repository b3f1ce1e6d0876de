package models

import "testing"

func TestDirection(t *testing.T) {
	t.Run("String Round Trip", func(t *testing.T) {
		for _, dir := range []Direction{AppleMusicToSpotify, SpotifyToAppleMusic} {
			parsed, err := ParseDirection(dir.String())
			if err != nil {
				t.Fatalf("parse of %q failed: %v", dir.String(), err)
			}
			if parsed != dir {
				t.Errorf("round trip changed %v to %v", dir, parsed)
			}
		}
	})

	t.Run("Parse Rejects Unknown", func(t *testing.T) {
		if _, err := ParseDirection("spotify:youtube"); err == nil {
			t.Error("expected error for unknown direction")
		}
		if _, err := ParseDirection(""); err == nil {
			t.Error("expected error for empty direction")
		}
	})

	t.Run("Source And Destination", func(t *testing.T) {
		if AppleMusicToSpotify.Source() != ServiceAppleMusic || AppleMusicToSpotify.Destination() != ServiceSpotify {
			t.Error("apple-music:spotify endpoints wrong")
		}
		if SpotifyToAppleMusic.Source() != ServiceSpotify || SpotifyToAppleMusic.Destination() != ServiceAppleMusic {
			t.Error("spotify:apple-music endpoints wrong")
		}
	})
}

func TestSourceTrackArtistLine(t *testing.T) {
	track := SourceTrack{Name: "Alpha", Artists: []string{"A", "B"}}
	if track.ArtistLine() != "A,B" {
		t.Errorf("unexpected artist line %q", track.ArtistLine())
	}

	if (SourceTrack{}).ArtistLine() != "" {
		t.Error("expected empty line for no artists")
	}
}

func TestMatchOutcome(t *testing.T) {
	if (MatchOutcome{DestinationID: "sp1"}).Matched() != true {
		t.Error("expected match")
	}
	if (MatchOutcome{}).Matched() {
		t.Error("expected miss")
	}
}
