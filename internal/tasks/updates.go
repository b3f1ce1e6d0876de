package tasks

import (
	"fmt"

	"github.com/playlistor/playlistor/internal/models"
)

// ProgressUpdate represents a progress event during a conversion.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	SearchTracks Phase = iota
	CreatePlaylist
	SubmitTracks
	PersistMappings
	Completed
)

func (p Phase) String() string {
	switch p {
	case SearchTracks:
		return "search_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case SubmitTracks:
		return "submit_tracks"
	case PersistMappings:
		return "persist_mappings"
	case Completed:
		return "completed"
	default:
		return ""
	}
}

func searchStartUpdate(total int, destination string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Searching %d tracks on %s...", total, destination),
	}
}

func trackSearchedUpdate(step, total int, track models.SourceTrack, matched bool) ProgressUpdate {
	mark := "✓"
	if !matched {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s - %s", step, total, mark, track.ArtistLine(), track.Name),
		Data:    track,
	}
}

func createPlaylistUpdate(title, destination string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q on %s...", title, destination),
	}
}

func submitBatchUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Submitting batch of %d tracks...", step, total, size),
	}
}

func completedUpdate(result *models.ConversionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Completed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Conversion complete: %d tracks, %d missed", result.TrackCount, len(result.MissedTracks)),
		Data:    result,
	}
}
