package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/playlistor/playlistor/internal/models"
)

var _ list.Item = missedItem{}

// missedItem wraps [models.SourceTrack] to implement [list.Item] for the
// missed-track list in the result view.
type missedItem struct {
	track models.SourceTrack
}

func (i missedItem) FilterValue() string { return i.track.Name }
func (i missedItem) Title() string       { return i.track.Name }
func (i missedItem) Description() string { return i.track.ArtistLine() }
