package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/tasks"
)

func noopRun(result *models.ConversionResult, err error) RunFunc {
	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.ConversionResult, error) {
		return result, err
	}
}

func TestModelUpdate(t *testing.T) {
	t.Run("Window Size Resizes Bar", func(t *testing.T) {
		m := NewModel(context.Background(), "Road Trip", noopRun(nil, nil))

		updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		model := updated.(*Model)
		if model.bar.Width != 72 {
			t.Errorf("unexpected bar width %d", model.bar.Width)
		}
	})

	t.Run("Quit Key", func(t *testing.T) {
		m := NewModel(context.Background(), "Road Trip", noopRun(nil, nil))
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if cmd == nil {
			t.Error("expected quit command")
		}
	})

	t.Run("Progress Message Advances State", func(t *testing.T) {
		m := NewModel(context.Background(), "Road Trip", noopRun(nil, nil))
		m.progressChan = make(chan tasks.ProgressUpdate, 1)

		update := tasks.ProgressUpdate{Phase: tasks.SearchTracks, Step: 2, Total: 5, Message: "searching"}
		updated, cmd := m.Update(progressMsg(update))
		model := updated.(*Model)

		if model.latest.Step != 2 || model.latest.Total != 5 {
			t.Errorf("progress not recorded: %+v", model.latest)
		}
		if cmd == nil {
			t.Error("expected a follow-up wait command")
		}
	})

	t.Run("Done Message Switches To Result View", func(t *testing.T) {
		m := NewModel(context.Background(), "Road Trip", noopRun(nil, nil))

		result := &models.ConversionResult{
			PlaylistURL:  "https://open.spotify.com/playlist/abc",
			TrackCount:   4,
			MissedTracks: []models.SourceTrack{{Name: "Beta", Artists: []string{"D"}}},
		}

		updated, _ := m.Update(conversionDoneMsg{result: result})
		model := updated.(*Model)

		if model.view != ResultView || !model.done {
			t.Errorf("expected result view, got view=%v done=%v", model.view, model.done)
		}
		if len(model.missedList.Items()) != 1 {
			t.Errorf("expected 1 missed item, got %d", len(model.missedList.Items()))
		}
	})
}

func TestModelView(t *testing.T) {
	t.Run("Convert View Shows Phase", func(t *testing.T) {
		m := NewModel(context.Background(), "Road Trip", noopRun(nil, nil))
		m.latest = tasks.ProgressUpdate{Phase: tasks.SearchTracks, Step: 1, Total: 4}

		out := m.View()
		if !strings.Contains(out, "Converting 'Road Trip'") {
			t.Error("view missing title")
		}
		if !strings.Contains(out, "Searching tracks (1/4)") {
			t.Error("view missing search phase")
		}
	})

	t.Run("Result View Shows Summary", func(t *testing.T) {
		m := NewModel(context.Background(), "Road Trip", noopRun(nil, nil))
		m.Update(conversionDoneMsg{result: &models.ConversionResult{TrackCount: 3, PlaylistURL: "https://open.spotify.com/playlist/abc"}})

		out := m.View()
		if !strings.Contains(out, "Conversion Complete!") {
			t.Error("view missing completion banner")
		}
		if !strings.Contains(out, "Matched: 3 tracks") {
			t.Error("view missing match count")
		}
		if !strings.Contains(out, "https://open.spotify.com/playlist/abc") {
			t.Error("view missing playlist URL")
		}
	})

	t.Run("Result View Shows Error", func(t *testing.T) {
		m := NewModel(context.Background(), "Road Trip", noopRun(nil, nil))
		m.Update(conversionDoneMsg{err: context.DeadlineExceeded})

		out := m.View()
		if !strings.Contains(out, "Conversion failed") {
			t.Error("view missing failure message")
		}
	})
}

func TestMissedItem(t *testing.T) {
	item := missedItem{track: models.SourceTrack{Name: "Beta", Artists: []string{"C", "D"}}}

	if item.Title() != "Beta" {
		t.Errorf("unexpected title %q", item.Title())
	}
	if item.Description() != "C,D" {
		t.Errorf("unexpected description %q", item.Description())
	}
	if item.FilterValue() != "Beta" {
		t.Errorf("unexpected filter value %q", item.FilterValue())
	}
}
