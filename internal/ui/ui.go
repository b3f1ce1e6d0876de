package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/playlistor/playlistor/internal/models"
	"github.com/playlistor/playlistor/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConvertView ViewState = iota
	ResultView
)

// RunFunc executes the conversion and reports progress on the channel.
// The ui package stays decoupled from converter wiring through it.
type RunFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.ConversionResult, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	run          RunFunc
	title        string
	progressChan chan tasks.ProgressUpdate
	latest       tasks.ProgressUpdate
	bar          progress.Model
	spin         spinner.Model
	missedList   list.Model
	result       *models.ConversionResult
	err          error
	done         bool
	help         help.Model
	keys         keyMap
	width        int
	height       int
}

// NewModel creates a TUI model that runs one conversion.
func NewModel(ctx context.Context, title string, run RunFunc) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		ctx:        ctx,
		view:       ConvertView,
		run:        run,
		title:      title,
		bar:        progress.New(progress.WithDefaultGradient()),
		spin:       spin,
		missedList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the conversion goroutine and the spinner.
func (m *Model) Init() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.run(m.ctx, m.progressChan)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return tea.Batch(m.spin.Tick, m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 8
		if m.missedList.Width() == 0 {
			m.missedList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if m.view == ResultView {
			var cmd tea.Cmd
			m.missedList, cmd = m.missedList.Update(msg)
			return m, cmd
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressMsg:
		m.latest = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case conversionDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		m.view = ResultView
		if m.result != nil {
			items := make([]list.Item, len(m.result.MissedTracks))
			for i, track := range m.result.MissedTracks {
				items[i] = missedItem{track: track}
			}
			m.missedList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.missedList.Title = fmt.Sprintf("Missed tracks (%d)", len(items))
			m.missedList.SetSize(m.width-4, m.height-10)
		}
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConvertView:
		return m.renderConvert()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			return conversionDoneMsg{result: m.result, err: m.err}
		}
		return progressMsg(update)
	}
}

func (m *Model) renderConvert() string {
	title := styles.title.Render(fmt.Sprintf("Converting '%s'", m.title))

	var phase string
	switch m.latest.Phase {
	case tasks.SearchTracks:
		phase = fmt.Sprintf("Searching tracks (%d/%d)", m.latest.Step, m.latest.Total)
	case tasks.CreatePlaylist:
		phase = "Creating destination playlist..."
	case tasks.SubmitTracks:
		phase = "Submitting tracks..."
	default:
		phase = "Working..."
	}

	var bar string
	if m.latest.Phase == tasks.SearchTracks && m.latest.Total > 0 {
		bar = m.bar.ViewAs(float64(m.latest.Step) / float64(m.latest.Total))
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n%s %s\n%s\n\n%s\n\n%s",
		title, m.spin.View(), phase, bar, m.latest.Message, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Conversion failed: %v\n\nPress q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	title := styles.ok.Render("✓ Conversion Complete!")
	info := fmt.Sprintf("\nMatched: %d tracks\nMissed: %d tracks\n",
		m.result.MatchedCount(), len(m.result.MissedTracks))
	if m.result.PlaylistURL != "" {
		info += fmt.Sprintf("Playlist: %s\n", m.result.PlaylistURL)
	}

	var missed string
	if len(m.result.MissedTracks) > 0 {
		missed = fmt.Sprintf("\n%s\n%s", styles.warn.Render("Not every track made it across:"), m.missedList.View())
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, missed, helpView)
}
