// Package tui implements the interactive terminal interface. It is a
// pure hub subscriber: every piece of rendered state arrives as a
// notification, and every keypress becomes a controller command.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chime-audio/chime/internal/broadcast"
	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/player"
	"github.com/chime-audio/chime/internal/tui/components"
	"github.com/chime-audio/chime/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
)

const errorDisplayTime = 5 * time.Second

// searchResult is one selectable row in the search overlay.
type searchResult struct {
	Ref      core.EntityRef
	Title    string
	Subtitle string
}

// App holds the TUI wiring
type App struct {
	Hub      *broadcast.Hub
	Controls player.Controls
	Quality  core.Quality
	// Volume is the configured starting volume; later changes are
	// tracked locally since volume is controlled, not observed.
	Volume int
}

// Model is the main TUI model
type Model struct {
	app *App
	sub *broadcast.Subscriber

	width        int
	height       int
	focusedPanel Panel

	// State mirrored from notifications
	snap      core.Snapshot
	buffering *core.BufferingNotice

	// Components
	nowPlaying *components.NowPlaying
	queueView  *components.Queue

	// Overlays
	showHelp bool

	// Search state
	showSearch    bool
	searchInput   textinput.Model
	searchResults []searchResult
	searchCursor  int
	searching     bool

	// Error handling
	lastError   string
	errorExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search albums, tracks, playlists..."
	ti.CharLimit = 100
	ti.Width = 50

	m := Model{
		app:         app,
		sub:         app.Hub.Subscribe(),
		nowPlaying:  components.NewNowPlaying(),
		queueView:   components.NewQueue(),
		searchInput: ti,
	}
	m.snap.Volume = app.Volume
	return m
}

// Run starts the TUI and blocks until it exits.
func Run(app *App) error {
	m := NewModel(app)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Messages
type notificationMsg core.Notification
type feedClosedMsg struct{}
type tickMsg time.Time

func waitForNotification(sub *broadcast.Subscriber) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-sub.C()
		if !ok {
			return feedClosedMsg{}
		}
		return notificationMsg(n)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForNotification(m.sub), tick())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.lastError != "" && time.Now().After(m.errorExpiry) {
			m.lastError = ""
		}
		return m, tick()

	case notificationMsg:
		m.apply(core.Notification(msg))
		return m, waitForNotification(m.sub)

	case feedClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.showSearch {
			return m.updateSearch(msg)
		}
		return m.updateMain(msg)
	}

	return m, nil
}

func (m *Model) apply(n core.Notification) {
	switch {
	case n.Status != nil:
		m.snap.State = n.Status.Status
	case n.Position != nil:
		m.snap.Position = time.Duration(n.Position.Clock) * time.Second
	case n.Duration != nil:
		m.snap.Duration = time.Duration(n.Duration.Clock) * time.Second
	case n.CurrentTrackList != nil:
		m.snap.Queue = n.CurrentTrackList.List
		m.queueView.Clamp(m.snap.Queue.Len())
	case n.AudioQuality != nil:
		m.snap.BitDepth = n.AudioQuality.BitDepth
		m.snap.SamplingRate = n.AudioQuality.SamplingRate
	case n.Buffering != nil:
		if n.Buffering.IsBuffering {
			m.buffering = n.Buffering
		} else {
			m.buffering = nil
		}
	case n.SearchResults != nil:
		m.searching = false
		m.searchResults = flattenResults(n.SearchResults)
		m.searchCursor = 0
	case n.Error != nil:
		m.lastError = n.Error.Message
		m.errorExpiry = time.Now().Add(errorDisplayTime)
	}
}

func flattenResults(r *core.SearchResults) []searchResult {
	results := make([]searchResult, 0, len(r.Albums)+len(r.Tracks)+len(r.Playlists))
	for _, a := range r.Albums {
		results = append(results, searchResult{
			Ref:      core.EntityRef{Kind: core.KindAlbum, ID: a.ID},
			Title:    a.Title,
			Subtitle: fmt.Sprintf("Album · %s", a.Artist),
		})
	}
	for _, t := range r.Tracks {
		results = append(results, searchResult{
			Ref:      core.EntityRef{Kind: core.KindTrack, ID: t.ID},
			Title:    t.Title,
			Subtitle: fmt.Sprintf("Track · %s", t.Artist),
		})
	}
	for _, p := range r.Playlists {
		results = append(results, searchResult{
			Ref:      core.EntityRef{Kind: core.KindPlaylist, ID: p.ID},
			Title:    p.Title,
			Subtitle: fmt.Sprintf("Playlist · %d tracks", p.TrackCount),
		})
	}
	return results
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.sub.Close()
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "tab":
		if m.focusedPanel == PanelNowPlaying {
			m.focusedPanel = PanelQueue
		} else {
			m.focusedPanel = PanelNowPlaying
		}
		return m, nil

	case "/":
		m.showSearch = true
		m.searchResults = nil
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink

	case " ":
		return m, m.submit(player.PlayPause{})
	case "n":
		return m, m.submit(player.Next{})
	case "p":
		return m, m.submit(player.Previous{})
	case "s":
		return m, m.submit(player.Stop{})
	case "right":
		return m, m.submit(player.JumpForward{})
	case "left":
		return m, m.submit(player.JumpBackward{})
	case "+", "=":
		m.snap.Volume = clampVolume(m.snap.Volume + 5)
		return m, m.submit(player.SetVolume{Level: m.snap.Volume})
	case "-":
		m.snap.Volume = clampVolume(m.snap.Volume - 5)
		return m, m.submit(player.SetVolume{Level: m.snap.Volume})

	case "up", "k":
		if m.focusedPanel == PanelQueue {
			m.queueView.MoveUp()
		}
		return m, nil
	case "down", "j":
		if m.focusedPanel == PanelQueue {
			m.queueView.MoveDown(m.snap.Queue.Len())
		}
		return m, nil
	case "enter":
		if m.focusedPanel == PanelQueue && !m.snap.Queue.IsEmpty() {
			return m, m.submit(player.SkipTo{Index: m.queueView.Selected()})
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		if len(m.searchResults) > 0 {
			// Play the selected result and close the overlay.
			ref := m.searchResults[m.searchCursor].Ref
			m.showSearch = false
			m.searchInput.Blur()
			return m, m.submit(player.PlayEntity{Entity: ref, Quality: m.app.Quality})
		}
		query := m.searchInput.Value()
		if query == "" {
			return m, nil
		}
		m.searching = true
		return m, m.submit(player.Search{Query: query})

	case "up":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil
	case "down":
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// submit sends a command without blocking the UI loop.
func (m Model) submit(cmd player.Command) tea.Cmd {
	controls := m.app.Controls
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := controls.Submit(ctx, cmd); err != nil {
			return notificationMsg(core.Notification{
				Error: &core.ErrorNotice{Message: err.Error()},
			})
		}
		return nil
	}
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	if m.showSearch {
		return m.searchView()
	}

	nowPlayingHeight := 11
	queueHeight := m.height - nowPlayingHeight - 3
	if queueHeight < 4 {
		queueHeight = 4
	}

	nowPlaying := m.nowPlaying.Render(m.snap, m.width-2, nowPlayingHeight, m.focusedPanel == PanelNowPlaying)
	queue := m.queueView.Render(m.snap.Queue, m.width-2, queueHeight, m.focusedPanel == PanelQueue)

	status := m.statusBar()

	return lipgloss.JoinVertical(lipgloss.Left, nowPlaying, queue, status)
}

func (m Model) statusBar() string {
	if m.lastError != "" {
		return styles.ErrorText.Render(" ✗ " + m.lastError)
	}
	if m.buffering != nil {
		return styles.Muted.Render(fmt.Sprintf(" buffering %d%%…", m.buffering.Percent))
	}
	if m.showHelp {
		return styles.Dim.Render(" space play/pause · n next · p prev · ←/→ jump · / search · tab focus · enter skip · q quit")
	}
	return styles.Dim.Render(" ? help")
}

func (m Model) searchView() string {
	title := styles.Highlight.Render(" Search ")
	input := m.searchInput.View()

	var body string
	switch {
	case m.searching:
		body = styles.Muted.Render("Searching…")
	case len(m.searchResults) == 0:
		body = styles.Dim.Render("Type a query and press enter")
	default:
		lines := make([]string, 0, len(m.searchResults))
		for i, r := range m.searchResults {
			line := fmt.Sprintf("%s  %s", r.Title, styles.Dim.Render(r.Subtitle))
			if i == m.searchCursor {
				line = styles.Highlight.Render("› ") + line
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	panel := styles.Panel(true).Width(m.width - 2)
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		input,
		"",
		body,
		"",
		styles.Dim.Render("enter search/play · ↑/↓ select · esc close"),
	))
}
