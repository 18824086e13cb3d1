package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/tui/styles"
)

// NowPlaying displays the current track, transport state, and position.
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap core.Snapshot, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	current := snap.Queue.Current()
	if current == nil {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderTrack(snap, current, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderTrack(snap core.Snapshot, entry *core.QueueEntry, width int) string {
	track := entry.Track

	icon := styles.StatusIcon(snap.State == core.StatePlaying)
	titleStyle := styles.Title.Width(width - 4)
	title := titleStyle.Render(track.Title)

	artist := styles.Subtitle.Render(track.Artist)
	album := styles.Dim.Render(track.Album)

	duration := snap.Duration
	if duration == 0 {
		duration = track.Duration
	}
	progressWidth := width - 14
	if progressWidth < 10 {
		progressWidth = 10
	}
	var percent float64
	if duration > 0 {
		percent = float64(snap.Position) / float64(duration)
	}
	progress := fmt.Sprintf("%s %s %s",
		formatDuration(snap.Position),
		styles.ProgressBar(percent, progressWidth),
		formatDuration(duration))

	status := statusLine(snap)

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
		"",
		status,
	)
}

func statusLine(snap core.Snapshot) string {
	line := string(snap.State)
	if snap.State == core.StateBuffering {
		line = "buffering…"
	}
	if snap.BitDepth > 0 && snap.SamplingRate > 0 {
		line += fmt.Sprintf("  %d-bit/%.1fkHz", snap.BitDepth, float64(snap.SamplingRate)/1000)
	}
	line += fmt.Sprintf("  🔊 %d%%", snap.Volume)
	return styles.Muted.Render(line)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
