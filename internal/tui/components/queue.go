package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/tui/styles"
)

// Queue displays the playback queue with a selectable cursor.
type Queue struct {
	offset   int
	selected int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// MoveDown moves the selection down
func (q *Queue) MoveDown(max int) {
	if q.selected < max-1 {
		q.selected++
	}
}

// MoveUp moves the selection up
func (q *Queue) MoveUp() {
	if q.selected > 0 {
		q.selected--
	}
}

// Selected returns the selected index
func (q *Queue) Selected() int {
	return q.selected
}

// Clamp keeps the selection inside the queue after it changes.
func (q *Queue) Clamp(length int) {
	if q.selected >= length {
		q.selected = length - 1
	}
	if q.selected < 0 {
		q.selected = 0
	}
}

// Render renders the queue panel
func (q *Queue) Render(queue core.Queue, width, height int, focused bool) string {
	title := styles.PanelTitle(panelTitle(queue), focused)

	var content string
	if queue.IsEmpty() {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderEntries(queue, width-4, height-4)
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

func panelTitle(queue core.Queue) string {
	if queue.Title == "" {
		return "Queue"
	}
	return "Queue · " + queue.Title
}

func (q *Queue) renderEntries(queue core.Queue, width, maxLines int) string {
	entries := queue.Entries

	visibleCount := maxLines - 1
	if visibleCount < 1 {
		visibleCount = 1
	}

	// Keep the selection in view.
	if q.selected < q.offset {
		q.offset = q.selected
	}
	if q.selected >= q.offset+visibleCount {
		q.offset = q.selected - visibleCount + 1
	}

	start := q.offset
	end := start + visibleCount
	if end > len(entries) {
		end = len(entries)
	}

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		entry := entries[i]

		marker := "  "
		if i == queue.Cursor {
			marker = styles.Playing.Render("▶ ")
		}

		text := fmt.Sprintf("%2d. %s — %s", i+1, entry.Track.Title, entry.Track.Artist)
		if entry.Status == core.StatusUnplayable {
			text += " (unavailable)"
		}
		// Truncate before styling so escape codes stay intact.
		if max := width - 2; max > 0 && len(text) > max {
			text = text[:max]
		}

		var line string
		switch {
		case i == q.selected:
			line = styles.Highlight.Render(text)
		case entry.Status == core.StatusPlayed:
			line = styles.Dim.Render(text)
		case entry.Status == core.StatusUnplayable:
			line = styles.ErrorText.Render(text)
		default:
			line = styles.Subtitle.Render(text)
		}
		lines = append(lines, marker+line)
	}

	if end < len(entries) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("  … %d more", len(entries)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
