// Package tail derives discrete playback events from the notification
// stream, for following a session from a terminal or a script.
package tail

import (
	"time"

	"github.com/chime-audio/chime/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventPause
	EventResume
	EventStop
	EventBufferingStart
	EventBufferingEnd
	EventQualityChange
	EventError
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Track     *core.Track
	Previous  *core.Track
	State     core.TransportState
	BitDepth  int
	Rate      int
	Message   string
}

// Tracker folds the notification stream into events: a notification that
// does not change observable state produces nothing.
type Tracker struct {
	state     core.TransportState
	track     *core.Track
	buffering bool
}

// NewTracker creates a tracker with no prior state; the first
// notifications seed it silently except for track and error events.
func NewTracker() *Tracker {
	return &Tracker{state: core.StateStopped}
}

// Observe returns the events implied by n, zero or more.
func (t *Tracker) Observe(n core.Notification) []Event {
	now := time.Now()

	switch {
	case n.CurrentTrackList != nil:
		var current *core.Track
		if entry := n.CurrentTrackList.List.Current(); entry != nil {
			track := entry.Track
			current = &track
		}
		if !sameTrack(current, t.track) {
			prev := t.track
			t.track = current
			if current != nil {
				return []Event{{Type: EventTrackChange, Timestamp: now, Track: current, Previous: prev}}
			}
		}

	case n.Status != nil:
		prev := t.state
		t.state = n.Status.Status
		if prev == t.state {
			return nil
		}
		switch t.state {
		case core.StatePlaying:
			if prev == core.StatePaused {
				return []Event{{Type: EventResume, Timestamp: now, Track: t.track}}
			}
		case core.StatePaused:
			return []Event{{Type: EventPause, Timestamp: now, Track: t.track}}
		case core.StateStopped:
			if prev != core.StateLoading {
				return []Event{{Type: EventStop, Timestamp: now, Track: t.track}}
			}
		}

	case n.Buffering != nil:
		was := t.buffering
		t.buffering = n.Buffering.IsBuffering
		if !was && t.buffering {
			return []Event{{Type: EventBufferingStart, Timestamp: now, Track: t.track}}
		}
		if was && !t.buffering {
			return []Event{{Type: EventBufferingEnd, Timestamp: now, Track: t.track}}
		}

	case n.AudioQuality != nil:
		return []Event{{
			Type:      EventQualityChange,
			Timestamp: now,
			Track:     t.track,
			BitDepth:  n.AudioQuality.BitDepth,
			Rate:      n.AudioQuality.SamplingRate,
		}}

	case n.Error != nil:
		return []Event{{Type: EventError, Timestamp: now, Message: n.Error.Message}}
	}

	return nil
}

func sameTrack(a, b *core.Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
