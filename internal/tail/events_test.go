package tail

import (
	"strings"
	"testing"

	"github.com/chime-audio/chime/internal/core"
)

func trackListNotification(id, title, artist string) core.Notification {
	return core.Notification{CurrentTrackList: &core.TrackListNotice{
		List: core.Queue{
			Entries: []core.QueueEntry{{
				Track:  core.Track{ID: id, Title: title, Artist: artist},
				Status: core.StatusPlaying,
			}},
		},
	}}
}

func statusNotification(s core.TransportState) core.Notification {
	return core.Notification{Status: &core.StatusNotice{Status: s}}
}

func TestTrackerEmitsTrackChange(t *testing.T) {
	tr := NewTracker()

	events := tr.Observe(trackListNotification("t1", "One", "A"))
	if len(events) != 1 || events[0].Type != EventTrackChange {
		t.Fatalf("events = %+v, want one track change", events)
	}
	if events[0].Track.Title != "One" {
		t.Errorf("Track.Title = %q, want One", events[0].Track.Title)
	}

	// Same track again is not an event.
	if events := tr.Observe(trackListNotification("t1", "One", "A")); len(events) != 0 {
		t.Errorf("repeat track list produced %+v, want none", events)
	}

	events = tr.Observe(trackListNotification("t2", "Two", "A"))
	if len(events) != 1 || events[0].Previous == nil || events[0].Previous.ID != "t1" {
		t.Fatalf("events = %+v, want track change with previous t1", events)
	}
}

func TestTrackerPauseResume(t *testing.T) {
	tr := NewTracker()
	tr.Observe(statusNotification(core.StatePlaying))

	events := tr.Observe(statusNotification(core.StatePaused))
	if len(events) != 1 || events[0].Type != EventPause {
		t.Fatalf("events = %+v, want pause", events)
	}

	events = tr.Observe(statusNotification(core.StatePlaying))
	if len(events) != 1 || events[0].Type != EventResume {
		t.Fatalf("events = %+v, want resume", events)
	}

	// Duplicate status is not an event.
	if events := tr.Observe(statusNotification(core.StatePlaying)); len(events) != 0 {
		t.Errorf("duplicate status produced %+v, want none", events)
	}
}

func TestTrackerBufferingPair(t *testing.T) {
	tr := NewTracker()

	events := tr.Observe(core.Notification{Buffering: &core.BufferingNotice{IsBuffering: true, Percent: 10}})
	if len(events) != 1 || events[0].Type != EventBufferingStart {
		t.Fatalf("events = %+v, want buffering start", events)
	}
	// Progress while still buffering is silent.
	if events := tr.Observe(core.Notification{Buffering: &core.BufferingNotice{IsBuffering: true, Percent: 50}}); len(events) != 0 {
		t.Errorf("progress produced %+v, want none", events)
	}
	events = tr.Observe(core.Notification{Buffering: &core.BufferingNotice{IsBuffering: false, Percent: 100}})
	if len(events) != 1 || events[0].Type != EventBufferingEnd {
		t.Fatalf("events = %+v, want buffering end", events)
	}
}

func TestFormatterLine(t *testing.T) {
	f := NewFormatter(WithEmoji(false))
	tr := NewTracker()

	events := tr.Observe(trackListNotification("t1", "Roygbiv", "Boards of Canada"))
	got := f.Format(events[0])
	if want := "Now playing: Boards of Canada - Roygbiv"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatterTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}}|{{.Artist}}|{{.Title}}"))
	tr := NewTracker()

	events := tr.Observe(trackListNotification("t1", "Roygbiv", "Boards of Canada"))
	got := f.Format(events[0])
	if got != "track|Boards of Canada|Roygbiv" {
		t.Errorf("Format() = %q", got)
	}
}

func TestFormatterTimestamp(t *testing.T) {
	f := NewFormatter(WithEmoji(false), WithTimestamp(true))
	tr := NewTracker()

	tr.Observe(statusNotification(core.StatePlaying))
	events := tr.Observe(statusNotification(core.StatePaused))
	got := f.Format(events[0])
	if !strings.HasSuffix(got, "Paused") || len(got) < len("15:04:05 Paused") {
		t.Errorf("Format() = %q, want timestamped Paused", got)
	}
}
