package tui

import (
	"testing"
	"time"

	"github.com/chime-audio/chime/internal/broadcast"
	"github.com/chime-audio/chime/internal/core"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	hub := broadcast.New()
	m := NewModel(&App{Hub: hub, Quality: core.QualityCD, Volume: 80})
	t.Cleanup(m.sub.Close)
	return &m
}

func TestApplyMirrorsNotifications(t *testing.T) {
	m := newTestModel(t)

	m.apply(core.Notification{Status: &core.StatusNotice{Status: core.StatePlaying}})
	if m.snap.State != core.StatePlaying {
		t.Errorf("State = %q, want %q", m.snap.State, core.StatePlaying)
	}

	m.apply(core.Notification{Position: &core.PositionNotice{Clock: 42}})
	if m.snap.Position != 42*time.Second {
		t.Errorf("Position = %v, want 42s", m.snap.Position)
	}

	queue := core.Queue{
		Title:   "Test",
		Entries: []core.QueueEntry{{Track: core.Track{ID: "t1"}}},
	}
	m.apply(core.Notification{CurrentTrackList: &core.TrackListNotice{List: queue}})
	if m.snap.Queue.Title != "Test" {
		t.Errorf("Queue.Title = %q, want Test", m.snap.Queue.Title)
	}

	m.apply(core.Notification{Error: &core.ErrorNotice{Message: "boom"}})
	if m.lastError != "boom" {
		t.Errorf("lastError = %q, want boom", m.lastError)
	}
}

func TestApplyBufferingToggles(t *testing.T) {
	m := newTestModel(t)

	m.apply(core.Notification{Buffering: &core.BufferingNotice{IsBuffering: true, Percent: 40}})
	if m.buffering == nil || m.buffering.Percent != 40 {
		t.Fatalf("buffering = %+v, want 40%%", m.buffering)
	}

	m.apply(core.Notification{Buffering: &core.BufferingNotice{IsBuffering: false, Percent: 100}})
	if m.buffering != nil {
		t.Errorf("buffering = %+v, want cleared", m.buffering)
	}
}

func TestFlattenResultsOrdersAlbumsFirst(t *testing.T) {
	results := flattenResults(&core.SearchResults{
		Albums:    []core.Album{{ID: "al1", Title: "A", Artist: "X"}},
		Tracks:    []core.Track{{ID: "t1", Title: "T", Artist: "X"}},
		Playlists: []core.Playlist{{ID: "p1", Title: "P", TrackCount: 9}},
	})

	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	if results[0].Ref.Kind != core.KindAlbum {
		t.Errorf("results[0].Kind = %q, want album", results[0].Ref.Kind)
	}
	if results[1].Ref.Kind != core.KindTrack {
		t.Errorf("results[1].Kind = %q, want track", results[1].Ref.Kind)
	}
	if results[2].Ref.Kind != core.KindPlaylist {
		t.Errorf("results[2].Kind = %q, want playlist", results[2].Ref.Kind)
	}
}
