package player

import (
	"context"
	"testing"
	"time"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
)

func TestBuildQueueFromAlbum(t *testing.T) {
	svc := newFakeCatalog()
	svc.addAlbum("al1", "t1", "t2", "t3")

	ref := core.EntityRef{Kind: core.KindAlbum, ID: "al1"}
	q, err := BuildQueue(context.Background(), svc, ref, core.QualityHiRes96)
	if err != nil {
		t.Fatalf("BuildQueue() error: %v", err)
	}

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	if q.Source != ref {
		t.Errorf("Source = %v, want %v", q.Source, ref)
	}
	if q.Quality != core.QualityHiRes96 {
		t.Errorf("Quality = %d, want %d", q.Quality, core.QualityHiRes96)
	}
	if want := "Artist — Album al1"; q.Title != want {
		t.Errorf("Title = %q, want %q", q.Title, want)
	}
	for i, e := range q.Entries {
		if e.Status != core.StatusUnplayed {
			t.Errorf("Entries[%d].Status = %q, want %q", i, e.Status, core.StatusUnplayed)
		}
		if e.StreamURL != "" {
			t.Errorf("Entries[%d].StreamURL = %q, want lazy (empty)", i, e.StreamURL)
		}
	}
	// Catalog order is preserved.
	if got := q.Entries[1].Track.ID; got != "t2" {
		t.Errorf("Entries[1].Track.ID = %q, want %q", got, "t2")
	}
}

func TestBuildQueueFromPlaylist(t *testing.T) {
	svc := newFakeCatalog()
	svc.playlists["pl1"] = &core.Playlist{
		ID:    "pl1",
		Title: "Road Trip",
		Tracks: []core.Track{
			{ID: "t9", Title: "Nine", Artist: "A", Duration: time.Minute},
			{ID: "t8", Title: "Eight", Artist: "B", Duration: time.Minute},
		},
	}

	q, err := BuildQueue(context.Background(), svc,
		core.EntityRef{Kind: core.KindPlaylist, ID: "pl1"}, core.QualityCD)
	if err != nil {
		t.Fatalf("BuildQueue() error: %v", err)
	}
	if q.Title != "Road Trip" {
		t.Errorf("Title = %q, want %q", q.Title, "Road Trip")
	}
	if q.Len() != 2 || q.Entries[0].Track.ID != "t9" {
		t.Errorf("entries = %v, want playlist order preserved", q.Entries)
	}
}

func TestBuildQueueFromSingleTrack(t *testing.T) {
	svc := newFakeCatalog()
	svc.addAlbum("al1", "t1")

	q, err := BuildQueue(context.Background(), svc,
		core.EntityRef{Kind: core.KindTrack, ID: "t1"}, core.QualityCD)
	if err != nil {
		t.Fatalf("BuildQueue() error: %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
	if got := q.Entries[0].Track.ID; got != "t1" {
		t.Errorf("Track.ID = %q, want %q", got, "t1")
	}
}

func TestBuildQueueUnknownEntity(t *testing.T) {
	svc := newFakeCatalog()
	svc.addAlbum("al1", "t1")

	cases := []struct {
		name string
		ref  core.EntityRef
	}{
		{"missing album", core.EntityRef{Kind: core.KindAlbum, ID: "nope"}},
		{"missing playlist", core.EntityRef{Kind: core.KindPlaylist, ID: "nope"}},
		{"missing track", core.EntityRef{Kind: core.KindTrack, ID: "nope"}},
		{"bad kind", core.EntityRef{Kind: "artist", ID: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildQueue(context.Background(), svc, tc.ref, core.QualityCD)
			var resErr *errors.ResolutionError
			if !errors.As(err, &resErr) {
				t.Fatalf("BuildQueue() error = %v, want ResolutionError", err)
			}
			if resErr.Entity != tc.ref {
				t.Errorf("Entity = %v, want %v", resErr.Entity, tc.ref)
			}
		})
	}
}

func TestBuildQueueEmptyAlbum(t *testing.T) {
	svc := newFakeCatalog()
	svc.albums["empty"] = &core.Album{ID: "empty", Title: "Empty", Artist: "A"}

	_, err := BuildQueue(context.Background(), svc,
		core.EntityRef{Kind: core.KindAlbum, ID: "empty"}, core.QualityCD)
	if err == nil {
		t.Fatal("BuildQueue() = nil error, want failure for empty album")
	}
}
