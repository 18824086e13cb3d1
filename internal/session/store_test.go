package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadWithoutSave(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Load(); !errors.Is(err, errors.ErrNoSession) {
		t.Errorf("Load = %v, want ErrNoSession", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rec := Record{
		Entity:     core.EntityRef{Kind: core.KindAlbum, ID: "alb-1"},
		TrackIndex: 3,
		Position:   45 * time.Second,
		Quality:    core.QualityHiRes96,
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != rec {
		t.Errorf("Load = %+v, want %+v", *got, rec)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	first := Record{Entity: core.EntityRef{Kind: core.KindAlbum, ID: "a"}, TrackIndex: 1}
	second := Record{Entity: core.EntityRef{Kind: core.KindPlaylist, ID: "p"}, TrackIndex: 7, Position: time.Minute}

	if err := store.Save(first); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != second {
		t.Errorf("Load = %+v, want %+v", *got, second)
	}
}

func TestClearRemovesSession(t *testing.T) {
	store := newTestStore(t)

	rec := Record{Entity: core.EntityRef{Kind: core.KindTrack, ID: "t"}, TrackIndex: 0}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, err := store.Load(); !errors.Is(err, errors.ErrNoSession) {
		t.Errorf("Load after Clear = %v, want ErrNoSession", err)
	}
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := Record{
		Entity:     core.EntityRef{Kind: core.KindAlbum, ID: "alb-9"},
		TrackIndex: 2,
		Position:   90 * time.Second,
		Quality:    core.QualityCD,
	}
	if err := store.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
	if *got != rec {
		t.Errorf("Load = %+v, want %+v", *got, rec)
	}
}
