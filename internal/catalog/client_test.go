package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", zerolog.Nop()), srv
}

func TestAlbumConvertsResponse(t *testing.T) {
	const body = `{
		"id": "al1",
		"title": "Geogaddi",
		"released_at": 1013558400,
		"artist": {"id": "ar1", "name": "Boards of Canada"},
		"image": {"large": "https://img.test/l.jpg", "small": "https://img.test/s.jpg"},
		"tracks": {"items": [
			{"id": "t1", "title": "Music Is Math", "track_number": 2, "duration": 325}
		]}
	}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/albums/al1" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/albums/al1")
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Write([]byte(body))
	}))

	album, err := client.Album(context.Background(), "al1")
	if err != nil {
		t.Fatalf("Album() error = %v", err)
	}
	if album.Title != "Geogaddi" || album.Artist != "Boards of Canada" {
		t.Errorf("album = %q by %q, want Geogaddi by Boards of Canada", album.Title, album.Artist)
	}
	if album.ReleaseYear != 2002 {
		t.Errorf("ReleaseYear = %d, want 2002", album.ReleaseYear)
	}
	if album.CoverArt != "https://img.test/l.jpg" {
		t.Errorf("CoverArt = %q, want large image", album.CoverArt)
	}
	if len(album.Tracks) != 1 {
		t.Fatalf("len(Tracks) = %d, want 1", len(album.Tracks))
	}
	track := album.Tracks[0]
	if track.Artist != "Boards of Canada" {
		t.Errorf("track inherits artist: got %q", track.Artist)
	}
	if track.Album != "Geogaddi" {
		t.Errorf("track inherits album: got %q", track.Album)
	}
	if track.Duration != 325*time.Second {
		t.Errorf("Duration = %v, want 5m25s", track.Duration)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id": "t1", "title": "Roygbiv"}`))
	}))

	track, err := client.Track(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if track.Title != "Roygbiv" {
		t.Errorf("Title = %q, want %q", track.Title, "Roygbiv")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("request count = %d, want 2", got)
	}
}

func TestGetNotFoundDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Album(context.Background(), "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("request count = %d, want 1 (no retry on 404)", got)
	}
}

func TestStreamURLRequestsQuality(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format_id"); got != "27" {
			t.Errorf("format_id = %q, want %q", got, "27")
		}
		w.Write([]byte(`{"url": "https://stream.test/t1", "format_id": 27}`))
	}))

	url, err := client.StreamURL(context.Background(), "t1", core.QualityHiRes192)
	if err != nil {
		t.Fatalf("StreamURL() error = %v", err)
	}
	if url != "https://stream.test/t1" {
		t.Errorf("url = %q, want %q", url, "https://stream.test/t1")
	}
}

func TestStreamURLRejectsEmptyURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url": ""}`))
	}))

	if _, err := client.StreamURL(context.Background(), "t1", core.QualityCD); err == nil {
		t.Error("StreamURL() error = nil, want error on empty url")
	}
}

func TestSearchPopulatesAllSections(t *testing.T) {
	const body = `{
		"albums": {"items": [{"id": "al1", "title": "A"}]},
		"tracks": {"items": [{"id": "t1", "title": "T"}]},
		"artists": {"items": [{"id": "ar1", "name": "R"}]},
		"playlists": {"items": [{"id": "pl1", "name": "P"}]}
	}`
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "boards" {
			t.Errorf("query = %q, want %q", got, "boards")
		}
		w.Write([]byte(body))
	}))

	results, err := client.Search(context.Background(), "boards")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results.Query != "boards" {
		t.Errorf("Query = %q, want %q", results.Query, "boards")
	}
	if len(results.Albums) != 1 || len(results.Tracks) != 1 ||
		len(results.Artists) != 1 || len(results.Playlists) != 1 {
		t.Errorf("section sizes = %d/%d/%d/%d, want 1 each",
			len(results.Albums), len(results.Tracks), len(results.Artists), len(results.Playlists))
	}
}
