package web

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/chime-audio/chime/internal/broadcast"
	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
	"github.com/chime-audio/chime/internal/pipeline"
	"github.com/chime-audio/chime/internal/player"
)

func TestParseActionUnitVariants(t *testing.T) {
	cases := []struct {
		frame string
		want  player.Command
	}{
		{`"playPause"`, player.PlayPause{}},
		{`"next"`, player.Next{}},
		{`"previous"`, player.Previous{}},
		{`"stop"`, player.Stop{}},
		{`"jumpForward"`, player.JumpForward{}},
		{`"jumpBackward"`, player.JumpBackward{}},
		{`"fetchUserPlaylists"`, player.FetchUserPlaylists{}},
	}
	for _, tc := range cases {
		got, err := parseAction([]byte(tc.frame), core.QualityCD)
		if err != nil {
			t.Errorf("parseAction(%s) error: %v", tc.frame, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseAction(%s) = %#v, want %#v", tc.frame, got, tc.want)
		}
	}
}

func TestParseActionTaggedVariants(t *testing.T) {
	cases := []struct {
		frame string
		want  player.Command
	}{
		{`{"skipTo":{"num":3}}`, player.SkipTo{Index: 3}},
		{`{"seek":{"seconds":90}}`, player.Seek{Position: 90 * time.Second}},
		{`{"setVolume":{"level":40}}`, player.SetVolume{Level: 40}},
		{`{"playAlbum":{"albumId":"al1"}}`, player.PlayEntity{
			Entity: core.EntityRef{Kind: core.KindAlbum, ID: "al1"}, Quality: core.QualityCD}},
		{`{"playTrack":{"trackId":"t1"}}`, player.PlayEntity{
			Entity: core.EntityRef{Kind: core.KindTrack, ID: "t1"}, Quality: core.QualityCD}},
		{`{"playPlaylist":{"playlistId":"p1"}}`, player.PlayEntity{
			Entity: core.EntityRef{Kind: core.KindPlaylist, ID: "p1"}, Quality: core.QualityCD}},
		{`{"search":{"query":"boards of canada"}}`, player.Search{Query: "boards of canada"}},
		{`{"fetchArtistAlbums":{"artistId":"ar1"}}`, player.FetchArtistAlbums{ArtistID: "ar1"}},
		{`{"fetchPlaylistTracks":{"playlistId":"p1"}}`, player.FetchPlaylistTracks{PlaylistID: "p1"}},
	}
	for _, tc := range cases {
		got, err := parseAction([]byte(tc.frame), core.QualityCD)
		if err != nil {
			t.Errorf("parseAction(%s) error: %v", tc.frame, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseAction(%s) = %#v, want %#v", tc.frame, got, tc.want)
		}
	}
}

func TestParseActionRejectsMalformed(t *testing.T) {
	cases := []string{
		`"danceHarder"`,
		`{"warp":{"factor":9}}`,
		`{"skipTo":{}}`,
		`{"seek":{}}`,
		`{"setVolume":{}}`,
		`{"skipTo":{"num":1},"next":{}}`,
		`{}`,
		`42`,
		`not json`,
	}
	for _, frame := range cases {
		if cmd, err := parseAction([]byte(frame), core.QualityCD); err == nil {
			t.Errorf("parseAction(%s) = %#v, want error", frame, cmd)
		}
	}
}

// nullCatalog satisfies catalog.Service for wiring tests.
type nullCatalog struct{}

func (nullCatalog) Album(context.Context, string) (*core.Album, error) {
	return nil, errors.ErrNotFound
}
func (nullCatalog) Track(context.Context, string) (*core.Track, error) {
	return nil, errors.ErrNotFound
}
func (nullCatalog) Playlist(context.Context, string) (*core.Playlist, error) {
	return nil, errors.ErrNotFound
}
func (nullCatalog) ArtistAlbums(context.Context, string) ([]core.Album, error) { return nil, nil }
func (nullCatalog) Search(context.Context, string) (*core.SearchResults, error) {
	return &core.SearchResults{}, nil
}
func (nullCatalog) UserPlaylists(context.Context) ([]core.Playlist, error) { return nil, nil }
func (nullCatalog) StreamURL(context.Context, string, core.Quality) (string, error) {
	return "", errors.ErrNotFound
}

// nullEngine satisfies pipeline.Engine for wiring tests.
type nullEngine struct{ events chan pipeline.Event }

func (e *nullEngine) Load(string) error                  { return nil }
func (e *nullEngine) Play() error                        { return nil }
func (e *nullEngine) Pause() error                       { return nil }
func (e *nullEngine) Stop() error                        { return nil }
func (e *nullEngine) Seek(time.Duration) error           { return nil }
func (e *nullEngine) SetVolume(int) error                { return nil }
func (e *nullEngine) QueryPosition() (time.Duration, bool) { return 0, false }
func (e *nullEngine) Events() <-chan pipeline.Event      { return e.events }
func (e *nullEngine) Close() error                       { close(e.events); return nil }

func TestWebsocketBootstrapAndActions(t *testing.T) {
	hub := broadcast.New()
	ctrl := player.New(player.Config{
		Catalog: nullCatalog{},
		Engine:  &nullEngine{events: make(chan pipeline.Event)},
		Hub:     hub,
		Logger:  zerolog.Nop(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go ctrl.Run(ctx)

	// Publish state before any client connects; the bootstrap must
	// replay it.
	hub.Publish(core.Notification{Status: &core.StatusNotice{Status: core.StateStopped}})

	srv := New(Config{
		Addr:     "127.0.0.1:0",
		Hub:      hub,
		Controls: ctrl.Controls(),
		Quality:  core.QualityCD,
		Logger:   zerolog.Nop(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var boot core.Notification
	if err := conn.ReadJSON(&boot); err != nil {
		t.Fatalf("bootstrap read error: %v", err)
	}
	if boot.Status == nil || boot.Status.Status != core.StateStopped {
		t.Fatalf("bootstrap = %+v, want status stopped", boot)
	}

	// An unknown action is rejected with an error frame and no state
	// change.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`"teleport"`)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	var rejected core.Notification
	if err := conn.ReadJSON(&rejected); err != nil {
		t.Fatalf("rejection read error: %v", err)
	}
	if rejected.Error == nil {
		t.Fatalf("rejection = %+v, want error frame", rejected)
	}

	// A known action on an empty queue is forwarded to the controller,
	// which rejects it through the hub.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`"next"`)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	var refused core.Notification
	if err := conn.ReadJSON(&refused); err != nil {
		t.Fatalf("controller rejection read error: %v", err)
	}
	if refused.Error == nil || !strings.Contains(refused.Error.Message, "queue is empty") {
		t.Fatalf("controller rejection = %+v, want queue-empty error", refused)
	}
}

func TestHealthz(t *testing.T) {
	hub := broadcast.New()
	srv := New(Config{Addr: "127.0.0.1:0", Hub: hub, Logger: zerolog.Nop()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
