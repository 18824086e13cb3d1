package player

import (
	"context"
	"time"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
)

// Command is the closed set of controller commands. Producers submit
// commands asynchronously and observe results only through the broadcast
// hub.
type Command interface{ isCommand() }

// PlayEntity resolves an entity reference into a new queue and starts
// playback from its first entry. A failed resolution leaves the current
// session untouched.
type PlayEntity struct {
	Entity  core.EntityRef
	Quality core.Quality
}

// PlayPause toggles between playing and paused. It also restarts a
// session primed by resume: when stopped with a non-empty queue, it
// loads the current entry and plays.
type PlayPause struct{}

// Next advances to the next queue entry; at the last entry it stops.
type Next struct{}

// Previous seeks to the start of the current entry when more than a
// second in, otherwise retreats the cursor; at the first entry it
// replays the first entry.
type Previous struct{}

// SkipTo jumps directly to the queue entry at Index.
type SkipTo struct{ Index int }

// Seek moves playback to an absolute position in the current entry.
type Seek struct{ Position time.Duration }

// JumpForward seeks ten seconds ahead, clamped to the duration.
type JumpForward struct{}

// JumpBackward seeks ten seconds back, clamped to zero.
type JumpBackward struct{}

// Stop clears the queue and persists an empty session.
type Stop struct{}

// SetVolume sets output volume, 0-100.
type SetVolume struct{ Level int }

// Search queries the catalog; results arrive as a notification.
type Search struct{ Query string }

// FetchArtistAlbums fetches an artist's albums, sorted by release year.
type FetchArtistAlbums struct{ ArtistID string }

// FetchPlaylistTracks fetches a playlist's tracks.
type FetchPlaylistTracks struct{ PlaylistID string }

// FetchUserPlaylists fetches the current user's playlists.
type FetchUserPlaylists struct{}

func (PlayEntity) isCommand()          {}
func (PlayPause) isCommand()           {}
func (Next) isCommand()                {}
func (Previous) isCommand()            {}
func (SkipTo) isCommand()              {}
func (Seek) isCommand()                {}
func (JumpForward) isCommand()         {}
func (JumpBackward) isCommand()        {}
func (Stop) isCommand()                {}
func (SetVolume) isCommand()           {}
func (Search) isCommand()              {}
func (FetchArtistAlbums) isCommand()   {}
func (FetchPlaylistTracks) isCommand() {}
func (FetchUserPlaylists) isCommand()  {}

// Controls is the handle other components use to send commands to the
// controller. Submission blocks only while the bounded command channel is
// full; commands are not idempotent, so backpressure waits rather than
// drops.
type Controls struct {
	cmds chan<- Command
	done <-chan struct{}
}

// Submit sends cmd to the controller.
func (c Controls) Submit(ctx context.Context, cmd Command) error {
	select {
	case c.cmds <- cmd:
		return nil
	case <-c.done:
		return errors.ErrShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c Controls) PlayEntity(ctx context.Context, ref core.EntityRef, quality core.Quality) error {
	return c.Submit(ctx, PlayEntity{Entity: ref, Quality: quality})
}

func (c Controls) PlayPause(ctx context.Context) error { return c.Submit(ctx, PlayPause{}) }
func (c Controls) Next(ctx context.Context) error      { return c.Submit(ctx, Next{}) }
func (c Controls) Previous(ctx context.Context) error  { return c.Submit(ctx, Previous{}) }
func (c Controls) Stop(ctx context.Context) error      { return c.Submit(ctx, Stop{}) }

func (c Controls) SkipTo(ctx context.Context, index int) error {
	return c.Submit(ctx, SkipTo{Index: index})
}

func (c Controls) Seek(ctx context.Context, pos time.Duration) error {
	return c.Submit(ctx, Seek{Position: pos})
}

func (c Controls) SetVolume(ctx context.Context, level int) error {
	return c.Submit(ctx, SetVolume{Level: level})
}

func (c Controls) Search(ctx context.Context, query string) error {
	return c.Submit(ctx, Search{Query: query})
}
