package player

import (
	"context"
	"fmt"

	"github.com/chime-audio/chime/internal/catalog"
	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
)

// BuildQueue expands an entity reference into an ordered queue at the
// given quality preference. Stream URLs are not resolved here; each entry
// resolves its URL lazily on first load. Any failure returns a
// ResolutionError with the reference attached and no partial queue.
func BuildQueue(ctx context.Context, svc catalog.Service, ref core.EntityRef, quality core.Quality) (core.Queue, error) {
	queue := core.Queue{
		Source:  ref,
		Quality: quality,
	}

	switch ref.Kind {
	case core.KindAlbum:
		album, err := svc.Album(ctx, ref.ID)
		if err != nil {
			return core.Queue{}, errors.Resolution(ref, err)
		}
		if len(album.Tracks) == 0 {
			return core.Queue{}, errors.Resolution(ref, fmt.Errorf("album has no tracks"))
		}
		queue.Title = fmt.Sprintf("%s — %s", album.Artist, album.Title)
		for i, track := range album.Tracks {
			queue.Entries = append(queue.Entries, core.QueueEntry{
				Track:    track,
				Position: i,
				Status:   core.StatusUnplayed,
			})
		}

	case core.KindPlaylist:
		playlist, err := svc.Playlist(ctx, ref.ID)
		if err != nil {
			return core.Queue{}, errors.Resolution(ref, err)
		}
		if len(playlist.Tracks) == 0 {
			return core.Queue{}, errors.Resolution(ref, fmt.Errorf("playlist has no tracks"))
		}
		queue.Title = playlist.Title
		for i, track := range playlist.Tracks {
			queue.Entries = append(queue.Entries, core.QueueEntry{
				Track:    track,
				Position: i,
				Status:   core.StatusUnplayed,
			})
		}

	case core.KindTrack:
		track, err := svc.Track(ctx, ref.ID)
		if err != nil {
			return core.Queue{}, errors.Resolution(ref, err)
		}
		queue.Title = fmt.Sprintf("%s — %s", track.Artist, track.Title)
		queue.Entries = []core.QueueEntry{{
			Track:  *track,
			Status: core.StatusUnplayed,
		}}

	default:
		return core.Queue{}, errors.Resolution(ref, fmt.Errorf("unknown entity kind %q", ref.Kind))
	}

	return queue, nil
}
