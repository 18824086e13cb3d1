// Package catalog resolves entity references against the remote music
// catalog: metadata lookups, search, and stream URLs.
package catalog

import (
	"context"

	"github.com/chime-audio/chime/internal/core"
)

// Service is the catalog boundary used by the playback controller and the
// UI surfaces. Implementations must be safe for concurrent use; lookups
// happen both inside queue resolution and from ad hoc UI requests.
type Service interface {
	Album(ctx context.Context, id string) (*core.Album, error)
	Track(ctx context.Context, id string) (*core.Track, error)
	Playlist(ctx context.Context, id string) (*core.Playlist, error)
	ArtistAlbums(ctx context.Context, artistID string) ([]core.Album, error)
	Search(ctx context.Context, query string) (*core.SearchResults, error)
	UserPlaylists(ctx context.Context) ([]core.Playlist, error)
	// StreamURL resolves a track to a time-limited stream URL at the
	// given quality.
	StreamURL(ctx context.Context, trackID string, quality core.Quality) (string, error)
}
