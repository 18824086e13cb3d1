package catalog

import (
	"time"

	"github.com/chime-audio/chime/internal/core"
)

// API response shapes. The catalog nests artist/album objects inside
// tracks; converters flatten them into core types.

type trackResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	TrackNumber     int             `json:"track_number"`
	DurationSec     int             `json:"duration"`
	Explicit        bool            `json:"parental_warning"`
	HiresStreamable bool            `json:"hires_streamable"`
	Performer       *artistResponse `json:"performer,omitempty"`
	Album           *albumResponse  `json:"album,omitempty"`
}

type albumResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	ReleasedAt int64           `json:"released_at"`
	Artist     *artistResponse `json:"artist,omitempty"`
	Image      imageResponse   `json:"image"`
	Tracks     struct {
		Items []trackResponse `json:"items"`
	} `json:"tracks"`
}

type artistResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Albums struct {
		Items []albumResponse `json:"items"`
	} `json:"albums"`
}

type playlistResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	TracksCount int           `json:"tracks_count"`
	Image       imageResponse `json:"image"`
	Tracks      struct {
		Items []trackResponse `json:"items"`
	} `json:"tracks"`
}

type imageResponse struct {
	Large string `json:"large"`
	Small string `json:"small"`
}

func (i imageResponse) best() string {
	if i.Large != "" {
		return i.Large
	}
	return i.Small
}

type searchResponse struct {
	Albums struct {
		Items []albumResponse `json:"items"`
	} `json:"albums"`
	Tracks struct {
		Items []trackResponse `json:"items"`
	} `json:"tracks"`
	Artists struct {
		Items []artistResponse `json:"items"`
	} `json:"artists"`
	Playlists struct {
		Items []playlistResponse `json:"items"`
	} `json:"playlists"`
}

type userPlaylistsResponse struct {
	Playlists struct {
		Items []playlistResponse `json:"items"`
	} `json:"playlists"`
}

type streamURLResponse struct {
	URL      string `json:"url"`
	FormatID int    `json:"format_id"`
}

func convertTrack(t *trackResponse) core.Track {
	track := core.Track{
		ID:             t.ID,
		Title:          t.Title,
		Number:         t.TrackNumber,
		Duration:       time.Duration(t.DurationSec) * time.Second,
		Explicit:       t.Explicit,
		HiresAvailable: t.HiresStreamable,
	}
	if t.Performer != nil {
		track.Artist = t.Performer.Name
	}
	if t.Album != nil {
		track.Album = t.Album.Title
		track.CoverArt = t.Album.Image.best()
		if track.Artist == "" && t.Album.Artist != nil {
			track.Artist = t.Album.Artist.Name
		}
	}
	return track
}

func convertAlbum(a *albumResponse) core.Album {
	album := core.Album{
		ID:       a.ID,
		Title:    a.Title,
		CoverArt: a.Image.best(),
	}
	if a.Artist != nil {
		album.Artist = a.Artist.Name
	}
	if a.ReleasedAt > 0 {
		album.ReleaseYear = time.Unix(a.ReleasedAt, 0).UTC().Year()
	}
	for i := range a.Tracks.Items {
		track := convertTrack(&a.Tracks.Items[i])
		// Album tracks inherit the album's title and art.
		track.Album = a.Title
		if track.Artist == "" {
			track.Artist = album.Artist
		}
		if track.CoverArt == "" {
			track.CoverArt = album.CoverArt
		}
		album.Tracks = append(album.Tracks, track)
	}
	return album
}

func convertArtist(a *artistResponse) core.Artist {
	artist := core.Artist{ID: a.ID, Name: a.Name}
	for i := range a.Albums.Items {
		artist.Albums = append(artist.Albums, convertAlbum(&a.Albums.Items[i]))
	}
	return artist
}

func convertPlaylist(p *playlistResponse) core.Playlist {
	playlist := core.Playlist{
		ID:         p.ID,
		Title:      p.Name,
		TrackCount: p.TracksCount,
		CoverArt:   p.Image.best(),
	}
	for i := range p.Tracks.Items {
		playlist.Tracks = append(playlist.Tracks, convertTrack(&p.Tracks.Items[i]))
	}
	return playlist
}
