package web

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/player"
)

// Inbound messages are tagged by variant name: parameterless actions
// arrive as a bare JSON string ("playPause"), parameterized ones as a
// single-key object ({"skipTo":{"num":3}}).
type actionPayload struct {
	Num        *int   `json:"num,omitempty"`
	AlbumID    string `json:"albumId,omitempty"`
	TrackID    string `json:"trackId,omitempty"`
	PlaylistID string `json:"playlistId,omitempty"`
	ArtistID   string `json:"artistId,omitempty"`
	Query      string `json:"query,omitempty"`
	Seconds    *int64 `json:"seconds,omitempty"`
	Level      *int   `json:"level,omitempty"`
}

// parseAction decodes one inbound frame into a controller command. An
// unrecognized or malformed action returns an error and produces no
// command.
func parseAction(data []byte, defaultQuality core.Quality) (player.Command, error) {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return unitAction(name)
	}

	var tagged map[string]actionPayload
	if err := json.Unmarshal(data, &tagged); err != nil {
		return nil, fmt.Errorf("malformed action: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("action must have exactly one tag, got %d", len(tagged))
	}

	for name, p := range tagged {
		switch name {
		case "skipTo":
			if p.Num == nil {
				return nil, fmt.Errorf("skipTo requires num")
			}
			return player.SkipTo{Index: *p.Num}, nil
		case "seek":
			if p.Seconds == nil {
				return nil, fmt.Errorf("seek requires seconds")
			}
			return player.Seek{Position: time.Duration(*p.Seconds) * time.Second}, nil
		case "setVolume":
			if p.Level == nil {
				return nil, fmt.Errorf("setVolume requires level")
			}
			return player.SetVolume{Level: *p.Level}, nil
		case "playAlbum":
			return player.PlayEntity{
				Entity:  core.EntityRef{Kind: core.KindAlbum, ID: p.AlbumID},
				Quality: defaultQuality,
			}, nil
		case "playTrack":
			return player.PlayEntity{
				Entity:  core.EntityRef{Kind: core.KindTrack, ID: p.TrackID},
				Quality: defaultQuality,
			}, nil
		case "playPlaylist":
			return player.PlayEntity{
				Entity:  core.EntityRef{Kind: core.KindPlaylist, ID: p.PlaylistID},
				Quality: defaultQuality,
			}, nil
		case "search":
			return player.Search{Query: p.Query}, nil
		case "fetchArtistAlbums":
			return player.FetchArtistAlbums{ArtistID: p.ArtistID}, nil
		case "fetchPlaylistTracks":
			return player.FetchPlaylistTracks{PlaylistID: p.PlaylistID}, nil
		default:
			return nil, fmt.Errorf("unknown action %q", name)
		}
	}
	return nil, fmt.Errorf("empty action")
}

func unitAction(name string) (player.Command, error) {
	switch name {
	case "playPause":
		return player.PlayPause{}, nil
	case "next":
		return player.Next{}, nil
	case "previous":
		return player.Previous{}, nil
	case "stop":
		return player.Stop{}, nil
	case "jumpForward":
		return player.JumpForward{}, nil
	case "jumpBackward":
		return player.JumpBackward{}, nil
	case "fetchUserPlaylists":
		return player.FetchUserPlaylists{}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", name)
	}
}
