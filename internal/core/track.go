package core

import "time"

// Track represents a playable audio track.
type Track struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Artist         string        `json:"artist"`
	Album          string        `json:"album"`
	Number         int           `json:"number"`
	Duration       time.Duration `json:"duration"`
	Explicit       bool          `json:"explicit"`
	HiresAvailable bool          `json:"hiresAvailable"`
	CoverArt       string        `json:"coverArt,omitempty"`
}

// Album represents a catalog album with its tracks in listed order.
type Album struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	ReleaseYear int     `json:"releaseYear"`
	CoverArt    string  `json:"coverArt,omitempty"`
	Tracks      []Track `json:"tracks,omitempty"`
}

// Artist represents a catalog artist.
type Artist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Albums []Album `json:"albums,omitempty"`
}

// Playlist represents a user playlist. Tracks are heterogeneous: each
// carries its own artist and album metadata.
type Playlist struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	TrackCount int     `json:"trackCount"`
	CoverArt   string  `json:"coverArt,omitempty"`
	Tracks     []Track `json:"tracks,omitempty"`
}

// SearchResults holds the results of a catalog search across entity kinds.
type SearchResults struct {
	Query     string     `json:"query"`
	Albums    []Album    `json:"albums"`
	Tracks    []Track    `json:"tracks"`
	Artists   []Artist   `json:"artists"`
	Playlists []Playlist `json:"playlists"`
}
