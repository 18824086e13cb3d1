package core

// Notification is the tagged union broadcast to subscribers. Exactly one
// field is non-nil. The JSON encoding tags the variant with its field
// name, so a status change serializes as {"status":{"status":"playing"}}.
type Notification struct {
	Buffering        *BufferingNotice    `json:"buffering,omitempty"`
	Status           *StatusNotice       `json:"status,omitempty"`
	Position         *PositionNotice     `json:"position,omitempty"`
	Duration         *DurationNotice     `json:"duration,omitempty"`
	CurrentTrackList *TrackListNotice    `json:"currentTrackList,omitempty"`
	AudioQuality     *AudioQualityNotice `json:"audioQuality,omitempty"`
	SearchResults    *SearchResults      `json:"searchResults,omitempty"`
	ArtistAlbums     *ArtistAlbumsNotice `json:"artistAlbums,omitempty"`
	PlaylistTracks   *PlaylistTracksNotice `json:"playlistTracks,omitempty"`
	UserPlaylists    *UserPlaylistsNotice  `json:"userPlaylists,omitempty"`
	Error            *ErrorNotice        `json:"error,omitempty"`
}

// BufferingNotice reports pipeline buffering progress.
type BufferingNotice struct {
	IsBuffering bool           `json:"isBuffering"`
	Percent     int            `json:"percent"`
	TargetState TransportState `json:"targetState"`
}

// StatusNotice reports a transport status change.
type StatusNotice struct {
	Status TransportState `json:"status"`
}

// PositionNotice reports the playback clock in whole seconds.
type PositionNotice struct {
	Clock int64 `json:"clock"`
}

// DurationNotice reports the current entry's duration in whole seconds.
type DurationNotice struct {
	Clock int64 `json:"clock"`
}

// TrackListNotice carries the full current queue.
type TrackListNotice struct {
	List Queue `json:"list"`
}

// AudioQualityNotice reports the decoded stream's format.
type AudioQualityNotice struct {
	BitDepth     int `json:"bitdepth"`
	SamplingRate int `json:"samplingRate"`
}

// ArtistAlbumsNotice carries the result of an artist-albums fetch.
type ArtistAlbumsNotice struct {
	ArtistID string  `json:"artistId"`
	Albums   []Album `json:"albums"`
}

// PlaylistTracksNotice carries the result of a playlist-tracks fetch.
type PlaylistTracksNotice struct {
	PlaylistID string  `json:"playlistId"`
	Tracks     []Track `json:"tracks"`
}

// UserPlaylistsNotice carries the current user's playlists.
type UserPlaylistsNotice struct {
	Playlists []Playlist `json:"playlists"`
}

// ErrorNotice surfaces an error to subscribers. Every error that stops or
// rejects playback reaches clients through one of these, never only a log
// line.
type ErrorNotice struct {
	Message string `json:"message"`
}
