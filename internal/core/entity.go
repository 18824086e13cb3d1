package core

import "fmt"

// EntityKind identifies the kind of catalog entity a reference points at.
type EntityKind string

const (
	KindAlbum    EntityKind = "album"
	KindTrack    EntityKind = "track"
	KindPlaylist EntityKind = "playlist"
)

// EntityRef identifies an album, track, or playlist in the remote catalog.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// IsZero returns true if the reference is empty.
func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Quality is an audio quality preference, using the catalog's format
// identifiers.
type Quality int

const (
	QualityMP3      Quality = 5
	QualityCD       Quality = 6
	QualityHiRes96  Quality = 7
	QualityHiRes192 Quality = 27
)

// ParseQuality maps a config/CLI quality name to a Quality.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "mp3":
		return QualityMP3, nil
	case "cd":
		return QualityCD, nil
	case "hires96", "hifi":
		return QualityHiRes96, nil
	case "hires192":
		return QualityHiRes192, nil
	default:
		return 0, fmt.Errorf("unknown quality %q", s)
	}
}
