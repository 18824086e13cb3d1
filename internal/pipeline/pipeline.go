// Package pipeline defines the boundary to the decode/render engine. The
// controller treats the engine as unreliable: stream URLs can stall or
// fail mid-playback, and the engine is the sole source of truth for real
// playback position.
package pipeline

import (
	"time"

	"github.com/chime-audio/chime/internal/errors"
)

// EventKind identifies an engine event variant.
type EventKind int

const (
	EventPositionTick EventKind = iota
	EventDurationKnown
	EventBuffering
	EventEndOfStream
	EventAudioQuality
	EventError
)

// Event is one entry in the engine's ordered event stream, consumed
// exclusively by the playback controller.
type Event struct {
	Kind     EventKind
	Position time.Duration // PositionTick
	Duration time.Duration // DurationKnown
	Percent  int           // Buffering, 0-100
	BitDepth int           // AudioQuality
	Rate     int           // AudioQuality, Hz
	Err      *errors.PipelineError
}

// Engine is the imperative control surface of the decode/render engine.
// Calls may block on the underlying engine and are run outside the
// controller's serial loop; failures surface on the event stream.
type Engine interface {
	// Load prepares the given stream URL for playback, replacing any
	// current stream.
	Load(streamURL string) error
	Play() error
	Pause() error
	Stop() error
	Seek(pos time.Duration) error
	// SetVolume sets output volume, 0-100.
	SetVolume(level int) error
	// QueryPosition reports the authoritative playback position. ok is
	// false when no stream is loaded.
	QueryPosition() (pos time.Duration, ok bool)
	// Events returns the engine's ordered event stream. The channel is
	// closed by Close.
	Events() <-chan Event
	Close() error
}
