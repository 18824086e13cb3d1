package core

import "time"

// TransportState is the controller's transport status. It is owned
// exclusively by the playback controller; every other component sees it
// only inside immutable snapshots.
type TransportState string

const (
	StateStopped   TransportState = "stopped"
	StateLoading   TransportState = "loading"
	StatePlaying   TransportState = "playing"
	StatePaused    TransportState = "paused"
	StateBuffering TransportState = "buffering"
)

// Active returns true when a queue entry should hold Playing status.
func (s TransportState) Active() bool {
	switch s {
	case StatePlaying, StatePaused, StateBuffering:
		return true
	}
	return false
}

// Snapshot is a point-in-time projection of the controller's state: the
// unit broadcast to subscribers and persisted for resume.
type Snapshot struct {
	Queue        Queue          `json:"queue"`
	State        TransportState `json:"state"`
	Position     time.Duration  `json:"position"`
	Duration     time.Duration  `json:"duration"`
	Volume       int            `json:"volume"`
	BitDepth     int            `json:"bitdepth"`
	SamplingRate int            `json:"samplingRate"`
}
