package core

// EntryStatus tracks where a queue entry sits relative to the cursor.
type EntryStatus string

const (
	StatusUnplayed   EntryStatus = "unplayed"
	StatusPlaying    EntryStatus = "playing"
	StatusPlayed     EntryStatus = "played"
	StatusUnplayable EntryStatus = "unplayable"
)

// QueueEntry identifies one playable unit in a queue. Immutable once
// created except Status and the lazily-filled StreamURL.
type QueueEntry struct {
	Track     Track       `json:"track"`
	Position  int         `json:"position"`
	Status    EntryStatus `json:"status"`
	StreamURL string      `json:"-"`
}

// Queue is the ordered playback sequence derived from one entity
// reference, plus the cursor marking the current entry.
type Queue struct {
	Source  EntityRef    `json:"source"`
	Title   string       `json:"title"`
	Quality Quality      `json:"quality"`
	Entries []QueueEntry `json:"entries"`
	Cursor  int          `json:"cursor"`
}

// Current returns the entry at the cursor, or nil if the queue is empty
// or the cursor is out of range.
func (q *Queue) Current() *QueueEntry {
	if q == nil || q.Cursor < 0 || q.Cursor >= len(q.Entries) {
		return nil
	}
	return &q.Entries[q.Cursor]
}

// Len returns the number of entries in the queue.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Entries)
}

// IsEmpty returns true if the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// MoveTo moves the cursor to index and rewrites entry statuses: every
// entry strictly before index becomes Played, the entry at index becomes
// Playing, every entry strictly after becomes Unplayed. Unplayable
// entries keep that status. Returns false if index is out of range,
// leaving the queue unchanged.
func (q *Queue) MoveTo(index int) bool {
	if q == nil || index < 0 || index >= len(q.Entries) {
		return false
	}
	for i := range q.Entries {
		if i != index && q.Entries[i].Status == StatusUnplayable {
			continue
		}
		switch {
		case i < index:
			q.Entries[i].Status = StatusPlayed
		case i == index:
			q.Entries[i].Status = StatusPlaying
		default:
			q.Entries[i].Status = StatusUnplayed
		}
	}
	q.Cursor = index
	return true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.Source = EntityRef{}
	q.Title = ""
	q.Entries = nil
	q.Cursor = 0
}

// Copy returns a deep copy that shares no slices with the receiver.
// Subscribers receive copies so they never hold a reference into live
// controller state.
func (q *Queue) Copy() Queue {
	if q == nil {
		return Queue{}
	}
	cp := *q
	cp.Entries = make([]QueueEntry, len(q.Entries))
	copy(cp.Entries, q.Entries)
	return cp
}
