// Package session persists the playback session for resume-on-restart.
package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/errors"
)

// Record is the durable session snapshot: enough to rebuild the queue and
// prime the cursor and position after a restart.
type Record struct {
	Entity     core.EntityRef
	TrackIndex int
	Position   time.Duration
	Quality    core.Quality
}

// Store is a durable single-record session store backed by sqlite. The
// record is overwritten, never appended, on each save.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS session (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	entity_kind TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	track_index INTEGER NOT NULL,
	position_ns INTEGER NOT NULL,
	quality INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open opens (creating if necessary) the session database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Persistence("open", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Persistence("open", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Persistence("migrate", err)
	}

	return &Store{db: db}, nil
}

// Save overwrites the session record.
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO session (id, entity_kind, entity_id, track_index, position_ns, quality, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			entity_kind = excluded.entity_kind,
			entity_id = excluded.entity_id,
			track_index = excluded.track_index,
			position_ns = excluded.position_ns,
			quality = excluded.quality,
			updated_at = CURRENT_TIMESTAMP`,
		string(rec.Entity.Kind), rec.Entity.ID, rec.TrackIndex, int64(rec.Position), int(rec.Quality))
	if err != nil {
		return errors.Persistence("save", err)
	}
	return nil
}

// Load reads the session record. Returns errors.ErrNoSession if none has
// been saved or the last save was a clear.
func (s *Store) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT entity_kind, entity_id, track_index, position_ns, quality
		FROM session WHERE id = 1`)

	var (
		kind, id   string
		index      int
		positionNS int64
		quality    int
	)
	if err := row.Scan(&kind, &id, &index, &positionNS, &quality); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrNoSession
		}
		return nil, errors.Persistence("load", err)
	}

	if kind == "" || id == "" {
		return nil, errors.ErrNoSession
	}

	return &Record{
		Entity:     core.EntityRef{Kind: core.EntityKind(kind), ID: id},
		TrackIndex: index,
		Position:   time.Duration(positionNS),
		Quality:    core.Quality(quality),
	}, nil
}

// Clear persists an empty session, as on explicit stop.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return errors.Persistence("clear", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close session db: %w", err)
	}
	return nil
}
