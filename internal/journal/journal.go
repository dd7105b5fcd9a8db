// Package journal keeps a local SQLite record of sets logged in live
// sessions, so a session interrupted by a crash can be listed and its data
// recovered at startup. Best-effort only: journal failures are the caller's
// to log, never to surface.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Journal wraps the local journal database.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dir/journal.db.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_sets (
		session_id     TEXT NOT NULL,
		workout_type   TEXT NOT NULL,
		started_at     TIMESTAMP NOT NULL,
		exercise_index INTEGER NOT NULL,
		exercise_name  TEXT NOT NULL,
		set_number     INTEGER NOT NULL,
		weight         REAL NOT NULL,
		reps           INTEGER NOT NULL,
		logged_at      TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, exercise_index, set_number)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Entry is one journaled set.
type Entry struct {
	SessionID     uuid.UUID
	WorkoutType   string
	StartedAt     time.Time
	ExerciseIndex int
	ExerciseName  string
	SetNumber     int
	Weight        float64
	Reps          int
}

// Record journals one logged set. Re-logging the same set replaces the row.
func (j *Journal) Record(e Entry) error {
	_, err := j.db.Exec(
		`INSERT OR REPLACE INTO session_sets
		 (session_id, workout_type, started_at, exercise_index, exercise_name, set_number, weight, reps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID.String(), e.WorkoutType, e.StartedAt, e.ExerciseIndex, e.ExerciseName, e.SetNumber, e.Weight, e.Reps)
	if err != nil {
		return fmt.Errorf("journaling set: %w", err)
	}
	return nil
}

// Drop removes all journal rows for a session, after a successful save or an
// explicit discard.
func (j *Journal) Drop(sessionID uuid.UUID) error {
	if _, err := j.db.Exec(`DELETE FROM session_sets WHERE session_id = ?`, sessionID.String()); err != nil {
		return fmt.Errorf("dropping session journal: %w", err)
	}
	return nil
}

// Unfinished lists the session IDs with journaled sets, oldest first. These
// are sessions that never reached a save or discard.
func (j *Journal) Unfinished() ([]uuid.UUID, error) {
	rows, err := j.db.Query(
		`SELECT session_id FROM session_sets GROUP BY session_id ORDER BY MIN(started_at) ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing unfinished sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Entries returns the journaled sets for one session, in exercise then set
// order.
func (j *Journal) Entries(sessionID uuid.UUID) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT session_id, workout_type, started_at, exercise_index, exercise_name, set_number, weight, reps
		 FROM session_sets
		 WHERE session_id = ?
		 ORDER BY exercise_index ASC, set_number ASC`,
		sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("reading session journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var id string
		if err := rows.Scan(&id, &e.WorkoutType, &e.StartedAt, &e.ExerciseIndex, &e.ExerciseName, &e.SetNumber, &e.Weight, &e.Reps); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.SessionID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing session id %q: %w", id, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
