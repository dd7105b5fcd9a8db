// Package saver serializes a finished session into staged remote writes:
// workout header, then exercise records, then set records. Not a transaction;
// either later stage failing triggers a compensating delete of the header so
// no orphaned rows remain, and the in-memory session is untouched so the
// caller may retry.
package saver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/session"
)

// WorkoutStore is the persistence surface the writer needs. *storage.DB
// satisfies it; tests substitute fakes. DeleteWorkout is the compensation:
// the schema cascades header deletion to exercise and set rows.
type WorkoutStore interface {
	InsertWorkout(ctx context.Context, row models.WorkoutRow) error
	InsertWorkoutExercises(ctx context.Context, rows []models.WorkoutExerciseRow) error
	InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) error
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
}

// Writer persists finished sessions.
type Writer struct {
	store WorkoutStore
	log   *slog.Logger
}

// New creates a Writer.
func New(store WorkoutStore, log *slog.Logger) *Writer {
	return &Writer{store: store, log: log}
}

// Save persists a finished session. Exercises without a single logged set are
// skipped; a session with nothing logged is a no-op save returning uuid.Nil.
// On success the workout header ID is returned for downstream sharing.
func (w *Writer) Save(ctx context.Context, s *session.Session, completedAt time.Time) (uuid.UUID, error) {
	exercises := s.Exercises()

	type loggedExercise struct {
		ex   session.Exercise
		sets map[int]session.LoggedSet
	}
	var filtered []loggedExercise
	for i, ex := range exercises {
		sets := s.LoggedSets(i)
		if len(sets) == 0 {
			continue
		}
		filtered = append(filtered, loggedExercise{ex: ex, sets: sets})
	}
	if len(filtered) == 0 {
		w.log.Info("nothing logged, skipping save", "session", s.ID())
		return uuid.Nil, nil
	}

	header := models.WorkoutRow{
		ID:              uuid.New(),
		UserID:          s.UserID(),
		WorkoutType:     s.Label(),
		Kind:            string(s.Kind()),
		StartedAt:       s.StartedAt(),
		CompletedAt:     completedAt,
		DurationMinutes: int(completedAt.Sub(s.StartedAt()).Minutes()),
	}
	if err := w.store.InsertWorkout(ctx, header); err != nil {
		return uuid.Nil, fmt.Errorf("inserting workout header: %w", err)
	}

	exRows := make([]models.WorkoutExerciseRow, 0, len(filtered))
	for order, le := range filtered {
		exRows = append(exRows, models.WorkoutExerciseRow{
			ID:           uuid.New(),
			WorkoutID:    header.ID,
			ExerciseName: le.ex.Name,
			MuscleGroup:  le.ex.MuscleGroup,
			SortOrder:    order,
		})
	}
	if err := w.store.InsertWorkoutExercises(ctx, exRows); err != nil {
		w.compensate(ctx, header.ID)
		return uuid.Nil, fmt.Errorf("inserting workout exercises: %w", err)
	}

	var setRows []models.WorkoutSetRow
	for i, le := range filtered {
		for setNum := 1; setNum <= le.ex.PlannedSets; setNum++ {
			ls, ok := le.sets[setNum]
			if !ok {
				continue
			}
			setRows = append(setRows, models.WorkoutSetRow{
				WorkoutExerciseID: exRows[i].ID,
				SetNumber:         setNum,
				WeightLbs:         ls.Weight,
				Reps:              ls.Reps,
				DurationSec:       ls.DurationSec,
				DistanceMiles:     ls.DistanceMiles,
			})
		}
	}
	if err := w.store.InsertWorkoutSets(ctx, setRows); err != nil {
		// Header deletion cascades to the exercise rows written above.
		w.compensate(ctx, header.ID)
		return uuid.Nil, fmt.Errorf("inserting workout sets: %w", err)
	}

	w.log.Info("workout saved", "workout", header.ID, "exercises", len(exRows), "sets", len(setRows))
	return header.ID, nil
}

func (w *Writer) compensate(ctx context.Context, id uuid.UUID) {
	if err := w.store.DeleteWorkout(ctx, id); err != nil {
		w.log.Error("compensating delete failed, orphaned workout remains", "workout", id, "error", err)
	}
}
