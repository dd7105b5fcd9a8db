package saver

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/repflow/internal/catalog"
	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/session"
)

// fakeStore records every call and fails the stages it is told to.
type fakeStore struct {
	failExercises bool
	failSets      bool

	workouts  []models.WorkoutRow
	exercises []models.WorkoutExerciseRow
	sets      []models.WorkoutSetRow
	deleted   []uuid.UUID
}

func (f *fakeStore) InsertWorkout(ctx context.Context, row models.WorkoutRow) error {
	f.workouts = append(f.workouts, row)
	return nil
}

func (f *fakeStore) InsertWorkoutExercises(ctx context.Context, rows []models.WorkoutExerciseRow) error {
	if f.failExercises {
		return errors.New("exercises insert failed")
	}
	f.exercises = append(f.exercises, rows...)
	return nil
}

func (f *fakeStore) InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) error {
	if f.failSets {
		return errors.New("sets insert failed")
	}
	f.sets = append(f.sets, rows...)
	return nil
}

func (f *fakeStore) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func loggedSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.Config{
		UserID: 1,
		Label:  "Push Day",
		Exercises: []catalog.Exercise{
			{Name: "Barbell Bench Press", MuscleGroup: catalog.GroupChest, DefaultSets: 2},
			{Name: "Lateral Raise", MuscleGroup: catalog.GroupShoulders, DefaultSets: 2},
			{Name: "Cable Pushdown", MuscleGroup: catalog.GroupTriceps, DefaultSets: 2},
		},
		StartedAt: time.Now().Add(-45 * time.Minute),
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	// Fully log the first exercise, partially log the second, skip the third.
	s.LogSet(session.LoggedSet{Weight: 135, Reps: 8})
	s.LogSet(session.LoggedSet{Weight: 135, Reps: 6})
	s.Advance()
	s.LogSet(session.LoggedSet{Weight: 20, Reps: 12})
	s.Finish()
	return s
}

// TestSaveStages verifies the header/exercises/sets write order, the skipping
// of unlogged exercises, and the returned workout ID.
func TestSaveStages(t *testing.T) {
	store := &fakeStore{}
	s := loggedSession(t)

	completed := time.Now()
	id, err := New(store, testLogger()).Save(context.Background(), s, completed)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("Save returned uuid.Nil for a logged session")
	}

	if len(store.workouts) != 1 {
		t.Fatalf("wrote %d headers, want 1", len(store.workouts))
	}
	header := store.workouts[0]
	if header.ID != id {
		t.Errorf("returned ID %s != header ID %s", id, header.ID)
	}
	if header.WorkoutType != "Push Day" || header.Kind != "strength" {
		t.Errorf("header = %+v", header)
	}
	if header.DurationMinutes < 44 || header.DurationMinutes > 46 {
		t.Errorf("duration = %d minutes, want ~45", header.DurationMinutes)
	}

	// Cable Pushdown had nothing logged; it must not be persisted.
	if len(store.exercises) != 2 {
		t.Fatalf("wrote %d exercises, want 2", len(store.exercises))
	}
	for i, ex := range store.exercises {
		if ex.WorkoutID != header.ID {
			t.Errorf("exercise %d workout ID mismatch", i)
		}
		if ex.SortOrder != i {
			t.Errorf("exercise %d sort order = %d", i, ex.SortOrder)
		}
	}

	if len(store.sets) != 3 {
		t.Fatalf("wrote %d sets, want 3", len(store.sets))
	}
	if store.sets[0].WorkoutExerciseID != store.exercises[0].ID {
		t.Error("set rows not linked to their exercise row")
	}
	if len(store.deleted) != 0 {
		t.Errorf("compensating delete ran on a clean save: %v", store.deleted)
	}
}

// TestSaveNothingLogged verifies a session with zero logged sets is a no-op.
func TestSaveNothingLogged(t *testing.T) {
	store := &fakeStore{}
	s, err := session.New(session.Config{
		Label: "Push Day",
		Exercises: []catalog.Exercise{
			{Name: "Barbell Bench Press", MuscleGroup: catalog.GroupChest, DefaultSets: 2},
		},
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	s.Finish()

	id, err := New(store, testLogger()).Save(context.Background(), s, time.Now())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != uuid.Nil {
		t.Errorf("id = %s, want uuid.Nil for an empty save", id)
	}
	if len(store.workouts) != 0 {
		t.Error("header written for an empty save")
	}
}

// TestSaveExercisesFailureCompensates verifies the header is deleted when the
// exercise stage fails.
func TestSaveExercisesFailureCompensates(t *testing.T) {
	store := &fakeStore{failExercises: true}
	s := loggedSession(t)

	_, err := New(store, testLogger()).Save(context.Background(), s, time.Now())
	if err == nil {
		t.Fatal("expected error from failed exercise stage")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("compensating deletes = %d, want 1", len(store.deleted))
	}
	if store.deleted[0] != store.workouts[0].ID {
		t.Error("compensation deleted the wrong workout")
	}
}

// TestSaveSetsFailureCompensates verifies the header (and via cascade the
// exercise rows) is deleted when the set stage fails, and that the session
// remains intact for a retry.
func TestSaveSetsFailureCompensates(t *testing.T) {
	store := &fakeStore{failSets: true}
	s := loggedSession(t)

	_, err := New(store, testLogger()).Save(context.Background(), s, time.Now())
	if err == nil {
		t.Fatal("expected error from failed set stage")
	}
	if len(store.deleted) != 1 {
		t.Fatalf("compensating deletes = %d, want 1", len(store.deleted))
	}

	// A retry against a healthy store succeeds with the same data.
	store.failSets = false
	store.deleted = nil
	id, err := New(store, testLogger()).Save(context.Background(), s, time.Now())
	if err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("retry returned uuid.Nil")
	}
}
