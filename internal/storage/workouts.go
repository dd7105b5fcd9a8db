package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/google/uuid"
)

// InsertWorkout inserts the workout header row.
func (db *DB) InsertWorkout(ctx context.Context, row models.WorkoutRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, workout_type, kind, started_at, completed_at, duration_minutes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		row.ID, row.UserID, row.WorkoutType, row.Kind, row.StartedAt, row.CompletedAt, row.DurationMinutes)
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

// InsertWorkoutExercises batch-inserts exercise rows for a workout.
func (db *DB) InsertWorkoutExercises(ctx context.Context, rows []models.WorkoutExerciseRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO workout_exercises (id, workout_id, exercise_name, muscle_group, sort_order) VALUES `
	args := make([]any, 0, len(rows)*5)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5,
		))
		args = append(args, r.ID, r.WorkoutID, r.ExerciseName, r.MuscleGroup, r.SortOrder)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout exercises: %w", err)
	}
	return nil
}

// DeleteWorkout removes a workout header; exercise and set rows cascade.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return nil
}

// QueryWorkouts retrieves workout headers in a time range, newest first.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, workout_type, kind, started_at, completed_at, duration_minutes
		 FROM workouts
		 WHERE started_at >= $1 AND started_at < $2 AND user_id = $3
		 ORDER BY started_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		var w models.WorkoutRow
		if err := rows.Scan(&w.ID, &w.UserID, &w.WorkoutType, &w.Kind,
			&w.StartedAt, &w.CompletedAt, &w.DurationMinutes); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// ExerciseDetail is one exercise of a workout with its logged sets.
type ExerciseDetail struct {
	models.WorkoutExerciseRow
	Sets []models.WorkoutSetRow `json:"sets"`
}

// WorkoutDetail is a workout header with all exercises and sets.
type WorkoutDetail struct {
	models.WorkoutRow
	Exercises []ExerciseDetail `json:"exercises"`
}

// GetWorkout retrieves a single workout with its exercises and sets.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*WorkoutDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, workout_type, kind, started_at, completed_at, duration_minutes
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	var w models.WorkoutRow
	err := row.Scan(&w.ID, &w.UserID, &w.WorkoutType, &w.Kind, &w.StartedAt, &w.CompletedAt, &w.DurationMinutes)
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	detail := &WorkoutDetail{WorkoutRow: w}

	exRows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, exercise_name, muscle_group, sort_order
		 FROM workout_exercises
		 WHERE workout_id = $1
		 ORDER BY sort_order ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer exRows.Close()

	byID := make(map[uuid.UUID]int)
	for exRows.Next() {
		var ex models.WorkoutExerciseRow
		if err := exRows.Scan(&ex.ID, &ex.WorkoutID, &ex.ExerciseName, &ex.MuscleGroup, &ex.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		byID[ex.ID] = len(detail.Exercises)
		detail.Exercises = append(detail.Exercises, ExerciseDetail{WorkoutExerciseRow: ex})
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT s.workout_exercise_id, s.set_number, s.weight_lbs, s.reps, s.duration_sec, s.distance_miles
		 FROM workout_sets s
		 JOIN workout_exercises e ON e.id = s.workout_exercise_id
		 WHERE e.workout_id = $1
		 ORDER BY e.sort_order ASC, s.set_number ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var st models.WorkoutSetRow
		if err := setRows.Scan(&st.WorkoutExerciseID, &st.SetNumber, &st.WeightLbs, &st.Reps,
			&st.DurationSec, &st.DistanceMiles); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		if i, ok := byID[st.WorkoutExerciseID]; ok {
			detail.Exercises[i].Sets = append(detail.Exercises[i].Sets, st)
		}
	}

	return detail, setRows.Err()
}
