package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repflow/internal/coaching"
	"github.com/claude/repflow/internal/models"
)

// InsertWorkoutSets batch-inserts set rows for a workout's exercises.
func (db *DB) InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO workout_sets (workout_exercise_id, set_number, weight_lbs, reps, duration_sec, distance_miles) VALUES `
	args := make([]any, 0, len(rows)*6)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.WorkoutExerciseID, r.SetNumber, r.WeightLbs, r.Reps, r.DurationSec, r.DistanceMiles)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting workout sets: %w", err)
	}
	return nil
}

// SetLogResult is one persisted set with its exercise and workout context.
type SetLogResult struct {
	WorkoutID    string    `json:"workout_id"`
	StartedAt    time.Time `json:"started_at"`
	ExerciseName string    `json:"exercise_name"`
	SetNumber    int       `json:"set_number"`
	WeightLbs    float64   `json:"weight_lbs"`
	Reps         int       `json:"reps"`
}

// QueryWorkoutSets retrieves logged sets in a time range with an optional
// exercise-name filter (partial, case-insensitive).
func (db *DB) QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]SetLogResult, error) {
	query := `SELECT w.id, w.started_at, e.exercise_name, s.set_number, s.weight_lbs, s.reps
		 FROM workout_sets s
		 JOIN workout_exercises e ON e.id = s.workout_exercise_id
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE w.started_at >= $1 AND w.started_at < $2 AND w.user_id = $3`
	args := []any{start, end, userID}
	if exerciseFilter != "" {
		query += ` AND e.exercise_name ILIKE $4`
		args = append(args, "%"+exerciseFilter+"%")
	}
	query += ` ORDER BY w.started_at DESC, e.sort_order ASC, s.set_number ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []SetLogResult
	for rows.Next() {
		var r SetLogResult
		if err := rows.Scan(&r.WorkoutID, &r.StartedAt, &r.ExerciseName, &r.SetNumber, &r.WeightLbs, &r.Reps); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecentExerciseHistory returns up to the given number of most recent
// workouts' set logs per exercise name, for batch coaching payloads.
func (db *DB) RecentExerciseHistory(ctx context.Context, userID int, exerciseNames []string, workouts int) (map[string][]coaching.ExerciseHistory, error) {
	if len(exerciseNames) == 0 || workouts <= 0 {
		return map[string][]coaching.ExerciseHistory{}, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT e.exercise_name, w.started_at, s.weight_lbs, s.reps
		 FROM workout_sets s
		 JOIN workout_exercises e ON e.id = s.workout_exercise_id
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE w.user_id = $1 AND e.exercise_name = ANY($2)
		 ORDER BY w.started_at DESC, s.set_number ASC`,
		userID, exerciseNames)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	// Rows arrive newest workout first; sets group by (exercise, start time)
	// and only the most recent N workouts per exercise are kept.
	hist := make(map[string][]coaching.ExerciseHistory)
	for rows.Next() {
		var name string
		var startedAt time.Time
		var weight float64
		var reps int
		if err := rows.Scan(&name, &startedAt, &weight, &reps); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}

		entries := hist[name]
		if n := len(entries); n > 0 && entries[n-1].Date.Equal(startedAt) {
			entries[n-1].Sets = append(entries[n-1].Sets, coaching.HistorySet{Weight: weight, Reps: reps})
		} else if len(entries) < workouts {
			hist[name] = append(entries, coaching.ExerciseHistory{
				Date: startedAt,
				Sets: []coaching.HistorySet{{Weight: weight, Reps: reps}},
			})
		}
	}
	return hist, rows.Err()
}
