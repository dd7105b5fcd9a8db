// Package models holds row types shared between the storage layer and its
// callers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutRow is the workout header, one per persisted session.
type WorkoutRow struct {
	ID              uuid.UUID `json:"id"`
	UserID          int       `json:"user_id"`
	WorkoutType     string    `json:"workout_type"`
	Kind            string    `json:"kind"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// WorkoutExerciseRow is one exercise within a persisted workout. SortOrder
// preserves the session's exercise ordering.
type WorkoutExerciseRow struct {
	ID           uuid.UUID `json:"id"`
	WorkoutID    uuid.UUID `json:"workout_id"`
	ExerciseName string    `json:"exercise_name"`
	MuscleGroup  string    `json:"muscle_group,omitempty"`
	SortOrder    int       `json:"sort_order"`
}

// WorkoutSetRow is one logged set. Cardio fields are nil on strength sets.
type WorkoutSetRow struct {
	WorkoutExerciseID uuid.UUID `json:"workout_exercise_id"`
	SetNumber         int       `json:"set_number"`
	WeightLbs         float64   `json:"weight_lbs"`
	Reps              int       `json:"reps"`
	DurationSec       *float64  `json:"duration_sec,omitempty"`
	DistanceMiles     *float64  `json:"distance_miles,omitempty"`
}
