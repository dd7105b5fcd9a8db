// Package session implements the live workout session state machine: cursor
// position, logged sets, set-count edits, and the recency guard that keeps
// overlapping coaching updates from clobbering each other.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/repflow/internal/catalog"
)

// State identifies where the session is in its lifecycle.
type State string

const (
	// StateBuilding is a custom build with zero exercises so far.
	StateBuilding State = "building"
	// StateActive means the cursor points at a loggable set.
	StateActive State = "active"
	// StatePendingAdvance means the current exercise's last set was just
	// logged and a further exercise exists; Advance moves on.
	StatePendingAdvance State = "pending_advance"
	// StateAwaitingMoreOrFinish is reached in custom builds when the final
	// exercise is exhausted: the athlete adds another exercise or finishes.
	StateAwaitingMoreOrFinish State = "awaiting_more_or_finish"
	// StateFinished is terminal; reached when the last exercise is exhausted
	// (non-custom) or the athlete finishes explicitly.
	StateFinished State = "finished"
)

// Mode selects how sets are logged.
type Mode string

const (
	ModePerSet Mode = "per_set"
	ModeBulk   Mode = "bulk"
)

// Kind tags the session payload shape.
type Kind string

const (
	KindStrength Kind = "strength"
	KindCardio   Kind = "cardio"
)

// CardioDetail carries the cardio-only fields; nil on strength sessions so
// consumers cannot read fields that don't apply.
type CardioDetail struct {
	Equipment string `json:"equipment"`
	Goal      string `json:"goal"`
	Protocol  string `json:"protocol"`
}

// Exercise is a session-side exercise: catalog data plus the mutable planned
// set count and current suggestion.
type Exercise struct {
	Name          string             `json:"name"`
	MuscleGroup   string             `json:"muscle_group"`
	Tags          []string           `json:"tags,omitempty"`
	DemoRef       string             `json:"demo_ref,omitempty"`
	PlannedSets   int                `json:"planned_sets"`
	Suggestion    catalog.Suggestion `json:"suggestion"`
	SuggestedReps int                `json:"suggested_reps,omitempty"`
	Note          string             `json:"note,omitempty"`
}

// LoggedSet is one recorded attempt. Cardio fields are nil on strength sets.
type LoggedSet struct {
	Weight        float64  `json:"weight"`
	Reps          int      `json:"reps"`
	DurationSec   *float64 `json:"duration_sec,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// Errors callers branch on.
var (
	ErrFinished       = errors.New("session is finished")
	ErrNoExercise     = errors.New("session has no current exercise")
	ErrNotPending     = errors.New("no exercise advance is pending")
	ErrNoSuchExercise = errors.New("no exercise at that position")
	ErrDuplicateName  = errors.New("exercise with that name already in session")
	ErrBulkCount      = errors.New("bulk entry count does not match planned sets")
)

// Session owns one continuous logging interaction. All methods are safe for
// concurrent use; coaching responses arrive on other goroutines.
type Session struct {
	mu sync.Mutex

	id          uuid.UUID
	userID      int
	label       string
	kind        Kind
	cardio      *CardioDetail
	mode        Mode
	customBuild bool
	startedAt   time.Time

	exercises     []Exercise
	exerciseIndex int
	setNumber     int
	logged        map[int]map[int]LoggedSet
	state         State

	// userOverride marks that the athlete edited the on-screen weight/reps
	// for the current exercise; suggestions must not overwrite it. Cleared
	// whenever the cursor enters an exercise.
	userOverride bool

	// Live coaching update recency guard: seqIssued is the highest sequence
	// number handed out, seqSettled the highest that has resolved (applied,
	// failed, or superseded). A response is applied only while its sequence
	// equals seqIssued; batch results apply only when nothing is in flight.
	seqIssued  uint64
	seqSettled uint64
}

// Config captures everything New needs to start a session.
type Config struct {
	UserID      int
	Label       string
	Mode        Mode
	CustomBuild bool
	Cardio      *CardioDetail
	Exercises   []catalog.Exercise
	StartedAt   time.Time
}

// New starts a session from a selector result. An empty exercise list with
// CustomBuild set begins in Building; an empty list otherwise is rejected.
func New(cfg Config) (*Session, error) {
	if len(cfg.Exercises) == 0 && !cfg.CustomBuild {
		return nil, ErrNoExercise
	}
	if cfg.Mode == "" {
		cfg.Mode = ModePerSet
	}
	if cfg.StartedAt.IsZero() {
		cfg.StartedAt = time.Now()
	}

	kind := KindStrength
	if cfg.Cardio != nil {
		kind = KindCardio
	}

	s := &Session{
		id:          uuid.New(),
		userID:      cfg.UserID,
		label:       cfg.Label,
		kind:        kind,
		cardio:      cfg.Cardio,
		mode:        cfg.Mode,
		customBuild: cfg.CustomBuild,
		startedAt:   cfg.StartedAt,
		logged:      make(map[int]map[int]LoggedSet),
		setNumber:   1,
		state:       StateActive,
	}
	for _, ex := range cfg.Exercises {
		s.exercises = append(s.exercises, fromCatalog(ex))
	}
	if len(s.exercises) == 0 {
		s.state = StateBuilding
	}
	return s, nil
}

func fromCatalog(ex catalog.Exercise) Exercise {
	sets := ex.DefaultSets
	if sets < 1 {
		sets = 1
	}
	return Exercise{
		Name:        ex.Name,
		MuscleGroup: ex.MuscleGroup,
		Tags:        ex.Tags,
		DemoRef:     ex.DemoRef,
		PlannedSets: sets,
		Suggestion:  ex.Default,
	}
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) UserID() int          { return s.userID }
func (s *Session) Label() string        { return s.label }
func (s *Session) Kind() Kind           { return s.kind }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Cardio returns the cardio detail, nil for strength sessions.
func (s *Session) Cardio() *CardioDetail { return s.cardio }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the current exercise index and set number.
func (s *Session) Cursor() (exerciseIndex, setNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exerciseIndex, s.setNumber
}

// Exercises returns a copy of the exercise list.
func (s *Session) Exercises() []Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exercise, len(s.exercises))
	copy(out, s.exercises)
	return out
}

// Current returns the exercise under the cursor.
func (s *Session) Current() (Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.exercises) == 0 || s.exerciseIndex >= len(s.exercises) {
		return Exercise{}, ErrNoExercise
	}
	return s.exercises[s.exerciseIndex], nil
}

// LoggedSets returns the sets recorded for one exercise index, keyed by set
// number. The map is a copy.
func (s *Session) LoggedSets(exerciseIndex int) map[int]LoggedSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]LoggedSet, len(s.logged[exerciseIndex]))
	for n, ls := range s.logged[exerciseIndex] {
		out[n] = ls
	}
	return out
}

// UserOverrode reports whether the athlete edited the current exercise's
// on-screen values.
func (s *Session) UserOverrode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userOverride
}

// MarkUserOverride records that the athlete edited the on-screen weight/reps.
func (s *Session) MarkUserOverride() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userOverride = true
}

// ClearUserOverride is the "apply suggestion" tap: the current suggestion may
// drive the inputs again.
func (s *Session) ClearUserOverride() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userOverride = false
}

// LogSet records a set at the cursor (per-set mode). On the exercise's final
// set it triggers exercise-advance: PendingAdvance when a next exercise
// exists, otherwise AwaitingMoreOrFinish (custom build) or Finished.
func (s *Session) LogSet(ls LoggedSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loggable(); err != nil {
		return err
	}

	s.record(s.exerciseIndex, s.setNumber, ls)
	ex := s.exercises[s.exerciseIndex]
	if s.setNumber < ex.PlannedSets {
		s.setNumber++
		return nil
	}
	s.exhaustCurrent()
	return nil
}

// LogAllSets records one entry per planned set in a single transition (bulk
// mode), then triggers exercise-advance.
func (s *Session) LogAllSets(entries []LoggedSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loggable(); err != nil {
		return err
	}
	ex := s.exercises[s.exerciseIndex]
	if len(entries) != ex.PlannedSets {
		return ErrBulkCount
	}

	for i, ls := range entries {
		s.record(s.exerciseIndex, i+1, ls)
	}
	s.exhaustCurrent()
	return nil
}

func (s *Session) loggable() error {
	switch s.state {
	case StateActive:
		return nil
	case StateFinished:
		return ErrFinished
	default:
		return ErrNoExercise
	}
}

func (s *Session) record(exIdx, setNum int, ls LoggedSet) {
	if s.logged[exIdx] == nil {
		s.logged[exIdx] = make(map[int]LoggedSet)
	}
	s.logged[exIdx][setNum] = ls
}

// exhaustCurrent runs after the current exercise's final set is logged.
func (s *Session) exhaustCurrent() {
	if s.exerciseIndex+1 < len(s.exercises) {
		s.state = StatePendingAdvance
		return
	}
	if s.customBuild {
		s.state = StateAwaitingMoreOrFinish
		return
	}
	s.state = StateFinished
}

// Advance completes a pending exercise-advance: move to the next exercise,
// reset the set cursor, clear the override flag.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePendingAdvance {
		if s.state == StateFinished {
			return ErrFinished
		}
		return ErrNotPending
	}
	s.enter(s.exerciseIndex + 1)
	return nil
}

// enter moves the cursor to an exercise, resetting per-exercise flags.
// Unlogged in-progress input values are the host UI's to discard; previously
// logged sets for the target exercise remain stored.
func (s *Session) enter(exIdx int) {
	s.exerciseIndex = exIdx
	s.setNumber = 1
	s.userOverride = false
	s.state = StateActive
}

// Previous navigates to the prior exercise, set cursor reset to 1.
func (s *Session) Previous() error {
	return s.navigate(-1)
}

// Next navigates to the following exercise, set cursor reset to 1.
func (s *Session) Next() error {
	return s.navigate(+1)
}

func (s *Session) navigate(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateFinished {
		return ErrFinished
	}
	target := s.exerciseIndex + delta
	if target < 0 || target >= len(s.exercises) {
		return ErrNoSuchExercise
	}
	s.enter(target)
	return nil
}

// AddSet raises the current exercise's planned set count by one.
func (s *Session) AddSet() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.exercises) == 0 {
		return ErrNoExercise
	}
	if s.state == StateFinished {
		return ErrFinished
	}
	s.exercises[s.exerciseIndex].PlannedSets++
	// An exhausted exercise becomes loggable again.
	if s.state == StatePendingAdvance || s.state == StateAwaitingMoreOrFinish {
		s.setNumber = s.exercises[s.exerciseIndex].PlannedSets
		s.state = StateActive
	}
	return nil
}

// RemoveSet lowers the planned set count (floor 1), discards logged sets
// beyond the new count, and clamps the set cursor.
func (s *Session) RemoveSet() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.exercises) == 0 {
		return ErrNoExercise
	}
	if s.state == StateFinished {
		return ErrFinished
	}
	ex := &s.exercises[s.exerciseIndex]
	if ex.PlannedSets <= 1 {
		return nil
	}
	ex.PlannedSets--

	for n := range s.logged[s.exerciseIndex] {
		if n > ex.PlannedSets {
			delete(s.logged[s.exerciseIndex], n)
		}
	}
	if s.setNumber > ex.PlannedSets {
		s.setNumber = ex.PlannedSets
	}
	return nil
}

// SwapExercise replaces the exercise at the cursor with a catalog entry,
// clearing anything logged for the old exercise at that position.
func (s *Session) SwapExercise(replacement catalog.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.exercises) == 0 {
		return ErrNoExercise
	}
	if s.state == StateFinished {
		return ErrFinished
	}
	s.exercises[s.exerciseIndex] = fromCatalog(replacement)
	delete(s.logged, s.exerciseIndex)
	s.enter(s.exerciseIndex)
	return nil
}

// AddExercise appends a catalog entry. If the athlete's current exercise is
// already fully logged, or the list was empty, the cursor jumps to the new
// exercise.
func (s *Session) AddExercise(ex catalog.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(fromCatalog(ex))
}

// AddCustomExercise appends a user-defined exercise.
func (s *Session) AddCustomExercise(ex Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ex.PlannedSets < 1 {
		ex.PlannedSets = 1
	}
	return s.append(ex)
}

func (s *Session) append(ex Exercise) error {
	if s.state == StateFinished {
		return ErrFinished
	}
	for _, have := range s.exercises {
		if have.Name == ex.Name {
			return ErrDuplicateName
		}
	}

	wasEmpty := len(s.exercises) == 0
	s.exercises = append(s.exercises, ex)

	if wasEmpty || s.state == StateAwaitingMoreOrFinish || s.currentFullyLogged() {
		s.enter(len(s.exercises) - 1)
	}
	return nil
}

// currentFullyLogged reports whether every planned set of the cursor exercise
// has been recorded.
func (s *Session) currentFullyLogged() bool {
	if len(s.exercises) == 0 {
		return false
	}
	ex := s.exercises[s.exerciseIndex]
	for n := 1; n <= ex.PlannedSets; n++ {
		if _, ok := s.logged[s.exerciseIndex][n]; !ok {
			return false
		}
	}
	return true
}

// Finish marks the session terminal. Valid from any state; a custom build in
// AwaitingMoreOrFinish ends here, and an athlete may also cut a session short.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFinished
}

// ExerciseNames returns the names currently in the session, in order.
func (s *Session) ExerciseNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.exercises))
	for i, ex := range s.exercises {
		names[i] = ex.Name
	}
	return names
}
