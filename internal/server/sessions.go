package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/repflow/internal/catalog"
	"github.com/claude/repflow/internal/coaching"
	"github.com/claude/repflow/internal/journal"
	"github.com/claude/repflow/internal/saver"
	"github.com/claude/repflow/internal/selector"
	"github.com/claude/repflow/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// startSessionRequest is the host UI's session construction payload.
type startSessionRequest struct {
	Label     string                    `json:"label"`
	Mode      session.Mode              `json:"mode"`
	Goal      string                    `json:"goal"`
	Equipment selector.EquipmentProfile `json:"equipment"`
	Modifiers selector.Modifiers        `json:"modifiers"`
	Cardio    *session.CardioDetail     `json:"cardio,omitempty"`
}

// sessionView is the engine state as rendered to the host UI.
type sessionView struct {
	ID            uuid.UUID                         `json:"id"`
	State         session.State                     `json:"state"`
	Kind          session.Kind                      `json:"kind"`
	Mode          session.Mode                      `json:"mode"`
	Label         string                            `json:"label"`
	StartedAt     time.Time                         `json:"started_at"`
	ExerciseIndex int                               `json:"exercise_index"`
	SetNumber     int                               `json:"set_number"`
	UserOverride  bool                              `json:"user_override"`
	Exercises     []session.Exercise                `json:"exercises"`
	Logged        map[int]map[int]session.LoggedSet `json:"logged"`
	Cardio        *session.CardioDetail             `json:"cardio,omitempty"`
}

func view(sess *session.Session) sessionView {
	exIdx, setNum := sess.Cursor()
	exercises := sess.Exercises()
	logged := make(map[int]map[int]session.LoggedSet)
	for i := range exercises {
		if sets := sess.LoggedSets(i); len(sets) > 0 {
			logged[i] = sets
		}
	}
	return sessionView{
		ID:            sess.ID(),
		State:         sess.State(),
		Kind:          sess.Kind(),
		Mode:          sess.Mode(),
		Label:         sess.Label(),
		StartedAt:     sess.StartedAt(),
		ExerciseIndex: exIdx,
		SetNumber:     setNum,
		UserOverride:  sess.UserOverrode(),
		Exercises:     exercises,
		Logged:        logged,
		Cardio:        sess.Cardio(),
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var exercises []catalog.Exercise
	switch {
	case req.Cardio != nil:
		// Cardio sessions log intervals as sets of a single pseudo-exercise.
		exercises = []catalog.Exercise{{
			Name:        req.Cardio.Equipment,
			MuscleGroup: "Cardio",
			Tags:        []string{"cardio"},
			DefaultSets: 1,
		}}
	default:
		exercises = selector.Select(req.Label, req.Equipment, req.Modifiers)
	}

	sess, err := session.New(session.Config{
		UserID:      userIDFromContext(r),
		Label:       req.Label,
		Mode:        req.Mode,
		CustomBuild: req.Modifiers.CustomBuild,
		Cardio:      req.Cardio,
		Exercises:   exercises,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ls := &liveSession{sess: sess}
	if s.coach != nil {
		ls.advisor = coaching.NewAdvisor(s.coach, s.db, sess, req.Goal, s.log)
		// The batch request fires once the list is finalized; a custom build
		// has no list yet.
		if !req.Modifiers.CustomBuild && req.Cardio == nil {
			ls.advisor.RequestBatch(context.Background())
		}
	}
	s.register(ls)

	s.log.Info("session started", "session", sess.ID(), "label", req.Label, "exercises", len(exercises))
	writeJSON(w, http.StatusCreated, view(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, view(ls.sess))
}

type logSetRequest struct {
	Weight        float64  `json:"weight"`
	Reps          int      `json:"reps"`
	DurationSec   *float64 `json:"duration_sec,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

func (r logSetRequest) loggedSet() session.LoggedSet {
	return session.LoggedSet{
		Weight:        r.Weight,
		Reps:          r.Reps,
		DurationSec:   r.DurationSec,
		DistanceMiles: r.DistanceMiles,
	}
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	var req logSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	exIdx, setNum := ls.sess.Cursor()
	if err := ls.sess.LogSet(req.loggedSet()); err != nil {
		writeSessionError(w, err)
		return
	}
	s.journalSet(ls.sess, exIdx, setNum, req)

	if ls.advisor != nil {
		ls.advisor.NotifySetLogged(context.Background())
	}
	writeJSON(w, http.StatusOK, view(ls.sess))
}

func (s *Server) handleLogAllSets(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	var req struct {
		Entries []logSetRequest `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	entries := make([]session.LoggedSet, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = e.loggedSet()
	}
	exIdx, _ := ls.sess.Cursor()
	if err := ls.sess.LogAllSets(entries); err != nil {
		writeSessionError(w, err)
		return
	}
	for i, e := range req.Entries {
		s.journalSet(ls.sess, exIdx, i+1, e)
	}

	if ls.advisor != nil {
		ls.advisor.NotifySetLogged(context.Background())
	}
	writeJSON(w, http.StatusOK, view(ls.sess))
}

// journalSet appends a logged set to the crash-recovery journal. Best-effort.
func (s *Server) journalSet(sess *session.Session, exIdx, setNum int, req logSetRequest) {
	if s.journal == nil {
		return
	}
	name := ""
	if exs := sess.Exercises(); exIdx < len(exs) {
		name = exs[exIdx].Name
	}
	err := s.journal.Record(journal.Entry{
		SessionID:     sess.ID(),
		WorkoutType:   sess.Label(),
		StartedAt:     sess.StartedAt(),
		ExerciseIndex: exIdx,
		ExerciseName:  name,
		SetNumber:     setNum,
		Weight:        req.Weight,
		Reps:          req.Reps,
	})
	if err != nil {
		s.log.Warn("journal write failed", "session", sess.ID(), "error", err)
	}
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess *session.Session) error { return sess.Advance() })
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess *session.Session) error { return sess.Previous() })
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess *session.Session) error { return sess.Next() })
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess *session.Session) error { return sess.AddSet() })
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess *session.Session) error { return sess.RemoveSet() })
}

func (s *Server) handleMarkOverride(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess *session.Session) error {
		sess.MarkUserOverride()
		return nil
	})
}

func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(sess *session.Session) error {
		sess.ClearUserOverride()
		return nil
	})
}

// transition runs a state-machine operation and responds with the new view.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, op func(*session.Session) error) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err := op(ls.sess); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(ls.sess))
}

func (s *Server) handleSwapExercise(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	replacement, ok := catalog.ByName(req.Name)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise: " + req.Name})
		return
	}
	if err := ls.sess.SwapExercise(replacement); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(ls.sess))
}

// addExerciseRequest adds either a catalog exercise (name only) or a custom
// one (custom fields present).
type addExerciseRequest struct {
	Name        string  `json:"name"`
	Custom      bool    `json:"custom"`
	MuscleGroup string  `json:"muscle_group,omitempty"`
	Sets        int     `json:"sets,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	RepRange    string  `json:"rep_range,omitempty"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var err error
	if req.Custom {
		err = ls.sess.AddCustomExercise(session.Exercise{
			Name:        req.Name,
			MuscleGroup: req.MuscleGroup,
			PlannedSets: req.Sets,
			Suggestion:  catalog.Suggestion{Weight: req.Weight, RepRangeLabel: req.RepRange},
		})
	} else {
		ex, found := catalog.ByName(req.Name)
		if !found {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown exercise: " + req.Name})
			return
		}
		err = ls.sess.AddExercise(ex)
	}
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view(ls.sess))
}

func (s *Server) handleRelatedExercises(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	related := selector.Related(ls.sess.Label(), ls.sess.ExerciseNames())
	writeJSON(w, http.StatusOK, related)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	// The session is closed to further mutation once the save begins. A
	// failed save keeps it registered so the host UI can retry.
	ls.sess.Finish()
	if ls.advisor != nil {
		ls.advisor.Close()
	}

	writer := saver.New(s.db, s.log)
	workoutID, err := writer.Save(r.Context(), ls.sess, time.Now())
	if err != nil {
		s.log.Error("session save failed", "session", ls.sess.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.cleanup(ls.sess.ID())

	if workoutID == uuid.Nil {
		writeJSON(w, http.StatusOK, map[string]any{"workout_id": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workout_id": workoutID})
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if ls.advisor != nil {
		ls.advisor.Close()
	}
	s.cleanup(ls.sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) cleanup(id uuid.UUID) {
	if s.journal != nil {
		if err := s.journal.Drop(id); err != nil {
			s.log.Warn("journal drop failed", "session", id, "error", err)
		}
	}
	s.unregister(id)
}

// writeSessionError maps state-machine errors to HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	status := http.StatusConflict
	switch {
	case errors.Is(err, session.ErrBulkCount), errors.Is(err, session.ErrDuplicateName), errors.Is(err, session.ErrNoSuchExercise):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
