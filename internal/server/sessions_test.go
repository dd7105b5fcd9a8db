package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(nil, nil, nil, testAPIKey, slog.New(slog.DiscardHandler))
}

// do runs a request through the full router with the API key attached.
func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, s *Server, body map[string]any) sessionView {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/v1/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start session status = %d: %s", rec.Code, rec.Body)
	}
	var v sessionView
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode session view: %v", err)
	}
	return v
}

func pushDayRequest() map[string]any {
	return map[string]any{
		"label":     "Push Day",
		"equipment": map[string]any{"full_gym": true},
	}
}

// TestStartSession verifies the canonical Push Day construction through the
// HTTP surface.
func TestStartSession(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())

	if v.State != "active" {
		t.Errorf("state = %s, want active", v.State)
	}
	if len(v.Exercises) != 9 {
		t.Errorf("got %d exercises, want 9", len(v.Exercises))
	}
	if v.ExerciseIndex != 0 || v.SetNumber != 1 {
		t.Errorf("cursor = (%d,%d), want (0,1)", v.ExerciseIndex, v.SetNumber)
	}

	// The session is retrievable afterwards.
	rec := do(t, s, http.MethodGet, "/api/v1/sessions/"+v.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get session status = %d", rec.Code)
	}
}

func TestStartSessionRequiresAPIKey(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without API key", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString("{}"))
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 with wrong API key", rec.Code)
	}
}

func TestLogSetMovesCursor(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())

	rec := do(t, s, http.MethodPost, "/api/v1/sessions/"+v.ID.String()+"/sets",
		map[string]any{"weight": 135, "reps": 8})
	if rec.Code != http.StatusOK {
		t.Fatalf("log set status = %d: %s", rec.Code, rec.Body)
	}
	var after sessionView
	json.NewDecoder(rec.Body).Decode(&after)
	if after.SetNumber != 2 {
		t.Errorf("set number = %d, want 2", after.SetNumber)
	}
	if after.Logged[0][1].Reps != 8 {
		t.Errorf("logged set = %+v", after.Logged)
	}
}

func TestLogAllSetsBulkCountMismatch(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())

	rec := do(t, s, http.MethodPost, "/api/v1/sessions/"+v.ID.String()+"/sets/bulk",
		map[string]any{"entries": []map[string]any{{"weight": 135, "reps": 8}}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for mismatched bulk count", rec.Code)
	}
}

func TestAdvanceWithoutPending(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())

	rec := do(t, s, http.MethodPost, "/api/v1/sessions/"+v.ID.String()+"/advance", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 when no advance is pending", rec.Code)
	}
}

// TestExerciseWalkthrough drives one exercise to exhaustion and advances.
func TestExerciseWalkthrough(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())
	base := "/api/v1/sessions/" + v.ID.String()

	planned := v.Exercises[0].PlannedSets
	var last sessionView
	for i := 0; i < planned; i++ {
		rec := do(t, s, http.MethodPost, base+"/sets", map[string]any{"weight": 135, "reps": 8})
		if rec.Code != http.StatusOK {
			t.Fatalf("set %d status = %d: %s", i+1, rec.Code, rec.Body)
		}
		json.NewDecoder(rec.Body).Decode(&last)
	}
	if last.State != "pending_advance" {
		t.Fatalf("state = %s, want pending_advance after final set", last.State)
	}

	rec := do(t, s, http.MethodPost, base+"/advance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance status = %d", rec.Code)
	}
	json.NewDecoder(rec.Body).Decode(&last)
	if last.ExerciseIndex != 1 || last.SetNumber != 1 || last.State != "active" {
		t.Errorf("after advance: index=%d set=%d state=%s", last.ExerciseIndex, last.SetNumber, last.State)
	}
}

func TestSetCountEdits(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())
	base := "/api/v1/sessions/" + v.ID.String()
	planned := v.Exercises[0].PlannedSets

	rec := do(t, s, http.MethodPost, base+"/sets/add", nil)
	var after sessionView
	json.NewDecoder(rec.Body).Decode(&after)
	if after.Exercises[0].PlannedSets != planned+1 {
		t.Errorf("planned sets = %d, want %d", after.Exercises[0].PlannedSets, planned+1)
	}

	rec = do(t, s, http.MethodPost, base+"/sets/remove", nil)
	json.NewDecoder(rec.Body).Decode(&after)
	if after.Exercises[0].PlannedSets != planned {
		t.Errorf("planned sets = %d, want %d after remove", after.Exercises[0].PlannedSets, planned)
	}
}

func TestSwapExercise(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())
	base := "/api/v1/sessions/" + v.ID.String()

	rec := do(t, s, http.MethodPost, base+"/swap", map[string]any{"name": "Push-Up"})
	if rec.Code != http.StatusOK {
		t.Fatalf("swap status = %d: %s", rec.Code, rec.Body)
	}
	var after sessionView
	json.NewDecoder(rec.Body).Decode(&after)
	if after.Exercises[0].Name != "Push-Up" {
		t.Errorf("first exercise = %s, want Push-Up", after.Exercises[0].Name)
	}

	rec = do(t, s, http.MethodPost, base+"/swap", map[string]any{"name": "Nonexistent Movement"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("swap unknown status = %d, want 400", rec.Code)
	}
}

func TestAddExerciseDuplicate(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())
	base := "/api/v1/sessions/" + v.ID.String()

	rec := do(t, s, http.MethodPost, base+"/exercises",
		map[string]any{"name": v.Exercises[0].Name})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for duplicate exercise", rec.Code)
	}
}

func TestAddCustomExercise(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, map[string]any{
		"label":     "Custom",
		"modifiers": map[string]any{"custom_build": true},
	})
	if v.State != "building" {
		t.Fatalf("state = %s, want building", v.State)
	}
	base := "/api/v1/sessions/" + v.ID.String()

	rec := do(t, s, http.MethodPost, base+"/exercises", map[string]any{
		"name": "Sled Push", "custom": true, "muscle_group": "Legs", "sets": 5, "weight": 90,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add custom status = %d: %s", rec.Code, rec.Body)
	}
	var after sessionView
	json.NewDecoder(rec.Body).Decode(&after)
	if after.State != "active" || len(after.Exercises) != 1 {
		t.Errorf("after add: state=%s exercises=%d", after.State, len(after.Exercises))
	}
	if after.Exercises[0].PlannedSets != 5 {
		t.Errorf("planned sets = %d, want 5", after.Exercises[0].PlannedSets)
	}
}

func TestRelatedExercises(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, map[string]any{
		"label":     "Chest",
		"equipment": map[string]any{"full_gym": true},
	})

	rec := do(t, s, http.MethodGet, "/api/v1/sessions/"+v.ID.String()+"/related", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("related status = %d", rec.Code)
	}
	var related []map[string]any
	json.NewDecoder(rec.Body).Decode(&related)
	// The whole group is already in the session, so nothing is offered.
	if len(related) != 0 {
		t.Errorf("got %d related exercises, want 0 when the group is exhausted", len(related))
	}
}

func TestOverrideAndApplySuggestion(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())
	base := "/api/v1/sessions/" + v.ID.String()

	rec := do(t, s, http.MethodPost, base+"/override", nil)
	var after sessionView
	json.NewDecoder(rec.Body).Decode(&after)
	if !after.UserOverride {
		t.Error("override not recorded")
	}

	rec = do(t, s, http.MethodPost, base+"/apply-suggestion", nil)
	json.NewDecoder(rec.Body).Decode(&after)
	if after.UserOverride {
		t.Error("apply-suggestion did not clear the override")
	}
}

// TestFinishNothingLogged verifies an empty session finishes as a no-op save
// and is unregistered.
func TestFinishNothingLogged(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())
	base := "/api/v1/sessions/" + v.ID.String()

	rec := do(t, s, http.MethodPost, base+"/finish", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("finish status = %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]any
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["workout_id"] != nil {
		t.Errorf("workout_id = %v, want null for a no-op save", resp["workout_id"])
	}

	rec = do(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after finish status = %d, want 404", rec.Code)
	}
}

func TestDiscardSession(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, pushDayRequest())
	base := "/api/v1/sessions/" + v.ID.String()

	rec := do(t, s, http.MethodDelete, base, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("discard status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after discard status = %d, want 404", rec.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{
		"/api/v1/sessions/3b9f8f5e-0000-0000-0000-000000000000",
		"/api/v1/sessions/not-a-uuid",
	} {
		rec := do(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestCardioSession(t *testing.T) {
	s := newTestServer(t)
	v := startSession(t, s, map[string]any{
		"label": "Intervals",
		"cardio": map[string]any{
			"equipment": "rower", "goal": "conditioning", "protocol": "8x500m",
		},
	})
	if v.Kind != "cardio" {
		t.Errorf("kind = %s, want cardio", v.Kind)
	}
	if len(v.Exercises) != 1 || v.Exercises[0].MuscleGroup != "Cardio" {
		t.Errorf("cardio exercises = %+v", v.Exercises)
	}

	rec := do(t, s, http.MethodPost, "/api/v1/sessions/"+v.ID.String()+"/sets",
		map[string]any{"duration_sec": 110.5, "distance_miles": 0.31})
	if rec.Code != http.StatusOK {
		t.Fatalf("log interval status = %d: %s", rec.Code, rec.Body)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/catalog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog status = %d", rec.Code)
	}
	var groups []string
	json.NewDecoder(rec.Body).Decode(&groups)
	if len(groups) != 8 {
		t.Errorf("got %d groups, want 8", len(groups))
	}

	rec = do(t, s, http.MethodGet, "/api/v1/catalog/chest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog group status = %d", rec.Code)
	}
	var list []map[string]any
	json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 6 {
		t.Errorf("got %d chest exercises, want 6", len(list))
	}

	rec = do(t, s, http.MethodGet, "/api/v1/catalog/cartilage", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown group status = %d, want 404", rec.Code)
	}
}

func TestConcurrentSessions(t *testing.T) {
	s := newTestServer(t)
	a := startSession(t, s, pushDayRequest())
	b := startSession(t, s, map[string]any{"label": "Legs", "equipment": map[string]any{"full_gym": true}})

	do(t, s, http.MethodPost, fmt.Sprintf("/api/v1/sessions/%s/sets", a.ID), map[string]any{"weight": 135, "reps": 8})

	rec := do(t, s, http.MethodGet, "/api/v1/sessions/"+b.ID.String(), nil)
	var bv sessionView
	json.NewDecoder(rec.Body).Decode(&bv)
	if len(bv.Logged) != 0 {
		t.Error("logging in one session leaked into another")
	}
}
