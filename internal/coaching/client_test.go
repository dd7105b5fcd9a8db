package coaching

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestSuggestBatch verifies the request path, auth header, payload shape and
// response decoding against a stub coaching service.
func TestSuggestBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/suggest-batch" {
			t.Errorf("path = %s, want /v1/suggest-batch", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "secret" {
			t.Errorf("X-API-Key = %q, want secret", r.Header.Get("X-API-Key"))
		}
		var req BatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Exercises) != 1 || req.Exercises[0].Name != "Barbell Bench Press" {
			t.Errorf("unexpected request exercises: %+v", req.Exercises)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"suggestions": []BatchSuggestion{
				{ExerciseName: "Barbell Bench Press", Weight: 140, Reps: 8, Sets: 4, Note: "add 5lb"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 5*time.Second)
	sugs, err := c.SuggestBatch(context.Background(), BatchRequest{
		Exercises: []BatchExercise{{Name: "Barbell Bench Press", Sets: 4}},
	})
	if err != nil {
		t.Fatalf("SuggestBatch: %v", err)
	}
	if len(sugs) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(sugs))
	}
	if sugs[0].Weight != 140 || sugs[0].Note != "add 5lb" {
		t.Errorf("suggestion = %+v", sugs[0])
	}
}

func TestSuggestSetUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/suggest-set-update" {
			t.Errorf("path = %s, want /v1/suggest-set-update", r.URL.Path)
		}
		var req SetUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Exercise != "Lateral Raise" || req.SetsRemaining != 1 {
			t.Errorf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(SetUpdate{Weight: 17.5, Reps: 12, Note: "last one lighter"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	update, err := c.SuggestSetUpdate(context.Background(), SetUpdateRequest{
		Exercise:      "Lateral Raise",
		CompletedSets: []HistorySet{{Weight: 20, Reps: 10}, {Weight: 20, Reps: 8}},
		SetsRemaining: 1,
	})
	if err != nil {
		t.Fatalf("SuggestSetUpdate: %v", err)
	}
	if update.Weight != 17.5 || update.Reps != 12 {
		t.Errorf("update = %+v", update)
	}
}

// TestClientErrorStatus verifies a non-200 response becomes an error carrying
// the status code.
func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if _, err := c.SuggestBatch(context.Background(), BatchRequest{}); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

// TestClientContextCancel verifies an in-flight request aborts when its
// context is canceled, which is how superseded live updates are torn down.
func TestClientContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	c := NewClient(srv.URL, "", 30*time.Second)
	go func() {
		_, err := c.SuggestSetUpdate(ctx, SetUpdateRequest{Exercise: "Dip"})
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected error after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("request did not abort after cancellation")
	}
}
