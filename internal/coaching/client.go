// Package coaching talks to the external coaching service for advisory
// weight/rep suggestions: one batch request when a session's exercise list is
// finalized, and a live update after each logged set. Live updates follow a
// strict latest-wins contract; see Advisor.
package coaching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HistorySet is one previously logged set, as sent in batch payloads.
type HistorySet struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// ExerciseHistory is one prior workout's sets for an exercise.
type ExerciseHistory struct {
	Date time.Time    `json:"date"`
	Sets []HistorySet `json:"sets"`
}

// BatchExercise describes one exercise in a batch suggestion request.
type BatchExercise struct {
	Name              string            `json:"name"`
	MuscleGroups      []string          `json:"muscleGroups"`
	Sets              int               `json:"sets"`
	DefaultSuggestion DefaultSuggestion `json:"defaultSuggestion"`
	History           []ExerciseHistory `json:"history,omitempty"`
}

// DefaultSuggestion is the catalog default sent for context.
type DefaultSuggestion struct {
	Weight        float64 `json:"weight"`
	RepRangeLabel string  `json:"repRangeLabel"`
}

// BatchRequest is the suggest-batch payload.
type BatchRequest struct {
	Exercises   []BatchExercise `json:"exercises"`
	UserProfile string          `json:"userProfile,omitempty"`
	Recovery    string          `json:"recovery,omitempty"`
}

// BatchSuggestion is one per-exercise recommendation from a batch response.
type BatchSuggestion struct {
	ExerciseName string  `json:"exerciseName"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Sets         int     `json:"sets"`
	Note         string  `json:"note,omitempty"`
}

type batchResponse struct {
	Suggestions []BatchSuggestion `json:"suggestions"`
}

// SetUpdateRequest is the suggest-set-update payload: everything completed so
// far in the current exercise.
type SetUpdateRequest struct {
	Exercise      string       `json:"exercise"`
	CompletedSets []HistorySet `json:"completedSets"`
	SetsRemaining int          `json:"setsRemaining"`
	Goal          string       `json:"goal,omitempty"`
}

// SetUpdate is the live recommendation for the next set.
type SetUpdate struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	Note   string  `json:"note,omitempty"`
}

// Client sends suggestion requests to the coaching service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a coaching service client. A zero timeout falls back to
// 30 seconds; a batch request that outlives it degrades to catalog defaults.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SuggestBatch requests per-exercise recommendations for a finalized list.
func (c *Client) SuggestBatch(ctx context.Context, req BatchRequest) ([]BatchSuggestion, error) {
	var resp batchResponse
	if err := c.post(ctx, "/v1/suggest-batch", req, &resp); err != nil {
		return nil, fmt.Errorf("suggest batch: %w", err)
	}
	return resp.Suggestions, nil
}

// SuggestSetUpdate requests a recommendation for the next set of an exercise.
func (c *Client) SuggestSetUpdate(ctx context.Context, req SetUpdateRequest) (*SetUpdate, error) {
	var resp SetUpdate
	if err := c.post(ctx, "/v1/suggest-set-update", req, &resp); err != nil {
		return nil, fmt.Errorf("suggest set update: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("coaching service returned %d: %s", resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
