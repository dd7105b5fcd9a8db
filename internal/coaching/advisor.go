package coaching

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/claude/repflow/internal/session"
)

// Suggester is the request surface the Advisor needs; *Client satisfies it,
// tests substitute fakes.
type Suggester interface {
	SuggestBatch(ctx context.Context, req BatchRequest) ([]BatchSuggestion, error)
	SuggestSetUpdate(ctx context.Context, req SetUpdateRequest) (*SetUpdate, error)
}

// HistorySource supplies recent logged sets per exercise for batch payloads.
// *storage.DB satisfies it; nil means no history is sent.
type HistorySource interface {
	RecentExerciseHistory(ctx context.Context, userID int, exerciseNames []string, workouts int) (map[string][]ExerciseHistory, error)
}

// Advisor binds a coaching client to one live session and enforces the live
// update contract: at most one effective request in flight. Issuing a new
// live update cancels the previous request's context before the new one
// starts, and session sequence numbers discard any stale result that resolves
// anyway. All failures here are advisory: logged, never surfaced.
type Advisor struct {
	client  Suggester
	history HistorySource
	sess    *session.Session
	goal    string
	log     *slog.Logger

	mu         sync.Mutex
	cancelLive context.CancelFunc
	wg         sync.WaitGroup
}

// NewAdvisor creates an advisor for one session.
func NewAdvisor(client Suggester, history HistorySource, sess *session.Session, goal string, log *slog.Logger) *Advisor {
	return &Advisor{
		client:  client,
		history: history,
		sess:    sess,
		goal:    goal,
		log:     log,
	}
}

// RequestBatch issues the one-time batch suggestion request in the
// background. The result applies only if no live update is in flight and the
// athlete hasn't overridden the on-screen values.
func (a *Advisor) RequestBatch(ctx context.Context) {
	names := a.sess.ExerciseNames()
	if len(names) == 0 {
		return
	}

	req := BatchRequest{UserProfile: a.goal}
	for _, ex := range a.sess.Exercises() {
		req.Exercises = append(req.Exercises, BatchExercise{
			Name:         ex.Name,
			MuscleGroups: []string{ex.MuscleGroup},
			Sets:         ex.PlannedSets,
			DefaultSuggestion: DefaultSuggestion{
				Weight:        ex.Suggestion.Weight,
				RepRangeLabel: ex.Suggestion.RepRangeLabel,
			},
		})
	}

	if a.history != nil {
		hist, err := a.history.RecentExerciseHistory(ctx, a.sess.UserID(), names, 3)
		if err != nil {
			a.log.Warn("exercise history unavailable, sending batch without it", "error", err)
		} else {
			for i := range req.Exercises {
				req.Exercises[i].History = hist[req.Exercises[i].Name]
			}
		}
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sugs, err := a.client.SuggestBatch(ctx, req)
		if err != nil {
			a.log.Warn("batch suggestion failed, keeping defaults", "error", err)
			return
		}
		byName := make(map[string]session.Suggestion, len(sugs))
		for _, sg := range sugs {
			byName[sg.ExerciseName] = session.Suggestion{
				Weight: sg.Weight,
				Reps:   sg.Reps,
				Sets:   sg.Sets,
				Note:   sg.Note,
			}
		}
		applied := a.sess.ApplyBatchSuggestions(byName)
		a.log.Info("batch suggestions applied", "session", a.sess.ID(), "exercises", applied)
	}()
}

// NotifySetLogged issues a live set update for the current exercise,
// superseding any still-pending previous one.
func (a *Advisor) NotifySetLogged(ctx context.Context) {
	current, err := a.sess.Current()
	if err != nil {
		return
	}
	completed, remaining := a.sess.CompletedSets()

	req := SetUpdateRequest{
		Exercise:      current.Name,
		SetsRemaining: remaining,
		Goal:          a.goal,
	}
	for _, ls := range completed {
		req.CompletedSets = append(req.CompletedSets, HistorySet{Weight: ls.Weight, Reps: ls.Reps})
	}

	// Cancel the previous request before the new one is issued, then reserve
	// the new sequence number. Both orderings matter: the old request must be
	// superseded before the service can see the new one, and the sequence must
	// be reserved before this call returns so a racing stale response cannot
	// apply.
	reqCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	if a.cancelLive != nil {
		a.cancelLive()
	}
	a.cancelLive = cancel
	seq := a.sess.BeginLiveUpdate()
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.sess.SettleLiveUpdate(seq)

		update, err := a.client.SuggestSetUpdate(reqCtx, req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// Superseded by a newer request; not an error.
				a.log.Debug("live update superseded", "session", a.sess.ID(), "seq", seq)
			} else {
				a.log.Warn("live update failed, keeping prior suggestion", "error", err)
			}
			return
		}

		sug := session.Suggestion{Weight: update.Weight, Reps: update.Reps, Note: update.Note}
		if !a.sess.ApplyLiveSuggestion(seq, current.Name, sug) {
			a.log.Debug("stale live update discarded", "session", a.sess.ID(), "seq", seq)
		}
	}()
}

// Close cancels any pending live update and waits for background goroutines.
// Called when the session screen tears down; a result resolving after this
// point never mutates the session.
func (a *Advisor) Close() {
	a.mu.Lock()
	if a.cancelLive != nil {
		a.cancelLive()
		a.cancelLive = nil
	}
	a.mu.Unlock()
	a.wg.Wait()
}

// WaitIdle blocks until all outstanding requests settle. Test hook.
func (a *Advisor) WaitIdle() {
	a.wg.Wait()
}
