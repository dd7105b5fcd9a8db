package session

// Suggestion application and the live-update recency guard. The coaching
// client issues live updates with sequence numbers from BeginLiveUpdate; a
// result mutates the session only while its number is still the highest
// issued, so overlapping requests settle latest-wins regardless of response
// order.

// Suggestion is an advisory weight/rep recommendation, as applied to an
// exercise. Sets <= 0 means "leave the planned count alone".
type Suggestion struct {
	Weight float64
	Reps   int
	Sets   int
	Note   string
}

// BeginLiveUpdate reserves the next live-update sequence number. Any earlier
// number is superseded from this moment: its eventual result will not apply.
func (s *Session) BeginLiveUpdate() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqIssued++
	return s.seqIssued
}

// SettleLiveUpdate records that the request with the given sequence number
// resolved (success, failure, or cancellation). Called exactly once per
// issued number.
func (s *Session) SettleLiveUpdate(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.seqSettled {
		s.seqSettled = seq
	}
}

// LiveUpdateInFlight reports whether an issued live update has not settled.
func (s *Session) LiveUpdateInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqIssued > s.seqSettled
}

// ApplyLiveSuggestion applies a live-update result for an exercise, by name,
// if and only if seq is still the most recently issued sequence number.
// Returns false when the result was stale and discarded.
func (s *Session) ApplyLiveSuggestion(seq uint64, exerciseName string, sug Suggestion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seqIssued || s.state == StateFinished {
		return false
	}
	s.applySuggestion(exerciseName, sug)
	return true
}

// ApplyBatchSuggestions applies a batch result across exercises. Skipped
// entirely while a live update is in flight: the live result is more specific
// and more recent. Returns the number of exercises updated.
func (s *Session) ApplyBatchSuggestions(sugs map[string]Suggestion) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seqIssued > s.seqSettled || s.state == StateFinished {
		return 0
	}
	n := 0
	for name, sug := range sugs {
		if s.applySuggestion(name, sug) {
			n++
		}
	}
	return n
}

// applySuggestion updates the named exercise's suggestion, and its planned
// sets when the suggestion carries a count and nothing is logged for it yet.
// When the athlete has overridden the cursor exercise's values, only the note
// lands; weight/reps stay theirs until "apply suggestion" or an advance
// clears the flag.
func (s *Session) applySuggestion(exerciseName string, sug Suggestion) bool {
	for i := range s.exercises {
		if s.exercises[i].Name != exerciseName {
			continue
		}
		ex := &s.exercises[i]
		if i == s.exerciseIndex && s.userOverride {
			ex.Note = sug.Note
			return true
		}
		ex.Suggestion.Weight = sug.Weight
		ex.SuggestedReps = sug.Reps
		ex.Note = sug.Note
		if sug.Sets > 0 && len(s.logged[i]) == 0 {
			ex.PlannedSets = sug.Sets
			if i == s.exerciseIndex && s.setNumber > sug.Sets {
				s.setNumber = sug.Sets
			}
		}
		return true
	}
	return false
}

// CompletedSets returns the sets logged so far for the cursor exercise in set
// order, plus the count of planned sets still remaining. Used to build
// live-update payloads.
func (s *Session) CompletedSets() (sets []LoggedSet, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.exercises) == 0 {
		return nil, 0
	}
	ex := s.exercises[s.exerciseIndex]
	for n := 1; n <= ex.PlannedSets; n++ {
		if ls, ok := s.logged[s.exerciseIndex][n]; ok {
			sets = append(sets, ls)
		}
	}
	return sets, ex.PlannedSets - len(sets)
}
