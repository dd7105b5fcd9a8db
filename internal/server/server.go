package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/claude/repflow/internal/coaching"
	"github.com/claude/repflow/internal/journal"
	"github.com/claude/repflow/internal/session"
	"github.com/claude/repflow/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"tailscale.com/client/local"
	"tailscale.com/client/tailscale/apitype"
)

// whoisFunc resolves a remote address to a Tailscale identity.
type whoisFunc func(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)

// liveSession pairs a session with its coaching advisor for the screen's
// lifetime.
type liveSession struct {
	sess    *session.Session
	advisor *coaching.Advisor
}

// Server holds dependencies for HTTP handlers and the in-memory registry of
// live sessions. Coach and journal may be nil; sessions then run on catalog
// defaults with no crash recovery.
type Server struct {
	db      *storage.DB
	coach   coaching.Suggester
	journal *journal.Journal
	log     *slog.Logger
	apiKey  string
	router  chi.Router
	whois   whoisFunc

	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, coach coaching.Suggester, jn *journal.Journal, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		coach:    coach,
		journal:  jn,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
		sessions: make(map[uuid.UUID]*liveSession),
	}
	s.routes()
	return s
}

// SetTailscale wires the tsnet local client so requests are attributed to the
// Tailscale peer instead of the dev identity.
func (s *Server) SetTailscale(lc *local.Client) {
	s.whois = lc.WhoIs
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Session engine endpoints (API key required — the host UI holds the key)
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleStartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDiscardSession)
			r.Post("/sets", s.handleLogSet)
			r.Post("/sets/bulk", s.handleLogAllSets)
			r.Post("/sets/add", s.handleAddSet)
			r.Post("/sets/remove", s.handleRemoveSet)
			r.Post("/advance", s.handleAdvance)
			r.Post("/previous", s.handlePrevious)
			r.Post("/next", s.handleNext)
			r.Post("/swap", s.handleSwapExercise)
			r.Post("/exercises", s.handleAddExercise)
			r.Post("/override", s.handleMarkOverride)
			r.Post("/apply-suggestion", s.handleApplySuggestion)
			r.Get("/related", s.handleRelatedExercises)
			r.Post("/finish", s.handleFinish)
		})
	})

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/sets", s.handleQuerySets)
	s.router.Get("/api/v1/catalog", s.handleCatalog)
	s.router.Get("/api/v1/catalog/{group}", s.handleCatalogGroup)
}

// lookup finds a live session by path ID.
func (s *Server) lookup(idStr string) (*liveSession, bool) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.sessions[id]
	return ls, ok
}

func (s *Server) register(ls *liveSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ls.sess.ID()] = ls
}

func (s *Server) unregister(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
