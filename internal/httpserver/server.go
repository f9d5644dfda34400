// internal/httpserver/server.go
//
// HTTP server wiring for the solver backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words", POST /score.
//   - Session endpoints (bearer token per session): mounted under /sessions.
//
// Notes:
//   - All sessions start on one shared, read-only feedback table built at
//     startup. A session that loads its own vocabulary gets a private table.
//   - The history store is optional; without it sessions die with the process.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/history"
	"github.com/robalobadob/wordle-solver/internal/store"
	"github.com/robalobadob/wordle-solver/internal/words"
)

// Options tunes the server. Zero values fall back to the defaults below.
type Options struct {
	Secret        []byte        // HS256 key for session tokens (required)
	TokenTTL      time.Duration // default 24h
	MaxRows       int           // default 6
	MaxVocabulary int           // largest uploaded word list; default 15000
	Workers       int           // solver parallelism; default 1
	ClientOrigin  string        // default http://localhost:5173
	Timeout       time.Duration // per-request bound; default 30s
}

func (o *Options) defaults() {
	if o.TokenTTL <= 0 {
		o.TokenTTL = 24 * time.Hour
	}
	if o.MaxRows <= 0 {
		o.MaxRows = 6
	}
	if o.MaxVocabulary <= 0 {
		o.MaxVocabulary = 15000
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
}

// Server bundles router, session store, shared table and history log.
type Server struct {
	r     *chi.Mux
	store store.Store
	table *feedback.Table
	hist  *history.Store // nil when history is disabled
	opts  Options

	replays singleflight.Group // one replay per session id at a time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, table *feedback.Table, hist *history.Store, opts Options) *Server {
	opts.defaults()
	s := &Server{
		r:     chi.NewRouter(),
		store: st,
		table: table,
		hist:  hist,
		opts:  opts,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(chimw.Timeout(opts.Timeout)) // bound handler time
	s.r.Use(jsonContentType)             // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"wordle-solver","endpoints":["/health","/debug/words","POST /score","POST /sessions","/sessions/{id}/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", s.handleDebugWords)

	s.r.Post("/score", s.handleScore)

	s.mountSessions()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin. Tokens travel in the Authorization
// header, so no credentials are needed.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ public -------------------------------------

func (s *Server) handleDebugWords(w http.ResponseWriter, r *http.Request) {
	v := s.table.Vocabulary()
	writeJSON(w, http.StatusOK, map[string]any{
		"size":        v.Len(),
		"fingerprint": v.Fingerprint(),
		"alphabet":    string(v.Alphabet()),
	})
}

// scoreReq/Res payloads for POST /score.
type scoreReq struct {
	Guess  string `json:"guess"`
	Target string `json:"target"`
}
type scoreRes struct {
	Pattern string   `json:"pattern"`
	Marks   []string `json:"marks"`
}

// handleScore returns the feedback pattern for a guess against a target,
// both taken from the shared vocabulary.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess, err := words.Parse(req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := words.Parse(req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.table.Lookup(guess, target)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreRes{Pattern: p.String(), Marks: markNames(p)})
}

// ------------------------------- helpers -----------------------------------

func markNames(p feedback.Pattern) []string {
	marks := p.Marks()
	out := make([]string, len(marks))
	for i, m := range marks {
		out[i] = m.String()
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeFailure maps domain errors onto status codes.
func writeFailure(w http.ResponseWriter, err error) {
	var lookup *feedback.LookupError
	switch {
	case errors.As(err, &lookup):
		writeError(w, http.StatusUnprocessableEntity, lookup.Error())
	case errors.Is(err, store.ErrRowsExhausted), errors.Is(err, store.ErrFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "timeout")
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
