// internal/httpserver/routes_sessions.go
//
// HTTP routes for solver sessions.
//   - POST /sessions                     → create a session, returns its bearer token
//   - GET  /sessions/{id}                → rows entered so far and remaining count
//   - GET  /sessions/{id}/suggestions    → entropy-ranked guesses (?limit=, default 10)
//   - GET  /sessions/{id}/solutions      → possible solutions, alphabetical
//   - POST /sessions/{id}/feedback       → record {guess, pattern} and narrow the set
//   - POST /sessions/{id}/reset          → new game on the same vocabulary
//   - PUT  /sessions/{id}/vocabulary     → replace the word list and start over
//
// A session allows MaxRows rows of feedback per game, and none once the game
// is solved or nothing fits; further feedback answers 409 until reset. With history enabled every change is logged and a
// session missing from memory is replayed from the log on first access.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/history"
	"github.com/robalobadob/wordle-solver/internal/solver"
	"github.com/robalobadob/wordle-solver/internal/store"
	"github.com/robalobadob/wordle-solver/internal/words"
)

const defaultSuggestions = 10

// mountSessions registers all /sessions routes.
func (s *Server) mountSessions() {
	s.r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/", s.handleGet)
			r.Get("/suggestions", s.handleSuggestions)
			r.Get("/solutions", s.handleSolutions)
			r.Post("/feedback", s.handleFeedback)
			r.Post("/reset", s.handleReset)
			// The table is N*N patterns, so both the body and the word count are capped.
			r.With(chimw.RequestSize(int64(s.opts.MaxVocabulary)*bytesPerWord + 1024)).
				Put("/vocabulary", s.handleVocabulary)
		})
	})
}

// -----------------------------------------------------------------------------
// POST /sessions

type createRes struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Remaining int    `json:"remaining"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession(uuid.NewString())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if s.hist != nil {
		v := s.table.Vocabulary()
		if err := s.hist.StartSession(r.Context(), sess.ID, v.Fingerprint(), v.Len()); err != nil {
			log.Warn().Err(err).Str("sessionId", sess.ID).Msg("history start")
		}
	}

	tok, exp, err := s.signToken(sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	log.Info().Str("sessionId", sess.ID).Msg("session created")
	writeJSON(w, http.StatusCreated, createRes{
		SessionID: sess.ID,
		Token:     tok,
		ExpiresAt: exp.Unix(),
		Remaining: s.table.Len(),
	})
}

// newSession builds a session on the shared table.
func (s *Server) newSession(id string) (*store.Session, error) {
	opt, err := solver.FromTable(s.table, solver.WithWorkers(s.opts.Workers))
	if err != nil {
		return nil, err
	}
	return store.NewSession(id, opt, s.opts.MaxRows), nil
}

// loadSession returns a live session, replaying it from history if needed.
func (s *Server) loadSession(ctx context.Context, id string) (*store.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err == nil || !errors.Is(err, store.ErrNotFound) || s.hist == nil {
		return sess, err
	}

	// Concurrent requests for the same session share one replay.
	ch := s.replays.DoChan(id, func() (any, error) {
		if sess, err := s.store.Get(ctx, id); err == nil {
			return sess, nil
		}
		return s.replay(ctx, id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*store.Session), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// replay rebuilds a session from its logged rows. Only sessions on the
// shared vocabulary can be replayed.
func (s *Server) replay(ctx context.Context, id string) (*store.Session, error) {
	row, err := s.hist.Session(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if row.Fingerprint != s.table.Vocabulary().Fingerprint() {
		log.Info().Str("sessionId", id).Msg("session vocabulary no longer loaded; not replayed")
		return nil, store.ErrNotFound
	}

	obs, err := s.hist.Observations(ctx, id)
	if err != nil {
		return nil, err
	}
	sess, err := s.newSession(id)
	if err != nil {
		return nil, err
	}
	for _, o := range obs {
		guess, err := words.Parse(o.Guess)
		if err != nil {
			return nil, err
		}
		p, err := feedback.ParsePattern(o.Pattern)
		if err != nil {
			return nil, err
		}
		if _, err := sess.Observe(guess, p); err != nil {
			return nil, err
		}
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	log.Info().Str("sessionId", id).Int("rows", len(obs)).Msg("session replayed")
	return sess, nil
}

// -----------------------------------------------------------------------------
// GET /sessions/{id}

type rowView struct {
	Row       int    `json:"row"`
	Guess     string `json:"guess"`
	Pattern   string `json:"pattern"`
	Remaining int    `json:"remaining"`
}

type sessionView struct {
	SessionID      string    `json:"sessionId"`
	Rows           []rowView `json:"rows"`
	MaxRows        int       `json:"maxRows"`
	Remaining      int       `json:"remaining"`
	Finished       bool      `json:"finished"`
	Solved         bool      `json:"solved"`
	VocabularySize int       `json:"vocabularySize"`
	Fingerprint    string    `json:"fingerprint"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	view := sessionView{SessionID: sess.ID, MaxRows: sess.MaxRows, Rows: []rowView{}}
	_ = sess.Do(func(opt *solver.Optimizer, rows []store.Observation) error {
		for _, o := range rows {
			view.Rows = append(view.Rows, rowView{Row: o.Row, Guess: o.Guess.String(), Pattern: o.Pattern.String(), Remaining: o.Remaining})
		}
		view.Remaining = opt.Remaining()
		view.VocabularySize = opt.Vocabulary().Len()
		view.Fingerprint = opt.Vocabulary().Fingerprint()
		view.Solved = len(rows) > 0 && rows[len(rows)-1].Pattern == feedback.AllCorrect
		return nil
	})
	view.Finished = sess.Finished()
	writeJSON(w, http.StatusOK, view)
}

// -----------------------------------------------------------------------------
// GET /sessions/{id}/suggestions

type suggestionView struct {
	Word      string  `json:"word"`
	Bits      float64 `json:"bits"`
	Candidate bool    `json:"candidate"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSuggestions
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var ranked []solver.Suggestion
	_ = sessionFrom(r).Do(func(opt *solver.Optimizer, _ []store.Observation) error {
		ranked = opt.Rank()
		return nil
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]suggestionView, 0, len(ranked))
	for _, sg := range ranked {
		out = append(out, suggestionView{Word: sg.Word.String(), Bits: sg.Bits, Candidate: sg.Candidate})
	}
	writeJSON(w, http.StatusOK, out)
}

// -----------------------------------------------------------------------------
// GET /sessions/{id}/solutions

type solutionsRes struct {
	Count int      `json:"count"`
	Words []string `json:"words"`
}

func (s *Server) handleSolutions(w http.ResponseWriter, r *http.Request) {
	var possible []words.Word
	_ = sessionFrom(r).Do(func(opt *solver.Optimizer, _ []store.Observation) error {
		possible = opt.PossibleSolutions()
		return nil
	})
	slices.SortFunc(possible, words.Compare)
	out := solutionsRes{Count: len(possible), Words: make([]string, len(possible))}
	for i, p := range possible {
		out.Words[i] = p.String()
	}
	writeJSON(w, http.StatusOK, out)
}

// -----------------------------------------------------------------------------
// POST /sessions/{id}/feedback

type feedbackReq struct {
	Guess   string `json:"guess"`
	Pattern string `json:"pattern"`
}

type feedbackRes struct {
	Row       int    `json:"row"`
	Remaining int    `json:"remaining"`
	Finished  bool   `json:"finished"`
	Solved    bool   `json:"solved"`
	Solution  string `json:"solution,omitempty"` // set once a single word is left
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	guess, err := words.Parse(req.Guess)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := feedback.ParsePattern(req.Pattern)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess := sessionFrom(r)
	obs, err := sess.Observe(guess, p)
	if err != nil {
		writeFailure(w, err)
		return
	}

	res := feedbackRes{
		Row:       obs.Row,
		Remaining: obs.Remaining,
		Finished:  obs.Finished,
		Solved:    p == feedback.AllCorrect,
	}
	if res.Solved {
		res.Solution = guess.String()
	} else if obs.Remaining == 1 {
		_ = sess.Do(func(opt *solver.Optimizer, _ []store.Observation) error {
			res.Solution = opt.PossibleSolutions()[0].String()
			return nil
		})
	}

	s.logObservation(r.Context(), sess.ID, obs, res)
	writeJSON(w, http.StatusOK, res)
}

// logObservation writes the row (and the final status) to history, best effort.
func (s *Server) logObservation(ctx context.Context, id string, obs store.Observation, res feedbackRes) {
	if s.hist == nil {
		return
	}
	err := s.hist.RecordObservation(ctx, id, history.Observation{
		Row:       obs.Row,
		Guess:     obs.Guess.String(),
		Pattern:   obs.Pattern.String(),
		Remaining: obs.Remaining,
	})
	if err != nil {
		log.Warn().Err(err).Str("sessionId", id).Msg("history observation")
	}
	if !res.Finished {
		return
	}
	status := history.StatusFailed
	if res.Solved {
		status = history.StatusSolved
	}
	if err := s.hist.FinishSession(ctx, id, status); err != nil {
		log.Warn().Err(err).Str("sessionId", id).Msg("history finish")
	}
}

// -----------------------------------------------------------------------------
// POST /sessions/{id}/reset

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.Reset()

	var remaining int
	var vocab *words.Vocabulary
	_ = sess.Do(func(opt *solver.Optimizer, _ []store.Observation) error {
		remaining, vocab = opt.Remaining(), opt.Vocabulary()
		return nil
	})
	s.logReset(r.Context(), sess.ID, vocab)
	writeJSON(w, http.StatusOK, map[string]int{"remaining": remaining})
}

func (s *Server) logReset(ctx context.Context, id string, vocab *words.Vocabulary) {
	if s.hist == nil {
		return
	}
	if err := s.hist.ResetSession(ctx, id, vocab.Fingerprint(), vocab.Len()); err != nil {
		log.Warn().Err(err).Str("sessionId", id).Msg("history reset")
	}
}

// -----------------------------------------------------------------------------
// PUT /sessions/{id}/vocabulary

// bytesPerWord bounds one JSON-encoded list entry, escapes included.
const bytesPerWord = 64

type vocabularyReq struct {
	Words []string `json:"words"`
}

type vocabularyRes struct {
	Accepted    int      `json:"accepted"`
	Duplicates  int      `json:"duplicates"`
	Rejected    []string `json:"rejected"`
	Fingerprint string   `json:"fingerprint"`
	Remaining   int      `json:"remaining"`
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	var req vocabularyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "vocabulary_too_large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	vocab, stats := words.FromStrings(req.Words)
	if vocab.Len() == 0 {
		writeError(w, http.StatusBadRequest, "no valid words")
		return
	}
	if vocab.Len() > s.opts.MaxVocabulary {
		writeError(w, http.StatusRequestEntityTooLarge, "vocabulary_too_large")
		return
	}

	sess := sessionFrom(r)
	if err := sess.ReplaceVocabulary(r.Context(), vocab); err != nil {
		writeFailure(w, err)
		return
	}
	s.logReset(r.Context(), sess.ID, vocab)
	log.Info().Str("sessionId", sess.ID).Int("words", vocab.Len()).Msg("vocabulary replaced")

	rejected := stats.Rejected
	if rejected == nil {
		rejected = []string{}
	}
	writeJSON(w, http.StatusOK, vocabularyRes{
		Accepted:    stats.Accepted,
		Duplicates:  stats.Duplicates,
		Rejected:    rejected,
		Fingerprint: vocab.Fingerprint(),
		Remaining:   vocab.Len(),
	})
}
