// internal/store/session.go
//
// Session is one player's solving session: a solver plus the rows of
// feedback entered so far. Access goes through the session's mutex because
// HTTP handlers for the same session may run concurrently.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/solver"
	"github.com/robalobadob/wordle-solver/internal/words"
)

var (
	// ErrRowsExhausted is returned when feedback arrives after the last row.
	ErrRowsExhausted = errors.New("no rows left")
	// ErrFinished is returned when feedback arrives after the game was
	// solved or no consistent word is left.
	ErrFinished = errors.New("game is over")
)

// Observation is one completed row of the game.
type Observation struct {
	Row       int // 1-based
	Guess     words.Word
	Pattern   feedback.Pattern
	Remaining int  // possible solutions left after this row
	Finished  bool // no further row is accepted
}

// Session holds a solver and its history.
type Session struct {
	ID        string
	MaxRows   int
	CreatedAt time.Time

	mu      sync.Mutex
	opt     *solver.Optimizer
	history []Observation
}

// NewSession wraps opt in a session with the given row limit.
func NewSession(id string, opt *solver.Optimizer, maxRows int) *Session {
	return &Session{ID: id, MaxRows: maxRows, CreatedAt: time.Now().UTC(), opt: opt}
}

// Do runs fn with exclusive access to the session's solver.
func (s *Session) Do(fn func(opt *solver.Optimizer, history []Observation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.opt, s.history)
}

// Observe records a row of feedback and narrows the possible solutions.
func (s *Session) Observe(guess words.Word, p feedback.Pattern) (Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MaxRows > 0 && len(s.history) >= s.MaxRows {
		return Observation{}, ErrRowsExhausted
	}
	if s.finishedLocked() {
		return Observation{}, ErrFinished
	}
	left, err := s.opt.Eliminate(guess, p)
	if err != nil {
		return Observation{}, err
	}
	s.history = append(s.history, Observation{Row: len(s.history) + 1, Guess: guess, Pattern: p, Remaining: left})
	last := &s.history[len(s.history)-1]
	last.Finished = s.finishedLocked()
	return *last, nil
}

// Reset starts a new game on the same vocabulary.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opt.ResetSolutions()
	s.history = nil
}

// ReplaceVocabulary swaps the session's word list and starts a new game.
// On failure the previous vocabulary and history are kept.
func (s *Session) ReplaceVocabulary(ctx context.Context, v *words.Vocabulary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.opt.ReplaceVocabulary(ctx, v); err != nil {
		return err
	}
	s.history = nil
	return nil
}

// Finished reports whether the game is over: solved, out of rows, or no
// consistent word left.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedLocked()
}

func (s *Session) finishedLocked() bool {
	if n := len(s.history); n > 0 && s.history[n-1].Pattern == feedback.AllCorrect {
		return true
	}
	if s.opt.Remaining() == 0 {
		return true
	}
	return s.MaxRows > 0 && len(s.history) >= s.MaxRows
}
