// internal/feedback/table.go
//
// Precomputed feedback for every (guess, target) pair of a vocabulary.
//
// The table is a flat N*N array indexed guess*N+target. Rows are scored in
// parallel; the *Table is only handed out after every row is written, so a
// caller never observes a partially built table.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle-solver/internal/words"
)

// ErrNotInVocabulary is wrapped by every LookupError.
var ErrNotInVocabulary = errors.New("feedback: word not in vocabulary")

// LookupError reports a lookup with a word the table was not built from.
type LookupError struct {
	Word words.Word
	Role string // "guess" or "target"
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("feedback: %s %q not in vocabulary", e.Role, e.Word.String())
}

func (e *LookupError) Unwrap() error { return ErrNotInVocabulary }

// Table holds the feedback pattern of every ordered word pair.
type Table struct {
	vocab *words.Vocabulary
	cells []Pattern
}

type buildOptions struct {
	workers  int
	progress func(done, total int)
	log      zerolog.Logger
}

// Option configures Build.
type Option func(*buildOptions)

// WithWorkers bounds the number of rows scored concurrently.
// Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(o *buildOptions) { o.workers = max(n, 1) }
}

// WithProgress registers fn to be told how many rows are done.
// fn is called from a single goroutine at a time.
func WithProgress(fn func(done, total int)) Option {
	return func(o *buildOptions) { o.progress = fn }
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *buildOptions) { o.log = l }
}

// Build scores every ordered pair of vocab.
func Build(ctx context.Context, vocab *words.Vocabulary, opts ...Option) (*Table, error) {
	o := buildOptions{workers: runtime.GOMAXPROCS(0), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	n := vocab.Len()
	cells := make([]Pattern, n*n)
	list := vocab.Words()

	var (
		done     = make(chan struct{}, n)
		reported = make(chan struct{})
	)
	go func() {
		defer close(reported)
		count := 0
		for range done {
			count++
			if o.progress != nil {
				o.progress(count, n)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for gi := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := cells[gi*n : (gi+1)*n]
			guess := list[gi]
			for ti, target := range list {
				row[ti] = Score(guess, target)
			}
			done <- struct{}{}
			return nil
		})
	}
	err := g.Wait()
	close(done)
	<-reported
	if err != nil {
		return nil, fmt.Errorf("build feedback table: %w", err)
	}

	o.log.Debug().
		Int("words", n).
		Int("pairs", n*n).
		Dur("took", time.Since(start)).
		Msg("feedback table built")
	return &Table{vocab: vocab, cells: cells}, nil
}

// Vocabulary returns the vocabulary the table was built from.
func (t *Table) Vocabulary() *words.Vocabulary { return t.vocab }

// Len returns the vocabulary size.
func (t *Table) Len() int { return t.vocab.Len() }

// At returns the pattern for vocabulary positions gi (guess) and ti (target).
func (t *Table) At(gi, ti int) Pattern { return t.cells[gi*t.vocab.Len()+ti] }

// Lookup returns the pattern guess produces against target.
// Both words must belong to the table's vocabulary.
func (t *Table) Lookup(guess, target words.Word) (Pattern, error) {
	gi, ok := t.vocab.Index(guess)
	if !ok {
		return 0, &LookupError{Word: guess, Role: "guess"}
	}
	ti, ok := t.vocab.Index(target)
	if !ok {
		return 0, &LookupError{Word: target, Role: "target"}
	}
	return t.At(gi, ti), nil
}
