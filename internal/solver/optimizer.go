// internal/solver/optimizer.go
//
// Optimizer keeps the set of words still consistent with every observation
// and ranks guesses by how much information they are expected to reveal.
//
// State:
//   - vocab/table: the vocabulary and its feedback table, always replaced
//     together so lookups never see a table from another vocabulary.
//   - possible: vocabulary positions still consistent with the feedback, in
//     vocabulary order, mirrored in a bitset for O(1) membership tests.
//
// An Optimizer is not safe for concurrent use.
package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/words"
)

// ErrEmptyVocabulary is returned when initialising with no words.
var ErrEmptyVocabulary = errors.New("solver: empty vocabulary")

// Optimizer is the solution-narrowing engine for one game.
type Optimizer struct {
	vocab    *words.Vocabulary
	table    *feedback.Table
	possible []int
	member   *bitset.BitSet

	workers  int
	log      zerolog.Logger
	progress func(done, total int)
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithWorkers sets the parallelism for table builds and ranking.
func WithWorkers(n int) Option {
	return func(o *Optimizer) { o.workers = max(n, 1) }
}

// WithLogger sets the optimizer's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Optimizer) { o.log = l }
}

// WithBuildProgress forwards table build progress to fn.
func WithBuildProgress(fn func(done, total int)) Option {
	return func(o *Optimizer) { o.progress = fn }
}

func newOptimizer(opts []Option) *Optimizer {
	o := &Optimizer{workers: runtime.GOMAXPROCS(0), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New builds the feedback table for vocab and starts a game.
func New(ctx context.Context, vocab *words.Vocabulary, opts ...Option) (*Optimizer, error) {
	o := newOptimizer(opts)
	if err := o.Initialize(ctx, vocab); err != nil {
		return nil, err
	}
	return o, nil
}

// FromTable starts a game over an already built table. The table is only
// read, so one table may back many optimizers.
func FromTable(table *feedback.Table, opts ...Option) (*Optimizer, error) {
	if table.Len() == 0 {
		return nil, ErrEmptyVocabulary
	}
	o := newOptimizer(opts)
	o.install(table)
	return o, nil
}

// Initialize builds the feedback table for vocab and resets the possible
// solutions to the whole vocabulary. If the build fails the optimizer keeps
// its previous state.
func (o *Optimizer) Initialize(ctx context.Context, vocab *words.Vocabulary) error {
	if vocab == nil || vocab.Len() == 0 {
		return ErrEmptyVocabulary
	}
	opts := []feedback.Option{feedback.WithWorkers(o.workers), feedback.WithLogger(o.log)}
	if o.progress != nil {
		opts = append(opts, feedback.WithProgress(o.progress))
	}
	table, err := feedback.Build(ctx, vocab, opts...)
	if err != nil {
		return fmt.Errorf("initialize solver: %w", err)
	}
	o.install(table)
	o.log.Debug().Int("words", vocab.Len()).Str("vocabulary", vocab.Fingerprint()).Msg("solver initialized")
	return nil
}

// ReplaceVocabulary swaps in a new vocabulary and starts a new game.
func (o *Optimizer) ReplaceVocabulary(ctx context.Context, vocab *words.Vocabulary) error {
	return o.Initialize(ctx, vocab)
}

// install swaps vocabulary, table and possible set in one step.
func (o *Optimizer) install(table *feedback.Table) {
	o.table = table
	o.vocab = table.Vocabulary()
	o.ResetSolutions()
}

// ResetSolutions starts a new game with the same vocabulary.
func (o *Optimizer) ResetSolutions() {
	n := o.vocab.Len()
	o.possible = make([]int, n)
	for i := range n {
		o.possible[i] = i
	}
	o.member = bitset.New(uint(n))
	o.member.FlipRange(0, uint(n))
}

// Eliminate keeps only the words for which guess would have produced
// observed, and returns how many remain. Zero remaining is a valid outcome:
// no vocabulary word fits the reported history. A guess outside the
// vocabulary is an error and leaves the set untouched.
func (o *Optimizer) Eliminate(guess words.Word, observed feedback.Pattern) (int, error) {
	gi, ok := o.vocab.Index(guess)
	if !ok {
		return len(o.possible), &feedback.LookupError{Word: guess, Role: "guess"}
	}
	before := len(o.possible)
	kept := o.possible[:0]
	for _, ti := range o.possible {
		if o.table.At(gi, ti) == observed {
			kept = append(kept, ti)
		} else {
			o.member.Clear(uint(ti))
		}
	}
	o.possible = kept
	o.log.Debug().
		Str("guess", guess.String()).
		Stringer("pattern", observed).
		Int("before", before).
		Int("after", len(kept)).
		Msg("eliminated")
	return len(kept), nil
}

// PossibleSolutions returns the remaining words in vocabulary order.
func (o *Optimizer) PossibleSolutions() []words.Word {
	out := make([]words.Word, len(o.possible))
	for i, wi := range o.possible {
		out[i] = o.vocab.At(wi)
	}
	return out
}

// Remaining returns the size of the possible-solutions set.
func (o *Optimizer) Remaining() int { return len(o.possible) }

// IsCandidate reports whether w is still a possible solution.
func (o *Optimizer) IsCandidate(w words.Word) bool {
	i, ok := o.vocab.Index(w)
	return ok && o.member.Test(uint(i))
}

// Vocabulary returns the current vocabulary.
func (o *Optimizer) Vocabulary() *words.Vocabulary { return o.vocab }

// Table returns the feedback table backing the optimizer.
func (o *Optimizer) Table() *feedback.Table { return o.table }
