// internal/solver/rank.go
//
// Entropy ranking.
//
// For a guess g, the possible solutions split into groups by the pattern g
// would produce against each of them. The expected information of g is the
// Shannon entropy of that partition, in bits.
package solver

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/words"
)

// Suggestion is one ranked guess.
type Suggestion struct {
	Word      words.Word
	Bits      float64 // expected information, in bits
	Candidate bool    // the word could itself be the answer
}

// Rank scores every vocabulary word against the possible solutions.
// Results are ordered by entropy (highest first), then candidates before
// non-candidates, then vocabulary order. With one or no possible solution
// left nothing can be learned, and Rank returns an empty slice.
func (o *Optimizer) Rank() []Suggestion {
	if len(o.possible) <= 1 {
		return []Suggestion{}
	}
	possible := slices.Clone(o.possible)
	n := o.vocab.Len()
	out := make([]Suggestion, n)

	chunk := (n + o.workers - 1) / o.workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			var counts [feedback.NumPatterns]int
			for gi := lo; gi < hi; gi++ {
				clear(counts[:])
				for _, ti := range possible {
					counts[o.table.At(gi, ti)]++
				}
				out[gi] = Suggestion{
					Word:      o.vocab.At(gi),
					Bits:      partitionEntropy(counts[:], len(possible)),
					Candidate: o.member.Test(uint(gi)),
				}
			}
		}()
	}
	wg.Wait()

	slices.SortStableFunc(out, compareSuggestions)
	return out
}

// compareSuggestions orders by entropy descending, then candidates first.
func compareSuggestions(a, b Suggestion) int {
	if c := cmp.Compare(b.Bits, a.Bits); c != 0 {
		return c
	}
	switch {
	case a.Candidate && !b.Candidate:
		return -1
	case !a.Candidate && b.Candidate:
		return 1
	}
	return 0
}

// partitionEntropy returns the entropy in bits of groups of the given sizes.
// Sizes are summed smallest first so that two guesses inducing the same
// partition shape get bit-identical scores and tie exactly.
func partitionEntropy(counts []int, total int) float64 {
	sizes := make([]int, 0, len(counts))
	for _, c := range counts {
		if c > 0 {
			sizes = append(sizes, c)
		}
	}
	if len(sizes) <= 1 {
		return 0
	}
	slices.Sort(sizes)
	p := make([]float64, len(sizes))
	for i, c := range sizes {
		p[i] = float64(c) / float64(total)
	}
	return stat.Entropy(p) / math.Ln2
}

// Entropy returns the expected information in bits of guessing w against
// the current possible solutions.
func (o *Optimizer) Entropy(w words.Word) (float64, error) {
	gi, ok := o.vocab.Index(w)
	if !ok {
		return 0, &feedback.LookupError{Word: w, Role: "guess"}
	}
	var counts [feedback.NumPatterns]int
	for _, ti := range o.possible {
		counts[o.table.At(gi, ti)]++
	}
	return partitionEntropy(counts[:], len(o.possible)), nil
}
