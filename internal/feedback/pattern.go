// internal/feedback/pattern.go
//
// Feedback patterns and the two-pass scoring algorithm.
//
// A Pattern packs five per-letter marks into one base-3 number
// (Wrong=0, Misplaced=1, Correct=2; position 0 is the most significant
// digit), so it fits in a byte and doubles as a dense array index
// when grouping candidates.
package feedback

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalobadob/wordle-solver/internal/words"
)

// Mark is the evaluation of one letter of a guess.
type Mark uint8

const (
	Wrong     Mark = iota // letter not in the target (or all copies used up)
	Misplaced             // letter in the target at another position
	Correct               // letter in the target at this position
)

func (m Mark) String() string {
	switch m {
	case Correct:
		return "correct"
	case Misplaced:
		return "misplaced"
	default:
		return "wrong"
	}
}

// Symbol returns the one-character text form of m.
func (m Mark) Symbol() byte {
	switch m {
	case Correct:
		return '*'
	case Misplaced:
		return '^'
	default:
		return '-'
	}
}

// NumPatterns is the number of distinct patterns (3^Length).
const NumPatterns = 243

// Pattern is the packed feedback for a whole word.
type Pattern uint8

// AllCorrect is the pattern of a word scored against itself.
var AllCorrect = FromMarks([words.Length]Mark{Correct, Correct, Correct, Correct, Correct})

// ErrBadPattern reports unparseable pattern text.
var ErrBadPattern = errors.New("feedback: malformed pattern")

// FromMarks packs marks into a Pattern.
func FromMarks(marks [words.Length]Mark) Pattern {
	var p Pattern
	for _, m := range marks {
		p = p*3 + Pattern(m)
	}
	return p
}

// Marks unpacks p.
func (p Pattern) Marks() [words.Length]Mark {
	var out [words.Length]Mark
	for i := words.Length - 1; i >= 0; i-- {
		out[i] = Mark(p % 3)
		p /= 3
	}
	return out
}

// String renders p as five symbols, e.g. "*-^--".
func (p Pattern) String() string {
	marks := p.Marks()
	b := make([]byte, words.Length)
	for i, m := range marks {
		b[i] = m.Symbol()
	}
	return string(b)
}

// ParsePattern reads a pattern written with '*' '^' '-', digits '2' '1' '0',
// or the colour letters 'g' 'y' 'b' (also 'x' and '.' for Wrong).
func ParsePattern(s string) (Pattern, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != words.Length {
		return 0, fmt.Errorf("%w: %q", ErrBadPattern, s)
	}
	var marks [words.Length]Mark
	for i := range words.Length {
		switch s[i] {
		case '*', '2', 'g':
			marks[i] = Correct
		case '^', '1', 'y':
			marks[i] = Misplaced
		case '-', '0', 'b', 'x', '.':
			marks[i] = Wrong
		default:
			return 0, fmt.Errorf("%w: %q", ErrBadPattern, s)
		}
	}
	return FromMarks(marks), nil
}

// Score computes the feedback for guess played against target.
//
// Pass 1 marks exact matches and blanks those target letters. Pass 2 marks
// each remaining guess letter Misplaced if an unconsumed copy is left in the
// target (consuming it), otherwise Wrong. Running the passes in this order
// caps Misplaced+Correct marks for a letter at its multiplicity in the target.
func Score(guess, target words.Word) Pattern {
	var marks [words.Length]Mark
	remaining := target

	for i := range words.Length {
		if guess[i] == target[i] {
			marks[i] = Correct
			remaining[i] = 0
		}
	}

	for i := range words.Length {
		if marks[i] == Correct {
			continue
		}
		marks[i] = Wrong
		for j := range words.Length {
			if remaining[j] != 0 && remaining[j] == guess[i] {
				marks[i] = Misplaced
				remaining[j] = 0
				break
			}
		}
	}
	return FromMarks(marks)
}
