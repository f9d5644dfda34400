// internal/words/word.go
//
// Word is the fixed-length unit of the game. Letters are runes so that
// vocabularies in languages with diacritics (ą, ć, ż, ...) score correctly.
package words

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Length is the number of letters in every word.
const Length = 5

// ErrMalformed reports input that is not exactly Length letters.
var ErrMalformed = errors.New("words: malformed word")

// Word is an immutable sequence of Length lowercase letters.
// It is comparable and can be used as a map key.
type Word [Length]rune

// Parse normalises s (trim + lowercase) and converts it to a Word.
// Anything other than exactly Length letters is rejected.
func Parse(s string) (Word, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	var w Word
	n := 0
	for _, r := range s {
		if n == Length || !unicode.IsLetter(r) {
			return Word{}, fmt.Errorf("%w: %q", ErrMalformed, s)
		}
		w[n] = r
		n++
	}
	if n != Length {
		return Word{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return w, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Word {
	w, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return w
}

// String returns the word as text.
func (w Word) String() string { return string(w[:]) }

// Count returns how many times r occurs in w.
func (w Word) Count(r rune) int {
	n := 0
	for _, c := range w {
		if c == r {
			n++
		}
	}
	return n
}

// Compare orders words by letter sequence.
func Compare(a, b Word) int {
	for i := range Length {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}
