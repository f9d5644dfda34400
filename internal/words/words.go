// internal/words/words.go
//
// Vocabulary management for the solver.
//
// Responsibilities:
//   - Hold the ordered, duplicate-free word list that defines both the legal
//     guesses and the universe of possible solutions.
//   - Maintain index<->word mappings so the feedback table can be a flat array.
//   - Track the alphabet (every letter used by any word) for input checks.
//   - Fingerprint the list so persisted sessions can detect a changed vocabulary.
//
// A Vocabulary is immutable once built. Replacing the word list means building
// a new Vocabulary.
package words

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Vocabulary is an ordered set of unique words.
type Vocabulary struct {
	words    []Word
	index    map[Word]int
	alphabet map[rune]struct{}
	sum      [blake2b.Size256]byte
}

// New builds a Vocabulary from list. Duplicates are dropped, keeping the
// first occurrence, so positions follow first appearance in list.
func New(list []Word) *Vocabulary {
	v := &Vocabulary{
		words:    make([]Word, 0, len(list)),
		index:    make(map[Word]int, len(list)),
		alphabet: make(map[rune]struct{}),
	}
	for _, w := range list {
		if _, dup := v.index[w]; dup {
			continue
		}
		v.index[w] = len(v.words)
		v.words = append(v.words, w)
		for _, r := range w {
			v.alphabet[r] = struct{}{}
		}
	}

	var b strings.Builder
	for _, w := range v.words {
		b.WriteString(w.String())
		b.WriteByte('\n')
	}
	v.sum = blake2b.Sum256([]byte(b.String()))
	return v
}

// Len returns the number of words.
func (v *Vocabulary) Len() int { return len(v.words) }

// At returns the word at position i.
func (v *Vocabulary) At(i int) Word { return v.words[i] }

// Index returns the position of w, or false if w is not in the vocabulary.
func (v *Vocabulary) Index(w Word) (int, bool) {
	i, ok := v.index[w]
	return i, ok
}

// Contains reports whether w is in the vocabulary.
func (v *Vocabulary) Contains(w Word) bool {
	_, ok := v.index[w]
	return ok
}

// Words returns a copy of the words in vocabulary order.
func (v *Vocabulary) Words() []Word { return slices.Clone(v.words) }

// Alphabet returns every letter used by the vocabulary, sorted.
func (v *Vocabulary) Alphabet() []rune {
	out := make([]rune, 0, len(v.alphabet))
	for r := range v.alphabet {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// InAlphabet reports whether r occurs in some vocabulary word.
func (v *Vocabulary) InAlphabet(r rune) bool {
	_, ok := v.alphabet[r]
	return ok
}

// ParseWord parses s and checks that every letter belongs to the alphabet.
// The word itself need not be in the vocabulary.
func (v *Vocabulary) ParseWord(s string) (Word, error) {
	w, err := Parse(s)
	if err != nil {
		return Word{}, err
	}
	for _, r := range w {
		if !v.InAlphabet(r) {
			return Word{}, fmt.Errorf("%w: letter %q not used by vocabulary", ErrMalformed, r)
		}
	}
	return w, nil
}

// Fingerprint is a hex BLAKE2b-256 digest of the ordered word list.
func (v *Vocabulary) Fingerprint() string { return hex.EncodeToString(v.sum[:]) }
