// internal/words/load.go
//
// Loading vocabularies from text. One word per line; blank lines and lines
// starting with '#' are skipped. Lines are trimmed and lowercased. Lines that
// are not exactly five letters are rejected here, so malformed input never
// reaches the feedback engine.
package words

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/robalobadob/wordle-solver/assets"
)

// ErrEmpty is returned when a source contains no valid words.
var ErrEmpty = errors.New("words: vocabulary is empty")

// LoadStats summarises a load.
type LoadStats struct {
	Accepted   int      // words kept
	Duplicates int      // valid words dropped as repeats
	Rejected   []string // malformed lines, as read
}

// Read parses a vocabulary from r.
func Read(r io.Reader) (*Vocabulary, LoadStats, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		lines = append(lines, s)
	}
	if err := sc.Err(); err != nil {
		return nil, LoadStats{}, fmt.Errorf("read vocabulary: %w", err)
	}
	v, stats := FromStrings(lines)
	if v.Len() == 0 {
		return nil, stats, ErrEmpty
	}
	return v, stats, nil
}

// Load reads a vocabulary file from disk.
func Load(path string) (*Vocabulary, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer f.Close()
	v, stats, err := Read(f)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return v, stats, nil
}

// Default returns the embedded default vocabulary.
func Default() (*Vocabulary, LoadStats, error) {
	f, err := assets.OpenDefault()
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer f.Close()
	return Read(f)
}

// FromStrings builds a Vocabulary from raw strings, rejecting malformed ones.
// The result may be empty.
func FromStrings(list []string) (*Vocabulary, LoadStats) {
	var stats LoadStats
	out := make([]Word, 0, len(list))
	seen := make(map[Word]struct{}, len(list))
	for _, s := range list {
		w, err := Parse(s)
		if err != nil {
			stats.Rejected = append(stats.Rejected, s)
			continue
		}
		if _, ok := seen[w]; ok {
			stats.Duplicates++
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	stats.Accepted = len(out)
	return New(out), stats
}
