// assets/embed.go
//
// Embedded default vocabulary so the solver runs without any configured
// word file. The list is plain text, one word per line; parsing and
// validation belong to the words package.
package assets

import (
	"embed"
	"io"
)

// DefaultVocabulary is the embedded file name of the default word list.
const DefaultVocabulary = "words.txt"

//go:embed words.txt
var FS embed.FS

// OpenDefault opens the embedded default word list.
func OpenDefault() (io.ReadCloser, error) {
	return FS.Open(DefaultVocabulary)
}
