// internal/game/types.go
//
// Core type definitions for the referee.
// Defines:
//   - State: coarse game state (playing/won/lost).
//   - Game: a hidden answer plus the guesses made against it.

package game

import (
	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/words"
)

// State is the coarse state of a game.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Turn is one scored guess.
type Turn struct {
	Guess   words.Word
	Pattern feedback.Pattern
}

// Game holds the state of a single refereed game.
type Game struct {
	ID       string     // Unique game identifier.
	Answer   words.Word // The hidden solution.
	Rows     int        // Maximum number of guesses allowed (typically 6).
	Turns    []Turn     // Guesses made so far.
	Finished bool       // True once the game is over (won or lost).
	Won      bool       // True if the game was finished with a win.
	table    *feedback.Table
}
