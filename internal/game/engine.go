// internal/game/engine.go
//
// Referee for a single game: holds the hidden answer and scores guesses
// against it. The solver never sees the answer; simulations feed the
// referee's patterns back into the solver the way a player would.
//
// Notes:
//   - Guesses must belong to the vocabulary the feedback table was built from,
//     so the referee and the solver always agree on patterns.
//   - DefaultRows matches the six-row grid of the real game.
package game

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/words"
)

// DefaultRows is the number of guesses a player gets.
const DefaultRows = 6

// ErrFinished is returned when guessing after the game ended.
var ErrFinished = errors.New("game finished")

// New starts a game whose answer must be in table's vocabulary.
// rows < 1 selects DefaultRows.
func New(table *feedback.Table, answer words.Word, rows int) (*Game, error) {
	if !table.Vocabulary().Contains(answer) {
		return nil, &feedback.LookupError{Word: answer, Role: "target"}
	}
	if rows < 1 {
		rows = DefaultRows
	}
	return &Game{
		ID:     uuid.NewString(),
		Answer: answer,
		Rows:   rows,
		table:  table,
	}, nil
}

// ApplyGuess scores guess against the answer and advances the game.
//
// State transitions:
//   - If the pattern is all Correct → Finished = true, Won = true.
//   - Else if the number of guesses reaches g.Rows → Finished = true (loss).
func (g *Game) ApplyGuess(guess words.Word) (feedback.Pattern, State, error) {
	if g.Finished {
		return 0, g.State(), ErrFinished
	}
	p, err := g.table.Lookup(guess, g.Answer)
	if err != nil {
		return 0, g.State(), fmt.Errorf("apply guess: %w", err)
	}
	g.Turns = append(g.Turns, Turn{Guess: guess, Pattern: p})

	if p == feedback.AllCorrect {
		g.Finished, g.Won = true, true
	} else if len(g.Turns) >= g.Rows {
		g.Finished = true
	}
	return p, g.State(), nil
}

// State reports the coarse game state.
func (g *Game) State() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}
