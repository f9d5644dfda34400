package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/solver"
	"github.com/robalobadob/wordle-solver/internal/store"
	"github.com/robalobadob/wordle-solver/internal/words"
)

var playSuggestions int

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Solve a game interactively, entering the feedback you get",
	Long: `play suggests guesses and narrows the solutions as you type the feedback
of each row, e.g. "crane --^-^".

Commands:
  <guess> <pattern>   record a row
  words               list the possible solutions
  reset               start a new game
  load <file>         switch to another word list
  quit                leave`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vocab, err := loadVocabulary(cfg.WordsFile)
		if err != nil {
			return err
		}
		opt, err := solver.New(cmd.Context(), vocab, optimizerOptions()...)
		if err != nil {
			return err
		}
		sess := store.NewSession("local", opt, cfg.MaxRows)
		return playLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), sess)
	},
}

func init() {
	playCmd.Flags().IntVarP(&playSuggestions, "suggestions", "n", 5, "suggestions shown per row")
}

// playLoop reads commands from in until quit or EOF.
func playLoop(ctx context.Context, in io.Reader, out io.Writer, sess *store.Session) error {
	sc := bufio.NewScanner(in)
	showState(out, sess)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "quit", "exit", "q":
			return nil
		case "reset", "new":
			sess.Reset()
			fmt.Fprintln(out, headStyle.Render("new game"))
			showState(out, sess)
		case "words":
			listSolutions(out, sess)
		case "load":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: load <file>")
				continue
			}
			v, err := loadVocabulary(fields[1])
			if err != nil {
				fmt.Fprintf(out, "load failed: %v\n", err)
				continue
			}
			if err := sess.ReplaceVocabulary(ctx, v); err != nil {
				fmt.Fprintf(out, "load failed: %v\n", err)
				continue
			}
			fmt.Fprintln(out, headStyle.Render(fmt.Sprintf("loaded %d words", v.Len())))
			showState(out, sess)
		default:
			if len(fields) != 2 {
				fmt.Fprintln(out, "enter a guess and its pattern, e.g. crane --^-^")
				continue
			}
			if err := playRow(out, sess, fields[0], fields[1]); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			showState(out, sess)
		}
	}
}

// playRow records one row of feedback.
func playRow(out io.Writer, sess *store.Session, rawGuess, rawPattern string) error {
	var vocab *words.Vocabulary
	_ = sess.Do(func(opt *solver.Optimizer, _ []store.Observation) error {
		vocab = opt.Vocabulary()
		return nil
	})
	guess, err := vocab.ParseWord(rawGuess)
	if err != nil {
		return err
	}
	p, err := feedback.ParsePattern(rawPattern)
	if err != nil {
		return err
	}
	obs, err := sess.Observe(guess, p)
	switch {
	case errors.Is(err, feedback.ErrNotInVocabulary):
		return fmt.Errorf("%s is not in the word list", guess)
	case errors.Is(err, store.ErrRowsExhausted):
		return errors.New("no rows left; type reset for a new game")
	case errors.Is(err, store.ErrFinished):
		return errors.New("the game is over; type reset for a new game")
	case err != nil:
		return err
	}
	fmt.Fprintln(out, renderRow(obs.Guess, obs.Pattern))
	return nil
}

// showState prints the outcome or the next suggestions.
func showState(out io.Writer, sess *store.Session) {
	finished := sess.Finished()
	_ = sess.Do(func(opt *solver.Optimizer, rows []store.Observation) error {
		if n := len(rows); n > 0 && rows[n-1].Pattern == feedback.AllCorrect {
			fmt.Fprintln(out, headStyle.Render(fmt.Sprintf("solved in %d", n)))
			return nil
		}
		if finished && opt.Remaining() > 0 {
			fmt.Fprintln(out, "out of rows; type reset for a new game")
			return nil
		}
		printRanking(out, opt, playSuggestions, 10)
		return nil
	})
}

func listSolutions(out io.Writer, sess *store.Session) {
	_ = sess.Do(func(opt *solver.Optimizer, _ []store.Observation) error {
		sols := opt.PossibleSolutions()
		slices.SortFunc(sols, words.Compare)
		for _, s := range sols {
			fmt.Fprintln(out, s)
		}
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d words", len(sols))))
		return nil
	})
}
