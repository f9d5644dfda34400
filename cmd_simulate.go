package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle-solver/internal/daily"
	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/game"
	"github.com/robalobadob/wordle-solver/internal/solver"
	"github.com/robalobadob/wordle-solver/internal/words"
)

var (
	simTarget string
	simDate   string
	simOpener string
	simAll    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Let the solver play against a known target",
	Long: `simulate plays a full game with the solver always taking its top
suggestion. Without --target the word of the day is used (see --date).
With --all every word of the list is played and a histogram is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		vocab, err := loadVocabulary(cfg.WordsFile)
		if err != nil {
			return err
		}
		table, err := buildTable(ctx, vocab)
		if err != nil {
			return err
		}

		var opener words.Word
		if simOpener != "" {
			if opener, err = vocab.ParseWord(simOpener); err != nil {
				return fmt.Errorf("opener: %w", err)
			}
		} else if opener, err = bestOpener(table); err != nil {
			return err
		}

		if simAll {
			return simulateAll(ctx, cmd.OutOrStdout(), table, opener)
		}

		target, err := pickTarget(vocab)
		if err != nil {
			return err
		}
		turns, won, err := solveOne(table, target, opener, cfg.MaxRows)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, t := range turns {
			fmt.Fprintln(out, renderRow(t.Guess, t.Pattern))
		}
		if won {
			fmt.Fprintln(out, headStyle.Render(fmt.Sprintf("solved %s in %d", target, len(turns))))
		} else {
			fmt.Fprintln(out, headStyle.Render(fmt.Sprintf("failed to find %s in %d rows", target, cfg.MaxRows)))
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&simTarget, "target", "t", "", "target word (default: word of the day)")
	simulateCmd.Flags().StringVar(&simDate, "date", "", "date for the word of the day, YYYY-MM-DD (default: today, UTC)")
	simulateCmd.Flags().StringVar(&simOpener, "opener", "", "fixed first guess (default: best ranked word)")
	simulateCmd.Flags().BoolVar(&simAll, "all", false, "play every word of the list and print a histogram")
}

func pickTarget(vocab *words.Vocabulary) (words.Word, error) {
	if simTarget != "" {
		w, err := vocab.ParseWord(simTarget)
		if err != nil {
			return words.Word{}, fmt.Errorf("target: %w", err)
		}
		return w, nil
	}
	day := time.Now()
	if simDate != "" {
		d, err := time.Parse("2006-01-02", simDate)
		if err != nil {
			return words.Word{}, fmt.Errorf("date: %w", err)
		}
		day = d
	}
	w := daily.Target(day, cfg.DailySalt, vocab)
	log.Info().Str("date", daily.DateKey(day)).Msg("using word of the day")
	return w, nil
}

// bestOpener is the top-ranked first guess, shared by every simulated game.
func bestOpener(table *feedback.Table) (words.Word, error) {
	opt, err := solver.FromTable(table, solver.WithWorkers(cfg.Workers))
	if err != nil {
		return words.Word{}, err
	}
	ranked := opt.Rank()
	if len(ranked) == 0 {
		return table.Vocabulary().At(0), nil
	}
	return ranked[0].Word, nil
}

// solveOne plays target with opener as first guess and the top suggestion
// afterwards. It returns the scored turns and whether the game was won.
func solveOne(table *feedback.Table, target, opener words.Word, rows int) ([]game.Turn, bool, error) {
	g, err := game.New(table, target, rows)
	if err != nil {
		return nil, false, err
	}
	opt, err := solver.FromTable(table, solver.WithWorkers(1))
	if err != nil {
		return nil, false, err
	}

	guess := opener
	for {
		p, state, err := g.ApplyGuess(guess)
		if err != nil {
			return nil, false, err
		}
		if _, err := opt.Eliminate(guess, p); err != nil {
			return nil, false, err
		}
		if state != game.StatePlaying {
			return g.Turns, state == game.StateWon, nil
		}
		guess = nextGuess(opt)
	}
}

// nextGuess takes the last candidate when one is left, otherwise the top
// ranked word.
func nextGuess(opt *solver.Optimizer) words.Word {
	if opt.Remaining() == 1 {
		return opt.PossibleSolutions()[0]
	}
	return opt.Rank()[0].Word
}

// simulateAll plays every vocabulary word as target and prints the
// distribution of rows used.
func simulateAll(ctx context.Context, out io.Writer, table *feedback.Table, opener words.Word) error {
	vocab := table.Vocabulary()
	n := vocab.Len()

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("simulating"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var (
		mu     sync.Mutex
		hist   = make([]int, cfg.MaxRows+1) // index 0 counts failures
		failed []words.Word
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			target := vocab.At(i)
			turns, won, err := solveOne(table, target, opener, cfg.MaxRows)
			if err != nil {
				return fmt.Errorf("simulate %s: %w", target, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if won {
				hist[len(turns)]++
			} else {
				hist[0]++
				failed = append(failed, target)
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintln(out, headStyle.Render(fmt.Sprintf("%d games, opener %s", n, opener)))
	total := 0
	for rows := 1; rows <= cfg.MaxRows; rows++ {
		total += rows * hist[rows]
		fmt.Fprintf(out, "%d: %5d\n", rows, hist[rows])
	}
	fmt.Fprintf(out, "x: %5d\n", hist[0])
	if won := n - hist[0]; won > 0 {
		fmt.Fprintf(out, "average rows when solved: %.3f\n", float64(total)/float64(won))
	}
	if len(failed) > 0 {
		slices.SortFunc(failed, words.Compare)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprint("failed: ", failed)))
	}
	return nil
}
