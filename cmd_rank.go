package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/solver"
	"github.com/robalobadob/wordle-solver/internal/words"
)

var (
	rankObs       []string
	rankLimit     int
	rankSolutions int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank guesses after the given observations",
	Example: `  wordle-solver rank
  wordle-solver rank --obs crane=--^-^ --obs pious=-*---`,
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
		for _, o := range rankObs {
			guess, p, err := parseObservation(vocab, o)
			if err != nil {
				return err
			}
			if _, err := opt.Eliminate(guess, p); err != nil {
				return err
			}
		}
		printRanking(cmd.OutOrStdout(), opt, rankLimit, rankSolutions)
		return nil
	},
}

func init() {
	rankCmd.Flags().StringArrayVar(&rankObs, "obs", nil, "observation as guess=pattern (repeatable, in order)")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 10, "number of suggestions to print")
	rankCmd.Flags().IntVar(&rankSolutions, "solutions", 20, "print the possible solutions when at most this many remain")
}

// parseObservation splits "guess=pattern". The guess must be in vocab.
func parseObservation(vocab *words.Vocabulary, s string) (words.Word, feedback.Pattern, error) {
	g, p, ok := strings.Cut(s, "=")
	if !ok {
		return words.Word{}, 0, fmt.Errorf("observation %q: want guess=pattern", s)
	}
	guess, err := vocab.ParseWord(g)
	if err != nil {
		return words.Word{}, 0, fmt.Errorf("observation %q: %w", s, err)
	}
	if !vocab.Contains(guess) {
		return words.Word{}, 0, fmt.Errorf("observation %q: %w", s, &feedback.LookupError{Word: guess, Role: "guess"})
	}
	pattern, err := feedback.ParsePattern(p)
	if err != nil {
		return words.Word{}, 0, fmt.Errorf("observation %q: %w", s, err)
	}
	return guess, pattern, nil
}

// printRanking writes the top suggestions and, when few remain, the possible
// solutions.
func printRanking(w io.Writer, opt *solver.Optimizer, limit, showSolutions int) {
	remaining := opt.Remaining()
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%d possible solutions", remaining)))

	switch remaining {
	case 0:
		fmt.Fprintln(w, "no word fits the feedback; check the patterns")
		return
	case 1:
		fmt.Fprintf(w, "the answer is %s\n", opt.PossibleSolutions()[0])
		return
	}

	ranked := opt.Rank()
	for i, sg := range ranked[:min(limit, len(ranked))] {
		mark := ""
		if sg.Candidate {
			mark = " *"
		}
		fmt.Fprintf(w, "%3d. %s  %6.3f bits%s\n", i+1, sg.Word, sg.Bits, mark)
	}

	if remaining <= showSolutions {
		sols := opt.PossibleSolutions()
		slices.SortFunc(sols, words.Compare)
		names := make([]string, len(sols))
		for i, s := range sols {
			names[i] = s.String()
		}
		fmt.Fprintln(w, dimStyle.Render(strings.Join(names, " ")))
	}
}
