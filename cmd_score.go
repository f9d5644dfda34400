package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/words"
)

var scoreCmd = &cobra.Command{
	Use:   "score GUESS TARGET",
	Short: "Print the feedback a guess gets against a target",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		guess, err := words.Parse(args[0])
		if err != nil {
			return fmt.Errorf("guess: %w", err)
		}
		target, err := words.Parse(args[1])
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderRow(guess, feedback.Score(guess, target)))
		return nil
	},
}
