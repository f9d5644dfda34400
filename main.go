package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-solver/internal/config"
)

var (
	configPath   string
	flagWords    string
	flagWorkers  int
	flagLogLevel string
	quiet        bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wordle-solver",
	Short: "Entropy-driven solver for five-letter word games",
	Long: `wordle-solver suggests the guess that is expected to reveal the most
information about the hidden word, and narrows the list of possible
solutions as feedback comes in.

Feedback patterns use one symbol per letter:
  *  correct letter, correct position
  ^  letter is in the word at another position
  -  letter is not in the word
Digits (2/1/0) and g/y/b are accepted as well.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("words") {
			c.WordsFile = flagWords
		}
		if cmd.Flags().Changed("workers") {
			c.Workers = flagWorkers
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = flagLogLevel
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = c
		setupLogging(c)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "wordle-solver.yaml", "YAML config file (optional)")
	rootCmd.PersistentFlags().StringVarP(&flagWords, "words", "w", "", "word list file, one word per line (default: embedded list)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "parallel workers for scoring and ranking")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "hide progress bars")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(scoreCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging configures the global zerolog logger from c.
func setupLogging(c *config.Config) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil && c.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.Pretty() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}
