package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-solver/internal/history"
	"github.com/robalobadob/wordle-solver/internal/httpserver"
	"github.com/robalobadob/wordle-solver/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		vocab, err := loadVocabulary(cfg.WordsFile)
		if err != nil {
			return err
		}
		table, err := buildTable(ctx, vocab)
		if err != nil {
			return err
		}

		var hist *history.Store
		if cfg.DBPath != "" {
			if hist, err = history.Open(cfg.DBPath); err != nil {
				return err
			}
			defer hist.Close()
			log.Info().Str("db", cfg.DBPath).Msg("session history enabled")
		}

		srv := httpserver.New(store.NewMemoryStore(), table, hist, httpserver.Options{
			Secret:        []byte(cfg.JWTSecret),
			TokenTTL:      cfg.TokenTTL,
			MaxRows:       cfg.MaxRows,
			MaxVocabulary: cfg.MaxVocabulary,
			Workers:       cfg.Workers,
			ClientOrigin:  cfg.ClientOrigin,
		})
		log.Info().Str("port", cfg.Port).Int("words", vocab.Len()).Msg("starting wordle-solver")
		if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
			log.Error().Err(err).Msg("server exited")
			return err
		}
		log.Info().Msg("server stopped")
		return nil
	},
}
