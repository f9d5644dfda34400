package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/robalobadob/wordle-solver/internal/feedback"
	"github.com/robalobadob/wordle-solver/internal/solver"
	"github.com/robalobadob/wordle-solver/internal/words"
)

// loadVocabulary reads path, or the embedded list when path is empty.
func loadVocabulary(path string) (*words.Vocabulary, error) {
	var (
		v     *words.Vocabulary
		stats words.LoadStats
		err   error
	)
	if path == "" {
		v, stats, err = words.Default()
	} else {
		v, stats, err = words.Load(path)
	}
	if err != nil {
		return nil, err
	}

	ev := log.Info().Int("words", stats.Accepted).Int("duplicates", stats.Duplicates).Int("rejected", len(stats.Rejected))
	if path != "" {
		ev = ev.Str("file", path)
	}
	ev.Str("fingerprint", v.Fingerprint()[:12]).Msg("vocabulary loaded")
	if len(stats.Rejected) > 0 {
		log.Debug().Strs("lines", stats.Rejected).Msg("rejected vocabulary lines")
	}
	return v, nil
}

// buildTable scores every pair of vocab using the configured workers.
func buildTable(ctx context.Context, vocab *words.Vocabulary) (*feedback.Table, error) {
	p := &progressReporter{}
	return feedback.Build(ctx, vocab,
		feedback.WithWorkers(cfg.Workers),
		feedback.WithLogger(log.Logger),
		feedback.WithProgress(p.report),
	)
}

// optimizerOptions are shared by every solver the CLI creates.
func optimizerOptions() []solver.Option {
	p := &progressReporter{}
	return []solver.Option{
		solver.WithWorkers(cfg.Workers),
		solver.WithLogger(log.Logger),
		solver.WithBuildProgress(p.report),
	}
}

// progressReporter draws a progress bar on stderr for each table build.
type progressReporter struct {
	bar *progressbar.ProgressBar
}

func (p *progressReporter) report(done, total int) {
	if quiet {
		return
	}
	if done == 1 || p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("scoring words"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
	if done == total {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
