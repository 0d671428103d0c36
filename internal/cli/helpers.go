package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rkharel/annoreport/internal/config"
	"github.com/rkharel/annoreport/internal/cvat"
	"github.com/rkharel/annoreport/internal/history"
	"github.com/rkharel/annoreport/internal/pipeline"
	"github.com/rkharel/annoreport/internal/report"
)

// newLogger builds the logger every component receives explicitly.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file named by the --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// historyDBPath places the run-history database next to the snapshots.
func historyDBPath(cfg *config.Config) string {
	return filepath.Join(cfg.ProjDir, "history.db")
}

// buildPipeline wires the standard collaborators. The history store is
// optional: if it cannot be opened the pipeline runs without recording.
func buildPipeline(log *slog.Logger, cfg *config.Config, withHistory bool) (*pipeline.Pipeline, *history.Store) {
	client := cvat.New(log, cfg.CVAT)
	mailer := report.NewMailer(log, cfg.Email)

	var hist *history.Store
	if withHistory {
		h, err := history.New(historyDBPath(cfg))
		if err != nil {
			log.Warn("run history disabled", "error", err)
		} else {
			hist = h
		}
	}

	return pipeline.New(log, cfg, client, mailer, hist), hist
}
