package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/journal/internal/auth"
	"github.com/idilsaglam/journal/internal/config"
	"github.com/idilsaglam/journal/internal/journal"
	"github.com/idilsaglam/journal/internal/logging"
	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/store"
	"github.com/idilsaglam/journal/internal/store/jsonstore"
	"github.com/idilsaglam/journal/internal/store/sqlstore"
	"github.com/idilsaglam/journal/internal/ui"
)

// clock is pinned by tests.
var clock = time.Now

// app is everything a command needs, built from the config file.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store store.EventStore
	svc   *journal.Service
	out   *OutputFormatter
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, WrapExitError(ExitFailure, "config", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "config", err)
	}
	return cfg, nil
}

// openApp loads the config, then opens the configured store. minLevel
// raises the log level for long-running commands.
func openApp(cmd *cobra.Command, opts *RootOptions, minLevel ...zerolog.Level) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if len(minLevel) > 0 && log.GetLevel() > minLevel[0] {
		log = log.Level(minLevel[0])
	}
	if opts.Verbose {
		log = log.Level(zerolog.DebugLevel)
	}
	ui.SetTheme(cfg.Theme)

	st, err := openStore(cfg, log)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "open store", err)
	}
	log.Debug().Str("backend", cfg.Store.Backend).Msg("store opened")

	return &app{
		cfg:   cfg,
		log:   log,
		store: st,
		svc:   journal.New(st, log, journal.WithClock(clock)),
		out:   &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()},
	}, nil
}

func openStore(cfg *config.Config, log zerolog.Logger) (store.EventStore, error) {
	if cfg.Store.Backend == config.BackendSQLite {
		owner, err := auth.Owner()
		if err != nil {
			return nil, err
		}
		st, err := sqlstore.Open(cfg.Store.SQLitePath, owner, log)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	st, err := jsonstore.New(cfg.Store.JSONPath, log)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("close store")
	}
}

// fail turns a service error into an ExitError with the matching code.
func fail(msg string, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidEvent), errors.Is(err, store.ErrNotFound):
		return WrapExitError(ExitUsage, msg, err)
	}
	return WrapExitError(ExitFailure, msg, err)
}

// resolve finds the event a command argument names: a 1-based index into
// the listing order, or an id.
func resolve(events []model.Event, ref string) (model.Event, error) {
	sorted := schedule.SortByStart(events)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(sorted) {
			return model.Event{}, NewExitError(ExitUsage,
				fmt.Sprintf("index out of range: have %d, got %d (run `journal ls` to see valid indexes)", len(sorted), n))
		}
		return sorted[n-1], nil
	}
	for _, ev := range events {
		if ev.ID == ref {
			return ev, nil
		}
	}
	return model.Event{}, NewExitError(ExitUsage, fmt.Sprintf("no event with id %q", ref))
}

// parseDay accepts today, tomorrow or YYYY-MM-DD.
func parseDay(s string, now time.Time) (time.Time, error) {
	today := model.DayOf(now)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}
	return model.ParseDate(s, now.Location())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
