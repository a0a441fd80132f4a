package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/remind"
	"github.com/idilsaglam/journal/internal/server"
	"github.com/idilsaglam/journal/internal/ui"
)

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, zerolog.InfoLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := a.cfg.Listen
			if listen != "" {
				addr = listen
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			if err := server.New(addr, a.svc, a.log).Run(ctx); err != nil {
				return WrapExitError(ExitFailure, "serve", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config)")
	return cmd
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var lead int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Announce events shortly before they start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, zerolog.InfoLevel)
			if err != nil {
				return err
			}
			defer a.Close()

			if lead <= 0 {
				lead = a.cfg.Reminder.LeadMinutes
			}
			out := cmd.OutOrStdout()
			w := remind.NewWatcher(a.svc, time.Duration(lead)*time.Minute, func(ev model.Event, in time.Duration) {
				ui.Warn(out, fmt.Sprintf("in %s: %s", in.Round(time.Minute), describe(ev)))
			}, a.log)

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			if err := w.Run(ctx, a.cfg.Reminder.Schedule); err != nil {
				return WrapExitError(ExitUsage, "watch", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&lead, "lead", 0, "minutes ahead to announce (default from config)")
	return cmd
}
