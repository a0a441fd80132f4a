package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/journal/internal/ical"
	"github.com/idilsaglam/journal/internal/journal"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/store"
	"github.com/idilsaglam/journal/internal/ui"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all events as an iCalendar (.ics) file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.svc.Events(cmd.Context())
			if err != nil {
				return fail("export", err)
			}
			body := ical.Export(schedule.SortByStart(events), a.svc.Now())
			if output == "" || output == "-" {
				_, err := io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			if err := os.WriteFile(output, []byte(body), 0o600); err != nil {
				return WrapExitError(ExitFailure, "export", err)
			}
			ui.OK(cmd.ErrOrStderr(), fmt.Sprintf("exported %d event(s) to %s", len(events), output))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

type importReport struct {
	Added   []eventView  `json:"added"`
	Refused []importSkip `json:"refused"`
	Skipped []ical.Skip  `json:"skipped"`
}

type importSkip struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Add the timed events of an iCalendar file",
		Long: `Add the events of an iCalendar file. All-day, multi-day and recurring
entries are skipped. Entries that overlap an existing event, or that were
imported before, are refused like any other add.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitUsage, "import", err)
			}
			defer f.Close()

			res, err := ical.Import(f, a.svc.Now().Location())
			if err != nil {
				return WrapExitError(ExitUsage, "import", err)
			}

			var rep importReport
			rep.Skipped = res.Skipped
			now := a.svc.Now()
			for _, draft := range res.Events {
				ev, err := a.svc.Add(cmd.Context(), draft)
				if err != nil {
					reason := err.Error()
					if errors.Is(err, store.ErrDuplicateID) {
						reason = "already imported"
					} else if ce, ok := journal.IsConflict(err); ok {
						reason = ce.Error()
					}
					rep.Refused = append(rep.Refused, importSkip{Title: draft.Title, Reason: reason})
					continue
				}
				if draft.Completed {
					if ev, err = a.svc.ToggleCompleted(cmd.Context(), ev.ID); err != nil {
						return fail("import", err)
					}
				}
				rep.Added = append(rep.Added, viewOf(ev, now))
			}

			if err := a.out.Success(rep, func(w io.Writer) { printImport(w, rep) }); err != nil {
				return err
			}
			if len(rep.Added) == 0 && len(res.Events)+len(res.Skipped) > 0 {
				return WrapExitError(ExitFailure, "import", ical.ErrEmpty)
			}
			return nil
		},
	}
}

func printImport(w io.Writer, rep importReport) {
	for _, s := range rep.Skipped {
		ui.Warn(w, fmt.Sprintf("skipped %s: %s", s.Title, s.Reason))
	}
	for _, s := range rep.Refused {
		ui.Warn(w, fmt.Sprintf("refused %s: %s", s.Title, s.Reason))
	}
	ui.OK(w, fmt.Sprintf("imported %d event(s)", len(rep.Added)))
}
