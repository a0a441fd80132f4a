package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/journal/internal/journal"
	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/tui"
	"github.com/idilsaglam/journal/internal/ui"
)

type addOptions struct {
	date     string
	at       string
	minutes  int
	location string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &addOptions{}
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add an event; refused when it overlaps another on the same day",
		Example: `  journal add Dentist --at 14:00 --for 45 --where "Main St"
  journal add Standup --date tomorrow --at 09:30 --for 15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, rootOpts, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVarP(&opts.date, "date", "d", "today", "day of the event: today, tomorrow or YYYY-MM-DD")
	cmd.Flags().StringVarP(&opts.at, "at", "t", "", "start time, HH:MM (24h)")
	cmd.Flags().IntVarP(&opts.minutes, "for", "f", 0, "duration in minutes (default from config)")
	cmd.Flags().StringVarP(&opts.location, "where", "w", "", "location")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func runAdd(cmd *cobra.Command, rootOpts *RootOptions, opts *addOptions, title string) error {
	a, err := openApp(cmd, rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	day, err := parseDay(opts.date, a.svc.Now())
	if err != nil {
		return WrapExitError(ExitUsage, "add", err)
	}
	start, err := model.ParseClock(opts.at)
	if err != nil {
		return WrapExitError(ExitUsage, "add", err)
	}
	minutes := opts.minutes
	if minutes == 0 {
		minutes = a.cfg.DefaultDuration
	}

	ev, err := a.svc.Add(cmd.Context(), model.Event{
		Title:     title,
		Date:      day,
		StartTime: model.FormatClock(start),
		Duration:  minutes,
		Location:  opts.location,
	})
	if err != nil {
		if ce, ok := journal.IsConflict(err); ok {
			return WrapExitError(ExitFailure, "not added", ce)
		}
		return fail("add", err)
	}
	return a.out.OK(viewOf(ev, a.svc.Now()), "added "+describe(ev))
}

// NewListCommand creates the ls command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var plain bool
	var section string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show the agenda (interactive on a terminal)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts, plain, section)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the agenda instead of opening the interactive view")
	cmd.Flags().StringVar(&section, "section", "", "only one of today, tomorrow, later, past")
	return cmd
}

func runList(cmd *cobra.Command, rootOpts *RootOptions, plain bool, section string) error {
	a, err := openApp(cmd, rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	if !plain && section == "" && rootOpts.Format == "text" && isTerminal(cmd.OutOrStdout()) {
		if err := tui.Run(cmd.Context(), a.svc, tui.Options{DefaultDuration: a.cfg.DefaultDuration}); err != nil {
			return WrapExitError(ExitFailure, "interactive view", err)
		}
		return nil
	}

	events, err := a.svc.Events(cmd.Context())
	if err != nil {
		return fail("ls", err)
	}
	now := a.svc.Now()
	agenda := schedule.Partition(events, now)
	sections := schedule.Sections
	if section != "" {
		sec, ok := schedule.ParseSection(section)
		if !ok {
			return NewExitError(ExitUsage, fmt.Sprintf("unknown section %q", section))
		}
		sections = []schedule.Section{sec}
	}

	l := newListing(events, now)
	var shown []eventView
	for _, sec := range sections {
		for _, ev := range agenda.Get(sec) {
			shown = append(shown, l.view(ev))
		}
	}
	return a.out.Success(shown, func(w io.Writer) {
		printAgenda(w, events, agenda, sections, l)
	})
}

func printAgenda(w io.Writer, events []model.Event, agenda schedule.Agenda, sections []schedule.Section, l listing) {
	t := ui.Current()
	sum := journal.Summarize(events, l.now)

	lines := []string{
		fmt.Sprintf("%s  %s %d  %s %d  %s %d",
			t.Title.Render("Journal"),
			t.Success.Render(t.SymDone), sum.Completed,
			t.Pending.Render(t.SymPending), sum.Total-sum.Completed,
			t.Accent.Render("Total"), sum.Total),
		t.Muted.Render(ui.ProgressBar(sum.Completed, sum.Total, 28)),
	}
	if sum.Upcoming != nil {
		lines = append(lines, t.Accent.Render("Next:")+" "+describe(*sum.Upcoming))
	}
	if sum.Conflicts > 0 {
		lines = append(lines, t.Pending.Render(fmt.Sprintf("%s %d conflicting pair(s)", t.SymWarn, sum.Conflicts)))
	}

	if len(events) == 0 {
		lines = append(lines, "", t.Muted.Render("No events yet."))
	}
	for _, sec := range sections {
		evs := agenda.Get(sec)
		if len(evs) == 0 {
			continue
		}
		lines = append(lines, "", t.Title.Render(fmt.Sprintf("%s (%d)", sec, len(evs))))
		withDate := sec == schedule.Later || sec == schedule.Past
		for _, ev := range evs {
			lines = append(lines, l.row(ev, withDate))
		}
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `journal add Dentist --at 14:00`"))
	ui.Panel(w, lines)
}

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index|id>",
		Short: "Toggle completed for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := a.lookup(cmd, args[0])
			if err != nil {
				return err
			}
			ev, err := a.svc.ToggleCompleted(cmd.Context(), target.ID)
			if err != nil {
				return fail("done", err)
			}
			msg := "marked pending: "
			if ev.Completed {
				msg = "marked done: "
			}
			return a.out.OK(viewOf(ev, a.svc.Now()), msg+ev.Title)
		},
	}
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index|id>",
		Short: "Remove an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := a.lookup(cmd, args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Delete(cmd.Context(), target.ID); err != nil {
				return fail("rm", err)
			}
			return a.out.OK(viewOf(target, a.svc.Now()), "removed "+target.Title)
		},
	}
}

// NewRescheduleCommand creates the reschedule command.
func NewRescheduleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule <index|id>",
		Short: "Move an event to tomorrow at the same time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			target, err := a.lookup(cmd, args[0])
			if err != nil {
				return err
			}
			moved, err := a.svc.Reschedule(cmd.Context(), target.ID)
			if err != nil {
				if ce, ok := journal.IsConflict(err); ok {
					return WrapExitError(ExitFailure, "not moved", ce)
				}
				return fail("reschedule", err)
			}
			return a.out.OK(viewOf(moved, a.svc.Now()), "moved to "+describe(moved))
		},
	}
}

// NewNextCommand creates the next command.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next pending event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.svc.Events(cmd.Context())
			if err != nil {
				return fail("next", err)
			}
			now := a.svc.Now()
			ev, ok := schedule.FindUpcoming(events, now)
			if !ok {
				return a.out.Success(nil, func(w io.Writer) {
					fmt.Fprintln(w, ui.Current().Muted.Render("Nothing upcoming"))
				})
			}
			return a.out.Success(newListing(events, now).view(ev), func(w io.Writer) {
				in := ev.Start().Sub(now).Round(time.Minute)
				fmt.Fprintf(w, "%s %s %s\n", ui.Current().Accent.Render("Next:"), describe(ev),
					ui.Current().Muted.Render("(in "+in.String()+")"))
			})
		},
	}
}

// NewConflictsCommand creates the conflicts command.
func NewConflictsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "List every pair of overlapping events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.svc.Events(cmd.Context())
			if err != nil {
				return fail("conflicts", err)
			}
			l := newListing(events, a.svc.Now())
			pairs := schedule.ConflictPairs(events)
			views := make([][2]eventView, 0, len(pairs))
			for _, p := range pairs {
				views = append(views, [2]eventView{l.view(p.A), l.view(p.B)})
			}
			data := map[string]any{"count": len(pairs), "pairs": views}
			return a.out.Success(data, func(w io.Writer) {
				t := ui.Current()
				if len(pairs) == 0 {
					fmt.Fprintln(w, t.Success.Render(t.SymDone+" no conflicts"))
					return
				}
				for _, p := range pairs {
					fmt.Fprintf(w, "%s %s\n  overlaps %s\n", t.Pending.Render(t.SymWarn), describe(p.A), describe(p.B))
				}
				fmt.Fprintf(w, "%d conflicting pair(s)\n", len(pairs))
			})
		},
	}
}

func (a *app) lookup(cmd *cobra.Command, ref string) (model.Event, error) {
	events, err := a.svc.Events(cmd.Context())
	if err != nil {
		return model.Event{}, fail("load", err)
	}
	return resolve(events, ref)
}
