package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/ui"
)

// row adapts an event to bubbles/list.Item.
type row struct {
	ev       model.Event
	showDate bool
	overdue  bool
	upcoming bool
	conflict bool
}

func (r row) Title() string       { return r.ev.Title }
func (r row) Description() string { return r.ev.Location }
func (r row) FilterValue() string { return r.ev.Title + " " + r.ev.Location }

// when is the "HH:MM-HH:MM" span, prefixed with the day outside Today/Tomorrow.
func (r row) when() string {
	span := r.ev.StartTime + "-" + model.FormatClock(r.ev.EndMinutes())
	if r.showDate {
		return r.ev.DateString() + " " + span
	}
	return span
}

// Single-line delegate, same shape as the list rows of the CLI panel.
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	fmt.Fprintln(w, renderRow(r, index == m.Index()))
}

func renderRow(r row, selected bool) string {
	t := ui.Current()

	box := t.Muted.Render(t.BoxUnchecked)
	title := r.ev.Title
	if r.ev.Completed {
		box = t.Success.Render(t.BoxChecked)
		title = t.Done.Render(title)
	} else if r.upcoming {
		title = t.Highlight.Render(title)
	}

	parts := []string{box, t.Muted.Render(r.when()), title}
	if r.ev.Location != "" {
		parts = append(parts, t.Muted.Render("@ "+r.ev.Location))
	}
	switch {
	case r.upcoming:
		parts = append(parts, t.Accent.Render("next"))
	case r.overdue:
		parts = append(parts, t.Overdue.Render("overdue"))
	}
	if r.conflict {
		parts = append(parts, t.Pending.Render(t.SymWarn))
	}

	prefix := "  "
	if selected {
		prefix = t.Selected.Render("> ")
	}
	return prefix + strings.Join(parts, " ")
}
