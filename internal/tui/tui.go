// Package tui is the interactive agenda: one tab per day section, a header
// with the next event and the conflict count, and an inline add form.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/journal/internal/journal"
	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/ui"
)

// Journal is the part of the journal service the agenda drives.
type Journal interface {
	Now() time.Time
	Events(ctx context.Context) ([]model.Event, error)
	Add(ctx context.Context, draft model.Event) (model.Event, error)
	ToggleCompleted(ctx context.Context, id string) (model.Event, error)
	Delete(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id string) (model.Event, error)
}

type Options struct {
	DefaultDuration int
}

type (
	loadedMsg  struct{ events []model.Event }
	changedMsg struct{ note string }
	addedMsg   struct{ ev model.Event }
	errMsg     struct{ err error }
	formErrMsg struct{ err error }
)

// headerLines is the height of everything above the list.
const headerLines = 5

type Model struct {
	ctx  context.Context
	j    Journal
	opts Options

	events    []model.Event
	agenda    schedule.Agenda
	upcoming  *model.Event
	conflicts int
	tab       schedule.Section

	list   list.Model
	form   *addForm
	status string
	failed bool

	width, height int
}

var (
	addKey        = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleKey     = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done"))
	deleteKey     = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	rescheduleKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "move to tomorrow"))
	tabKey        = key.NewBinding(key.WithKeys("tab", "right", "shift+tab", "left"), key.WithHelp("tab/←/→", "switch day"))
)

func New(ctx context.Context, j Journal, opts Options) Model {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = 60
	}
	l := list.New(nil, rowDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.FilterInput.Prompt = "/ "
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.SetStatusBarItemName("event", "events")
	extra := func() []key.Binding { return []key.Binding{addKey, toggleKey, deleteKey, rescheduleKey, tabKey} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	m := Model{ctx: ctx, j: j, opts: opts, list: l, width: 80, height: 24}
	m.resize()
	return m
}

// Run starts the agenda full screen and blocks until the user quits.
func Run(ctx context.Context, j Journal, opts Options) error {
	_, err := tea.NewProgram(New(ctx, j, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd { return m.load }

func (m Model) load() tea.Msg {
	events, err := m.j.Events(m.ctx)
	if err != nil {
		return errMsg{fmt.Errorf("load: %w", err)}
	}
	return loadedMsg{events}
}

// do runs a write and reports the outcome as a message.
func (m Model) do(note string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(m.ctx); err != nil {
			return errMsg{err}
		}
		return changedMsg{note}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		m.events = msg.events
		m.refresh()
		return m, nil

	case changedMsg:
		m.status, m.failed = msg.note, false
		return m, m.load

	case errMsg:
		m.status, m.failed = msg.err.Error(), true
		return m, nil

	case formErrMsg:
		if m.form != nil {
			m.form.err = msg.err.Error()
		}
		return m, nil

	case addedMsg:
		cmd := m.onAdded(msg.ev)
		return m, cmd
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch km.String() {
		case "q", "esc", "ctrl+c":
			if m.list.FilterState() == list.FilterApplied && km.String() == "esc" {
				break
			}
			return m, tea.Quit
		case "tab", "right":
			m.switchTab(1)
			return m, nil
		case "shift+tab", "left":
			m.switchTab(-1)
			return m, nil
		case " ":
			if r, ok := m.selected(); ok {
				id := r.ev.ID
				return m, m.do("toggled "+r.ev.Title, func(ctx context.Context) error {
					_, err := m.j.ToggleCompleted(ctx, id)
					return err
				})
			}
			return m, nil
		case "d":
			if r, ok := m.selected(); ok {
				id := r.ev.ID
				return m, m.do("deleted "+r.ev.Title, func(ctx context.Context) error {
					return m.j.Delete(ctx, id)
				})
			}
			return m, nil
		case "r":
			r, ok := m.selected()
			if !ok {
				return m, nil
			}
			if !r.overdue {
				m.status, m.failed = "only overdue events can be moved to tomorrow", true
				return m, nil
			}
			id := r.ev.ID
			return m, m.do("moved "+r.ev.Title+" to tomorrow", func(ctx context.Context) error {
				_, err := m.j.Reschedule(ctx, id)
				return err
			})
		case "a":
			m.form = newAddForm(m.tabDay(), m.opts.DefaultDuration)
			m.status = ""
			m.resize()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.form = nil
			m.resize()
			return m, nil
		case "tab", "down":
			m.form.move(1)
			return m, nil
		case "shift+tab", "up":
			m.form.move(-1)
			return m, nil
		case "enter":
			draft, err := m.form.draft(m.j.Now().Location())
			if err != nil {
				m.form.err = err.Error()
				return m, nil
			}
			m.form.err = ""
			return m, m.submit(draft)
		}
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

// submit keeps the form open when the service refuses the event so the
// conflict can be fixed in place.
func (m Model) submit(draft model.Event) tea.Cmd {
	return func() tea.Msg {
		ev, err := m.j.Add(m.ctx, draft)
		if err != nil {
			return formErrMsg{err}
		}
		return addedMsg{ev}
	}
}

func (m *Model) onAdded(ev model.Event) tea.Cmd {
	m.form = nil
	m.resize()
	m.status, m.failed = fmt.Sprintf("added %s on %s at %s", ev.Title, ev.DateString(), ev.StartTime), false
	return m.load
}

func (m *Model) switchTab(delta int) {
	n := len(schedule.Sections)
	m.tab = schedule.Section((int(m.tab) + delta + n) % n)
	m.fillList()
}

// tabDay is the date the add form starts with.
func (m Model) tabDay() time.Time {
	today := model.DayOf(m.j.Now())
	if m.tab == schedule.Tomorrow {
		return today.AddDate(0, 0, 1)
	}
	return today
}

func (m Model) selected() (row, bool) {
	r, ok := m.list.SelectedItem().(row)
	return r, ok
}

func (m *Model) refresh() {
	now := m.j.Now()
	m.agenda = schedule.Partition(m.events, now)
	m.conflicts = schedule.CountConflicts(m.events)
	m.upcoming = nil
	if ev, ok := schedule.FindUpcoming(m.events, now); ok {
		m.upcoming = &ev
	}
	m.fillList()
}

func (m *Model) fillList() {
	now := m.j.Now()
	conflicting := make(map[string]bool)
	for _, p := range schedule.ConflictPairs(m.events) {
		conflicting[p.A.ID] = true
		conflicting[p.B.ID] = true
	}
	events := m.agenda.Get(m.tab)
	items := make([]list.Item, 0, len(events))
	for _, ev := range events {
		items = append(items, row{
			ev:       ev,
			showDate: m.tab == schedule.Later || m.tab == schedule.Past,
			overdue:  schedule.IsOverdue(ev, now),
			upcoming: m.upcoming != nil && m.upcoming.ID == ev.ID,
			conflict: conflicting[ev.ID],
		})
	}
	m.list.SetItems(items)
}

func (m *Model) resize() {
	h := m.height - headerLines - 3
	if m.form != nil {
		h -= fieldCount + 2
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder

	b.WriteString(t.Title.Render("Journal") + "  " + t.Muted.Render(m.j.Now().Format("Mon 2 Jan 2006 15:04")) + "\n")
	if m.upcoming != nil {
		b.WriteString(fmt.Sprintf("%s %s %s %s\n", t.Accent.Render("Next:"),
			m.upcoming.DateString(), m.upcoming.StartTime, t.Highlight.Render(m.upcoming.Title)))
	} else {
		b.WriteString(t.Muted.Render("Nothing upcoming") + "\n")
	}
	if m.conflicts > 0 {
		b.WriteString(t.Pending.Render(fmt.Sprintf("%s %d conflicting pair(s)", t.SymWarn, m.conflicts)) + "\n")
	} else {
		b.WriteString(t.Success.Render(t.SymDone+" no conflicts") + "\n")
	}
	sum := journal.Summarize(m.events, m.j.Now())
	b.WriteString(t.Muted.Render(ui.ProgressBar(sum.Completed, sum.Total, 28)) + "\n")
	b.WriteString(m.tabsView() + "\n\n")

	if len(m.agenda.Get(m.tab)) == 0 && m.form == nil {
		b.WriteString(t.Muted.Render("  no events") + "\n\n")
	}
	b.WriteString(m.list.View())

	if m.form != nil {
		title := "New event"
		if m.form.err != "" {
			title += "  " + t.Error.Render(m.form.err)
		}
		b.WriteString("\n" + ui.Box(title+"\n"+m.form.view()))
	}
	if m.status != "" {
		style := t.Muted
		if m.failed {
			style = t.Error
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	return ui.Box(b.String())
}

func (m Model) tabsView() string {
	t := ui.Current()
	tabs := make([]string, 0, len(schedule.Sections))
	for _, s := range schedule.Sections {
		label := fmt.Sprintf(" %s (%d) ", s, len(m.agenda.Get(s)))
		if s == m.tab {
			tabs = append(tabs, t.Selected.Render(label))
		} else {
			tabs = append(tabs, t.Muted.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}
