package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/ui"
)

// eventView is an event as printed by --format json.
type eventView struct {
	Index     int    `json:"index,omitempty"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  int    `json:"duration"`
	Location  string `json:"location,omitempty"`
	Completed bool   `json:"completed"`
	Overdue   bool   `json:"overdue"`
	Upcoming  bool   `json:"upcoming,omitempty"`
	Conflict  bool   `json:"conflict,omitempty"`
}

// listing annotates a snapshot once so every row can be rendered alone.
type listing struct {
	now         time.Time
	index       map[string]int
	upcoming    string
	conflicting map[string]bool
}

func newListing(events []model.Event, now time.Time) listing {
	l := listing{
		now:         now,
		index:       make(map[string]int, len(events)),
		conflicting: make(map[string]bool),
	}
	for i, ev := range schedule.SortByStart(events) {
		l.index[ev.ID] = i + 1
	}
	if up, ok := schedule.FindUpcoming(events, now); ok {
		l.upcoming = up.ID
	}
	for _, p := range schedule.ConflictPairs(events) {
		l.conflicting[p.A.ID] = true
		l.conflicting[p.B.ID] = true
	}
	return l
}

func (l listing) view(ev model.Event) eventView {
	return eventView{
		Index:     l.index[ev.ID],
		ID:        ev.ID,
		Title:     ev.Title,
		Date:      ev.DateString(),
		StartTime: ev.StartTime,
		EndTime:   model.FormatClock(ev.EndMinutes()),
		Duration:  ev.Duration,
		Location:  ev.Location,
		Completed: ev.Completed,
		Overdue:   schedule.IsOverdue(ev, l.now),
		Upcoming:  ev.ID == l.upcoming,
		Conflict:  l.conflicting[ev.ID],
	}
}

// viewOf renders a single event outside of a listing.
func viewOf(ev model.Event, now time.Time) eventView {
	return newListing(nil, now).view(ev)
}

// row renders one line of `journal ls`.
func (l listing) row(ev model.Event, withDate bool) string {
	t := ui.Current()
	v := l.view(ev)

	box := t.Muted.Render(t.BoxUnchecked)
	title := ev.Title
	if ev.Completed {
		box = t.Success.Render(t.BoxChecked)
		title = t.Done.Render(title)
	} else if v.Upcoming {
		title = t.Highlight.Render(title)
	}
	when := v.StartTime + "-" + v.EndTime
	if withDate {
		when = v.Date + " " + when
	}

	parts := []string{fmt.Sprintf("%2d.", v.Index), box, t.Muted.Render(when), title}
	if ev.Location != "" {
		parts = append(parts, t.Muted.Render("@ "+ev.Location))
	}
	switch {
	case v.Upcoming:
		parts = append(parts, t.Accent.Render("next"))
	case v.Overdue:
		parts = append(parts, t.Overdue.Render("overdue"))
	}
	if v.Conflict {
		parts = append(parts, t.Pending.Render(t.SymWarn))
	}
	return strings.Join(parts, " ")
}

func describe(ev model.Event) string {
	s := fmt.Sprintf("%s %s-%s %s", ev.DateString(), ev.StartTime, model.FormatClock(ev.EndMinutes()), ev.Title)
	if ev.Location != "" {
		s += " @ " + ev.Location
	}
	return s
}
