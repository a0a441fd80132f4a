package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/idilsaglam/journal/internal/model"
)

// Section names one agenda tab.
type Section int

const (
	Today Section = iota
	Tomorrow
	Later
	Past
)

// Sections lists the agenda tabs in display order.
var Sections = []Section{Today, Tomorrow, Later, Past}

func (s Section) String() string {
	switch s {
	case Today:
		return "Today"
	case Tomorrow:
		return "Tomorrow"
	case Later:
		return "Later"
	case Past:
		return "Past"
	}
	return "Unknown"
}

// ParseSection matches a section name case-insensitively.
func ParseSection(name string) (Section, bool) {
	for _, sec := range Sections {
		if strings.EqualFold(sec.String(), name) {
			return sec, true
		}
	}
	return 0, false
}

// Agenda is a collection split into day sections, each sorted by start.
type Agenda struct {
	Today, Tomorrow, Later, Past []model.Event
}

// Get returns the events of one section.
func (a Agenda) Get(s Section) []model.Event {
	switch s {
	case Today:
		return a.Today
	case Tomorrow:
		return a.Tomorrow
	case Later:
		return a.Later
	case Past:
		return a.Past
	}
	return nil
}

// Partition groups events relative to the calendar day of now. Later holds
// everything from the day after tomorrow on.
func Partition(events []model.Event, now time.Time) Agenda {
	today := model.DayOf(now)
	tomorrow := today.AddDate(0, 0, 1)

	var a Agenda
	for _, ev := range SortByStart(events) {
		y, m, d := ev.Date.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		switch {
		case day.Equal(today):
			a.Today = append(a.Today, ev)
		case day.Equal(tomorrow):
			a.Tomorrow = append(a.Tomorrow, ev)
		case day.After(tomorrow):
			a.Later = append(a.Later, ev)
		default:
			a.Past = append(a.Past, ev)
		}
	}
	return a
}

// SortByStart returns a copy of events ordered by start instant. Equal
// starts keep their input order.
func SortByStart(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start().Before(out[j].Start())
	})
	return out
}
