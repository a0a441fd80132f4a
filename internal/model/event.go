package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is the domain model for a journal entry.
// Date carries the calendar day only; StartTime is a 24h "HH:MM" wall clock
// and Duration is in minutes.
type Event struct {
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title" validate:"required,max=200"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"startTime" validate:"required,hhmm"`
	Duration  int       `json:"duration" validate:"gt=0,max=1440"`
	Location  string    `json:"location" validate:"max=200"`
	Completed bool      `json:"completed"`
	OwnerID   string    `json:"ownerId,omitempty"`
}

const (
	dateLayout  = "2006-01-02"
	minutesADay = 24 * 60
)

// StartMinutes is the minute-of-day offset of StartTime. Malformed values
// yield whatever digits could be read; callers validate first.
func (e Event) StartMinutes() int {
	h, m, _ := strings.Cut(strings.TrimSpace(e.StartTime), ":")
	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)
	return hours*60 + mins
}

// EndMinutes is the exclusive end of the event's minute interval.
func (e Event) EndMinutes() int {
	return e.StartMinutes() + e.Duration
}

// Day is the event date normalized to midnight.
func (e Event) Day() time.Time { return DayOf(e.Date) }

// Start combines Date and StartTime into one instant in the date's location.
func (e Event) Start() time.Time {
	return e.Day().Add(time.Duration(e.StartMinutes()) * time.Minute)
}

// End is Start plus Duration.
func (e Event) End() time.Time {
	return e.Start().Add(time.Duration(e.Duration) * time.Minute)
}

// DateString renders the calendar day as YYYY-MM-DD.
func (e Event) DateString() string { return e.Date.Format(dateLayout) }

// DayOf drops the time-of-day component of t, keeping its location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate reads a YYYY-MM-DD day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseClock converts "HH:MM" (24h) into a minute-of-day offset in [0,1440).
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, fmt.Errorf("parse time %q: want HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("parse time %q: hour out of range", s)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("parse time %q: minute out of range", s)
	}
	return hours*60 + mins, nil
}

// FormatClock renders a minute-of-day offset as "HH:MM".
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesADay) + minutesADay) % minutesADay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
