// Package ical exchanges events with calendar applications through
// iCalendar (RFC 5545) files.
package ical

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/idilsaglam/journal/internal/model"
)

const (
	productID = "-//journal//journal CLI//EN"

	// propCompleted carries the completed flag, which VEVENT has no field for.
	propCompleted = ics.ComponentProperty("X-JOURNAL-COMPLETED")

	floatingLayout = "20060102T150405"
	utcLayout      = "20060102T150405Z"

	// DefaultDuration applies to entries without DTEND.
	DefaultDuration = 60
)

// Export renders events as a VCALENDAR. Times are written as floating local
// wall-clock values, which is how the journal stores them.
func Export(events []model.Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp)
		ve.SetProperty(ics.ComponentPropertyDtStart, ev.Start().Format(floatingLayout))
		ve.SetProperty(ics.ComponentPropertyDtEnd, ev.End().Format(floatingLayout))
		ve.SetSummary(ev.Title)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Completed {
			ve.SetProperty(propCompleted, "TRUE")
		}
	}
	return cal.Serialize()
}

// Result is what Import could use.
type Result struct {
	Events  []model.Event
	Skipped []Skip
}

// Skip names an entry Import left out and why.
type Skip struct {
	UID    string
	Title  string
	Reason string
}

// Import reads VEVENTs from r. All-day, multi-day and recurring entries are
// skipped since the journal cannot represent them. Times with a zone are
// converted to loc; floating times are taken as they are.
func Import(r io.Reader, loc *time.Location) (Result, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse calendar: %w", err)
	}
	var res Result
	for _, ve := range cal.Events() {
		ev, reason := convert(ve, loc)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skip{UID: ev.ID, Title: ev.Title, Reason: reason})
			continue
		}
		res.Events = append(res.Events, ev)
	}
	return res, nil
}

// convert returns the event and, when it cannot be imported, the reason.
func convert(ve *ics.VEvent, loc *time.Location) (model.Event, string) {
	var ev model.Event
	if p := ve.GetProperty(ics.ComponentPropertyUniqueId); p != nil {
		ev.ID = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		ev.Title = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
		ev.Location = strings.TrimSpace(p.Value)
	}
	if p := ve.GetProperty(propCompleted); p != nil {
		ev.Completed = strings.EqualFold(strings.TrimSpace(p.Value), "TRUE")
	}

	if ve.GetProperty(ics.ComponentPropertyRrule) != nil || ve.GetProperty("RECURRENCE-ID") != nil {
		return ev, "recurring"
	}
	startProp := ve.GetProperty(ics.ComponentPropertyDtStart)
	if startProp == nil {
		return ev, "no start"
	}
	if isDate(startProp) {
		return ev, "all-day"
	}
	start, err := propTime(startProp, loc)
	if err != nil {
		return ev, err.Error()
	}

	minutes := DefaultDuration
	if endProp := ve.GetProperty(ics.ComponentPropertyDtEnd); endProp != nil {
		end, err := propTime(endProp, loc)
		if err != nil {
			return ev, err.Error()
		}
		minutes = int(end.Sub(start).Minutes())
		if minutes <= 0 {
			return ev, "ends before it starts"
		}
	}

	y, m, d := start.Date()
	ev.Date = time.Date(y, m, d, 0, 0, 0, 0, loc)
	ev.StartTime = model.FormatClock(start.Hour()*60 + start.Minute())
	ev.Duration = minutes
	if ev.StartMinutes()+minutes > 24*60 {
		return ev, "multi-day"
	}
	if ev.Title == "" {
		ev.Title = "(untitled)"
	}
	return ev, ""
}

func isDate(p *ics.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// propTime reads a DATE-TIME value as a wall clock in loc.
func propTime(p *ics.IANAProperty, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(p.Value)
	switch {
	case strings.HasSuffix(v, "Z"):
		t, err := time.Parse(utcLayout, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad time %q", v)
		}
		return t.In(loc), nil
	case len(p.ICalParameters["TZID"]) > 0:
		zone, err := time.LoadLocation(p.ICalParameters["TZID"][0])
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown zone %q", p.ICalParameters["TZID"][0])
		}
		t, err := time.ParseInLocation(floatingLayout, v, zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad time %q", v)
		}
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(floatingLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", v)
	}
	return t, nil
}

// ErrEmpty is returned by the CLI when a file has no importable events.
var ErrEmpty = errors.New("no importable events")
