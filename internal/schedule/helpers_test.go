package schedule

import (
	"time"

	"github.com/idilsaglam/journal/internal/model"
)

var (
	day1 = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	day2 = day1.AddDate(0, 0, 1)
)

// event builds a minimal event on date starting at start for dur minutes.
func event(id string, date time.Time, start string, dur int) model.Event {
	return model.Event{
		ID:        id,
		Title:     "event " + id,
		Date:      date,
		StartTime: start,
		Duration:  dur,
	}
}

func at(date time.Time, hh, mm int) time.Time {
	return date.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}
