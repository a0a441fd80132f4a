package schedule

import (
	"time"

	"github.com/idilsaglam/journal/internal/model"
)

// FindUpcoming selects the next event to attend: not completed and starting
// at or after now. The earliest start wins; on equal starts the one listed
// first is kept. ok is false when nothing qualifies.
func FindUpcoming(events []model.Event, now time.Time) (ev model.Event, ok bool) {
	best := -1
	var bestStart time.Time
	for i, e := range events {
		if e.Completed {
			continue
		}
		start := e.Start()
		if start.Before(now) {
			continue
		}
		if best < 0 || start.Before(bestStart) {
			best, bestStart = i, start
		}
	}
	if best < 0 {
		return model.Event{}, false
	}
	return events[best], true
}

// IsOverdue reports an unfinished event whose start has passed.
func IsOverdue(ev model.Event, now time.Time) bool {
	return !ev.Completed && ev.Start().Before(now)
}
