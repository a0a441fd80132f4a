// Package journal is the application layer between the user-facing
// surfaces (CLI, TUI, HTTP) and an EventStore. It validates input, consults
// the schedule engine before every write and keeps the store the only
// owner of state.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/store"
)

// ConflictError is returned when a write would overlap an existing event.
type ConflictError struct {
	With model.Event
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts with %q at %s (%d min)", e.With.Title, e.With.StartTime, e.With.Duration)
}

// Summary is what the header of every view shows.
type Summary struct {
	Upcoming  *model.Event
	Conflicts int
	Today     int
	Tomorrow  int
	Later     int
	Past      int
	Overdue   int
	Completed int
	Total     int
}

type Service struct {
	store store.EventStore
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

func New(st store.EventStore, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		log:   log,
		now:   time.Now,
		newID: newID,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// newID hands out time-ordered UUIDv7 strings.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Now is the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Events returns the current snapshot from the store.
func (s *Service) Events(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return events, nil
}

// Find returns the event with id from the current snapshot.
func (s *Service) Find(ctx context.Context, id string) (model.Event, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return model.Event{}, err
	}
	for _, ev := range events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return model.Event{}, fmt.Errorf("find %s: %w", id, store.ErrNotFound)
}

// Add stores a new event. A missing id is generated, completed is reset and
// the event is refused with *ConflictError if it overlaps one on its day.
func (s *Service) Add(ctx context.Context, draft model.Event) (model.Event, error) {
	ev := normalize(draft)
	if ev.ID == "" {
		ev.ID = s.newID()
	}
	ev.Completed = false
	if err := model.Validate(ev); err != nil {
		return model.Event{}, err
	}

	events, err := s.Events(ctx)
	if err != nil {
		return model.Event{}, err
	}
	if res := schedule.DetectConflict(events, ev); res.HasConflict {
		s.log.Debug().Str("event_id", ev.ID).Str("conflict_id", res.With.ID).Msg("add refused")
		return model.Event{}, &ConflictError{With: *res.With}
	}
	if err := s.store.Add(ctx, ev); err != nil {
		return model.Event{}, fmt.Errorf("save: %w", err)
	}
	s.log.Info().Str("event_id", ev.ID).Str("date", ev.DateString()).Str("start", ev.StartTime).Msg("event added")
	return ev, nil
}

// Update replaces a stored event after re-validating it against the others.
func (s *Service) Update(ctx context.Context, ev model.Event) (model.Event, error) {
	ev = normalize(ev)
	if err := model.Validate(ev); err != nil {
		return model.Event{}, err
	}
	events, err := s.Events(ctx)
	if err != nil {
		return model.Event{}, err
	}
	if res := schedule.DetectConflict(events, ev); res.HasConflict {
		return model.Event{}, &ConflictError{With: *res.With}
	}
	if err := s.store.Update(ctx, ev); err != nil {
		return model.Event{}, fmt.Errorf("save: %w", err)
	}
	return ev, nil
}

// Delete removes the event with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	s.log.Info().Str("event_id", id).Msg("event deleted")
	return nil
}

// ToggleCompleted flips the completed flag in place.
func (s *Service) ToggleCompleted(ctx context.Context, id string) (model.Event, error) {
	ev, err := s.Find(ctx, id)
	if err != nil {
		return model.Event{}, err
	}
	ev.Completed = !ev.Completed
	if err := s.store.Update(ctx, ev); err != nil {
		return model.Event{}, fmt.Errorf("save: %w", err)
	}
	return ev, nil
}

// Reschedule moves an event to tomorrow at the same start time. The moved
// event gets a new id; the old record is deleted once the new one is saved.
func (s *Service) Reschedule(ctx context.Context, id string) (model.Event, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return model.Event{}, err
	}
	idx := -1
	for i := range events {
		if events[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Event{}, fmt.Errorf("reschedule %s: %w", id, store.ErrNotFound)
	}
	old := events[idx]

	moved := old
	moved.ID = s.newID()
	moved.Date = model.DayOf(s.now()).AddDate(0, 0, 1)
	moved.Completed = false

	others := append(append([]model.Event(nil), events[:idx]...), events[idx+1:]...)
	if res := schedule.DetectConflict(others, moved); res.HasConflict {
		return model.Event{}, &ConflictError{With: *res.With}
	}
	if err := s.store.Add(ctx, moved); err != nil {
		return model.Event{}, fmt.Errorf("save: %w", err)
	}
	if err := s.store.Delete(ctx, old.ID); err != nil {
		// leave the journal with one copy rather than two
		if rbErr := s.store.Delete(ctx, moved.ID); rbErr != nil {
			s.log.Error().Err(rbErr).Str("event_id", moved.ID).Msg("rollback of rescheduled copy failed")
		}
		return model.Event{}, fmt.Errorf("reschedule %s: %w", id, err)
	}
	s.log.Info().Str("from", old.ID).Str("to", moved.ID).Str("date", moved.DateString()).Msg("event rescheduled")
	return moved, nil
}

// Summary computes the header figures for the current snapshot.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(events, s.now()), nil
}

// Summarize computes a Summary for events as of now.
func Summarize(events []model.Event, now time.Time) Summary {
	a := schedule.Partition(events, now)
	sum := Summary{
		Conflicts: schedule.CountConflicts(events),
		Today:     len(a.Today),
		Tomorrow:  len(a.Tomorrow),
		Later:     len(a.Later),
		Past:      len(a.Past),
		Total:     len(events),
	}
	if up, ok := schedule.FindUpcoming(events, now); ok {
		sum.Upcoming = &up
	}
	for _, ev := range events {
		if ev.Completed {
			sum.Completed++
		}
		if schedule.IsOverdue(ev, now) {
			sum.Overdue++
		}
	}
	return sum
}

// IsConflict reports whether err carries a *ConflictError.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func normalize(ev model.Event) model.Event {
	ev.Title = strings.TrimSpace(ev.Title)
	ev.Location = strings.TrimSpace(ev.Location)
	ev.StartTime = strings.TrimSpace(ev.StartTime)
	if !ev.Date.IsZero() {
		ev.Date = model.DayOf(ev.Date)
	}
	if m, err := model.ParseClock(ev.StartTime); err == nil {
		ev.StartTime = model.FormatClock(m)
	}
	return ev
}
