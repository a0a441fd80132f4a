// Package remind announces events shortly before they start.
package remind

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
)

// Source provides the snapshot and clock to check against.
type Source interface {
	Now() time.Time
	Events(ctx context.Context) ([]model.Event, error)
}

// NotifyFunc receives an event and how long until it starts.
type NotifyFunc func(ev model.Event, in time.Duration)

type Watcher struct {
	src    Source
	lead   time.Duration
	notify NotifyFunc
	log    zerolog.Logger

	mu   sync.Mutex
	seen map[string]bool
}

func NewWatcher(src Source, lead time.Duration, notify NotifyFunc, log zerolog.Logger) *Watcher {
	return &Watcher{
		src:    src,
		lead:   lead,
		notify: notify,
		log:    log,
		seen:   make(map[string]bool),
	}
}

// Check notifies, once per event id, every pending event starting within
// the lead window, earliest first. It returns the events it announced.
func (w *Watcher) Check(ctx context.Context) ([]model.Event, error) {
	events, err := w.src.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	now := w.src.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	present := make(map[string]bool, len(events))
	candidates := make([]model.Event, 0, len(events))
	for _, ev := range events {
		present[ev.ID] = true
		if !w.seen[ev.ID] {
			candidates = append(candidates, ev)
		}
	}
	for id := range w.seen {
		if !present[id] {
			delete(w.seen, id)
		}
	}

	var out []model.Event
	for {
		ev, ok := schedule.FindUpcoming(candidates, now)
		if !ok {
			break
		}
		in := ev.Start().Sub(now)
		if in > w.lead {
			break
		}
		w.seen[ev.ID] = true
		w.notify(ev, in)
		w.log.Debug().Str("event_id", ev.ID).Dur("in", in).Msg("reminder sent")
		out = append(out, ev)
		candidates = without(candidates, ev.ID)
	}
	return out, nil
}

// Run checks once, then on every tick of the cron spec until ctx is done.
func (w *Watcher) Run(ctx context.Context, spec string) error {
	c := cron.New(
		cron.WithLogger(cron.PrintfLogger(&w.log)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, func() { w.tick(ctx) }); err != nil {
		return fmt.Errorf("reminder schedule %q: %w", spec, err)
	}
	w.tick(ctx)
	c.Start()
	w.log.Info().Str("schedule", spec).Dur("lead", w.lead).Msg("watching")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (w *Watcher) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.Check(ctx); err != nil {
		w.log.Error().Err(err).Msg("reminder check failed")
	}
}

func without(events []model.Event, id string) []model.Event {
	out := events[:0]
	for _, ev := range events {
		if ev.ID != id {
			out = append(out, ev)
		}
	}
	return out
}
