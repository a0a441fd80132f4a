package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/journal/internal/journal"
	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/schedule"
	"github.com/idilsaglam/journal/internal/store"
)

// EventRequest is the body of POST and PUT /events.
type EventRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	Duration  int    `json:"duration" validate:"required,gt=0,max=1440"`
	Location  string `json:"location" validate:"max=200"`
}

func (req EventRequest) event(loc *time.Location) (model.Event, error) {
	day, err := model.ParseDate(req.Date, loc)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Title:     req.Title,
		Date:      day,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Location:  req.Location,
	}, nil
}

// EventResponse is how events are rendered by the API.
type EventResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  int    `json:"duration"`
	Location  string `json:"location,omitempty"`
	Completed bool   `json:"completed"`
	Overdue   bool   `json:"overdue"`
}

func toResponse(ev model.Event, now time.Time) EventResponse {
	return EventResponse{
		ID:        ev.ID,
		Title:     ev.Title,
		Date:      ev.DateString(),
		StartTime: ev.StartTime,
		EndTime:   model.FormatClock(ev.EndMinutes()),
		Duration:  ev.Duration,
		Location:  ev.Location,
		Completed: ev.Completed,
		Overdue:   schedule.IsOverdue(ev, now),
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Debug().Err(err).Msg("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return model.Event{}, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.Event{}, false
	}
	ev, err := req.event(s.j.Now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return model.Event{}, false
	}
	return ev, true
}

// listEvents returns the snapshot in listing order. ?section=today|tomorrow|later|past
// narrows it to one agenda tab.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.j.Events(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	now := s.j.Now()
	if name := r.URL.Query().Get("section"); name != "" {
		sec, ok := schedule.ParseSection(name)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown section "+name)
			return
		}
		events = schedule.Partition(events, now).Get(sec)
	} else {
		events = schedule.SortByStart(events)
	}
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toResponse(ev, now))
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "events": out})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.j.Find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "event": toResponse(ev, s.j.Now())})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decode(w, r)
	if !ok {
		return
	}
	ev, err := s.j.Add(r.Context(), draft)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "success", "event": toResponse(ev, s.j.Now())})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	current, err := s.j.Find(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	ev, ok := s.decode(w, r)
	if !ok {
		return
	}
	ev.ID = id
	ev.Completed = current.Completed
	ev.OwnerID = current.OwnerID
	ev, err = s.j.Update(r.Context(), ev)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "event": toResponse(ev, s.j.Now())})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.j.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) completeEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.j.ToggleCompleted(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "event": toResponse(ev, s.j.Now())})
}

func (s *Server) rescheduleEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.j.Reschedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "event": toResponse(ev, s.j.Now())})
}

// SummaryResponse mirrors journal.Summary for the wire.
type SummaryResponse struct {
	Upcoming  *EventResponse `json:"upcoming"`
	Conflicts int            `json:"conflicts"`
	Today     int            `json:"today"`
	Tomorrow  int            `json:"tomorrow"`
	Later     int            `json:"later"`
	Past      int            `json:"past"`
	Overdue   int            `json:"overdue"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.j.Summary(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	out := SummaryResponse{
		Conflicts: sum.Conflicts,
		Today:     sum.Today,
		Tomorrow:  sum.Tomorrow,
		Later:     sum.Later,
		Past:      sum.Past,
		Overdue:   sum.Overdue,
		Completed: sum.Completed,
		Total:     sum.Total,
	}
	if sum.Upcoming != nil {
		up := toResponse(*sum.Upcoming, s.j.Now())
		out.Upcoming = &up
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "summary": out})
}

func (s *Server) conflicts(w http.ResponseWriter, r *http.Request) {
	events, err := s.j.Events(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	now := s.j.Now()
	pairs := schedule.ConflictPairs(events)
	out := make([][2]EventResponse, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, [2]EventResponse{toResponse(p.A, now), toResponse(p.B, now)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "count": len(pairs), "pairs": out})
}

// fail maps service errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, err error) {
	if ce, ok := journal.IsConflict(err); ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"status":   "error",
			"message":  ce.Error(),
			"conflict": toResponse(ce.With, s.j.Now()),
		})
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, model.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusConflict, "Event already exists")
	default:
		s.log.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"status": "error", "message": msg})
}
