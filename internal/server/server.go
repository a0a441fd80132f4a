// Package server exposes the journal over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/journal/internal/journal"
	"github.com/idilsaglam/journal/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Journal is the service the handlers call into.
type Journal interface {
	Now() time.Time
	Events(ctx context.Context) ([]model.Event, error)
	Find(ctx context.Context, id string) (model.Event, error)
	Add(ctx context.Context, draft model.Event) (model.Event, error)
	Update(ctx context.Context, ev model.Event) (model.Event, error)
	Delete(ctx context.Context, id string) error
	ToggleCompleted(ctx context.Context, id string) (model.Event, error)
	Reschedule(ctx context.Context, id string) (model.Event, error)
	Summary(ctx context.Context) (journal.Summary, error)
}

type Server struct {
	Server *http.Server
	log    zerolog.Logger
	j      Journal
}

func New(addr string, j Journal, log zerolog.Logger) *Server {
	s := &Server{
		Server: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
		j:   j,
	}

	r := mux.NewRouter()
	s.setupRoutes(r)
	s.Server.Handler = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(r)
	return s
}

func (s *Server) setupRoutes(r *mux.Router) {
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/health", s.healthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/summary", s.summary).Methods("GET")
	api.HandleFunc("/conflicts", s.conflicts).Methods("GET")

	events := api.PathPrefix("/events").Subrouter()
	events.HandleFunc("", s.listEvents).Methods("GET")
	events.HandleFunc("", s.createEvent).Methods("POST")
	events.HandleFunc("/{id}", s.getEvent).Methods("GET")
	events.HandleFunc("/{id}", s.updateEvent).Methods("PUT")
	events.HandleFunc("/{id}", s.deleteEvent).Methods("DELETE")
	events.HandleFunc("/{id}/complete", s.completeEvent).Methods("POST")
	events.HandleFunc("/{id}/reschedule", s.rescheduleEvent).Methods("POST")
}

// Handler is the full middleware-wrapped router.
func (s *Server) Handler() http.Handler { return s.Server.Handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Server.Addr)
	if err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("address", ln.Addr().String()).Msg("Starting server")
		errc <- s.Server.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Server.Shutdown(shutdownCtx)
}

// loggingMiddleware logs all incoming requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(rw, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := s.j.Events(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Store health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "error": "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
