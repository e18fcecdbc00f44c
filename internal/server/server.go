// Package server republishes the local event collection and its RSVPs as
// a small JSON API and keeps it fresh from the upstream gateway on a cron
// schedule.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/unievents/uni/internal/core"
	"github.com/unievents/uni/internal/events"
	"github.com/unievents/uni/internal/metrics"
	"github.com/unievents/uni/internal/rsvp"
)

// RequestIDHeader carries the per-request id in and out.
const RequestIDHeader = "X-Request-ID"

// DefaultRefresh runs a fetch every 15 minutes.
const DefaultRefresh = "*/15 * * * *"

// Server serves the collection held by an events.Store and the RSVPs
// recorded against it.
type Server struct {
	store   *events.Store
	rsvps   *rsvp.Store
	logger  *log.Logger
	refresh string
	router  *mux.Router
}

// New wires the routes. An empty refresh schedule disables scheduled fetches.
func New(store *events.Store, rsvps *rsvp.Store, refresh string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{store: store, rsvps: rsvps, logger: logger, refresh: refresh}

	r := mux.NewRouter()
	r.Use(s.requestID, s.instrument)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", s.listEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", s.createEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", s.getEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}/rsvp", s.createRSVP).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}/rsvp", s.deleteRSVP).Methods(http.MethodDelete)
	api.HandleFunc("/events/{id}/rsvp", s.checkRSVP).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}/rsvp/count", s.countRSVP).Methods(http.MethodGet)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run fetches once, starts the refresh schedule and serves on addr until
// ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.store.FetchEvents(ctx)

	if s.refresh != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.refresh, func() { s.Refresh(ctx) }); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", s.refresh, err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr, "refresh", s.refresh)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Refresh runs one scheduled fetch.
func (s *Server) Refresh(ctx context.Context) {
	start := time.Now()
	s.store.FetchEvents(ctx)
	if msg := s.store.Err(); msg != "" {
		s.logger.Warn("refresh failed", "err", msg, "events", s.store.Count())
		return
	}
	s.logger.Debug("refreshed", "events", s.store.Count(), "took", time.Since(start))
}

func (s *Server) listEvents(w http.ResponseWriter, _ *http.Request) {
	list := s.store.Events()
	if list == nil {
		list = []core.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id := core.EventID(mux.Vars(r)["id"])
	e, ok := s.store.Lookup(id)
	if !ok {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var d core.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, ok := s.store.CreateEvent(r.Context(), d)
	if !ok {
		http.Error(w, s.store.Err(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type rsvpRequest struct {
	UserEmail string `json:"user_email"`
}

func decodeRSVP(w http.ResponseWriter, r *http.Request) (rsvpRequest, bool) {
	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) createRSVP(w http.ResponseWriter, r *http.Request) {
	id := core.EventID(mux.Vars(r)["id"])
	req, ok := decodeRSVP(w, r)
	if !ok {
		return
	}
	if _, held := s.store.Lookup(id); !held {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	created, err := s.rsvps.Create(r.Context(), id, req.UserEmail)
	switch {
	case errors.Is(err, rsvp.ErrEmailRequired):
		http.Error(w, "Email is required", http.StatusBadRequest)
	case errors.Is(err, rsvp.ErrAlreadyRSVPed):
		http.Error(w, "Failed to create RSVP. You may have already RSVPed.", http.StatusConflict)
	case err != nil:
		s.logger.Error("create rsvp", "event", id, "err", err)
		http.Error(w, "Failed to create RSVP", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "RSVP successful",
			"rsvp_id": created.ID,
		})
	}
}

func (s *Server) deleteRSVP(w http.ResponseWriter, r *http.Request) {
	id := core.EventID(mux.Vars(r)["id"])
	req, ok := decodeRSVP(w, r)
	if !ok {
		return
	}

	err := s.rsvps.Cancel(r.Context(), id, req.UserEmail)
	switch {
	case errors.Is(err, rsvp.ErrEmailRequired):
		http.Error(w, "Email is required", http.StatusBadRequest)
	case errors.Is(err, rsvp.ErrNotFound):
		http.Error(w, "RSVP not found", http.StatusNotFound)
	case err != nil:
		s.logger.Error("cancel rsvp", "event", id, "err", err)
		http.Error(w, "Failed to cancel RSVP", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "RSVP cancelled successfully"})
	}
}

func (s *Server) countRSVP(w http.ResponseWriter, r *http.Request) {
	id := core.EventID(mux.Vars(r)["id"])
	n, err := s.rsvps.Count(r.Context(), id)
	if err != nil {
		s.logger.Error("count rsvps", "event", id, "err", err)
		http.Error(w, "Failed to get RSVP count", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) checkRSVP(w http.ResponseWriter, r *http.Request) {
	id := core.EventID(mux.Vars(r)["id"])
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "Email parameter is required", http.StatusBadRequest)
		return
	}
	ok, err := s.rsvps.Has(r.Context(), id, email)
	if err != nil {
		s.logger.Error("check rsvp", "event", id, "err", err)
		http.Error(w, "Failed to check RSVP status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_rsvped": ok})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"events": s.store.Count(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"code", rec.code,
			"took", time.Since(start),
			"request_id", w.Header().Get(RequestIDHeader),
		)
	})
}
