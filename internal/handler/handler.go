// Package handler contains the chi HTTP handlers that translate requests
// and responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"personalcal/internal/auth"
	"personalcal/internal/calendar"
	"personalcal/internal/ics"
	"personalcal/internal/model"
	"personalcal/internal/repository"
	"personalcal/internal/service"
)

// Handler holds all HTTP handlers for the calendar API.
type Handler struct {
	svc    *service.EventService
	gate   *auth.Gate
	view   *calendar.View
	log    *slog.Logger
	webDir string
}

// New constructs a Handler.
func New(svc *service.EventService, gate *auth.Gate, view *calendar.View, log *slog.Logger, webDir string) *Handler {
	return &Handler{svc: svc, gate: gate, view: view, log: log, webDir: webDir}
}

// Routes assembles the router: global middleware, the API, and the static
// web UI mounted behind it.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog(h.log))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth", h.Login)
		r.Delete("/auth", h.Logout)
		r.Get("/session", h.Session)

		r.Group(func(r chi.Router) {
			r.Use(h.gate.RequireAuth)
			r.Get("/events", h.ListEvents)
			r.Post("/events", h.CreateEvent)
			r.Get("/events/export.ics", h.ExportICS)
			r.Get("/events/{id}", h.GetEvent)
			r.Put("/events/{id}", h.UpdateEvent)
			r.Delete("/events/{id}", h.DeleteEvent)
			r.Get("/calendar", h.Calendar)
		})
	})

	if h.webDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(h.webDir)))
	}
	return r
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// fail maps a service/repository error onto the right status code, hiding
// storage failures behind a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error(generic, "err", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, generic)
	}
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Login handles POST /api/auth.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	if !h.gate.Authenticate(req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}
	h.gate.IssueCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles DELETE /api/auth.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gate.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session handles GET /api/session so the UI can decide between the login
// form and the calendar without triggering a 401.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"authenticated": h.gate.IsAuthenticated(r),
	})
}

// ─── Events ───────────────────────────────────────────────────────────────────

// CreateEvent handles POST /api/events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "failed to create event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ListEvents handles GET /api/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to fetch events")
		return
	}
	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PUT /api/events/{id}. Absent fields are untouched.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	event, err := h.svc.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err, "failed to update event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/events/{id}. A repeated delete surfaces
// 404 rather than succeeding silently.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err, "failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ─── Calendar ─────────────────────────────────────────────────────────────────

// Calendar handles GET /api/calendar?mode=&date=. It fetches the full event
// list and returns the visible days with their bucketed events.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	mode := calendar.ParseMode(r.URL.Query().Get("mode"))

	now := time.Now()
	ref := now
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.view.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to fetch events")
		return
	}
	writeJSON(w, http.StatusOK, h.view.Page(mode, ref, events, now))
}

// ExportICS handles GET /api/events/export.ics.
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to fetch events")
		return
	}
	w.Header().Set("Content-Type", ics.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Export(events)))
}

// ─── Middleware & health ──────────────────────────────────────────────────────

// AccessLog emits one structured log line per request.
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
