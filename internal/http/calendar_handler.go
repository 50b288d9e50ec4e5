package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/workspace-agenda/internal/application"
)

type syncService interface {
	Status(ctx context.Context) (application.ConnectionStatus, error)
	Connect(ctx context.Context) (string, error)
	CompleteAuthorization(ctx context.Context, state, code string) error
	Disconnect(ctx context.Context) error
	PushAgenda(ctx context.Context) (application.SyncReport, error)
	PullEvents(ctx context.Context) ([]application.RemoteEvent, error)
	ListCalendars(ctx context.Context) ([]application.CalendarOption, error)
}

// CalendarHandler serves the Google Calendar bridge endpoints.
type CalendarHandler struct {
	service   syncService
	responder responder
	logger    *slog.Logger
}

// NewCalendarHandler constructs a calendar handler.
func NewCalendarHandler(service syncService, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	return &CalendarHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CalendarHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CalendarHandler", operation, attrs...)
}

// Status handles GET /api/calendar/status.
func (h *CalendarHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Status")

	status, err := h.service.Status(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "status check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusDTO{
		Connected:  status.Connected,
		CalendarID: status.CalendarID,
	})
}

// Connect handles POST /api/calendar/connect.
func (h *CalendarHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Connect")

	authURL, err := h.service.Connect(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "connect failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "authorization started")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, connectDTO{AuthURL: authURL})
}

// Callback handles GET /api/calendar/callback.
func (h *CalendarHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	state := query.Get("state")
	code := query.Get("code")

	logger := h.log(r.Context(), "Callback")

	if err := h.service.CompleteAuthorization(r.Context(), state, code); err != nil {
		logger.ErrorContext(r.Context(), "authorization callback failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account connected")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageDTO{Message: "Conta conectada com sucesso."})
}

// Disconnect handles POST /api/calendar/disconnect.
func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Disconnect")

	if err := h.service.Disconnect(r.Context()); err != nil {
		logger.ErrorContext(r.Context(), "disconnect failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account disconnected")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Calendars handles GET /api/calendar/calendars.
func (h *CalendarHandler) Calendars(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Calendars")

	options, err := h.service.ListCalendars(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]calendarOptionDTO, 0, len(options))
	for _, option := range options {
		out = append(out, calendarOptionDTO{
			ID:       option.ID,
			Nome:     option.Nome,
			Primario: option.Primario,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

// Push handles POST /api/calendar/sync/push.
func (h *CalendarHandler) Push(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Push")

	report, err := h.service.PushAgenda(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "agenda push failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With(
		"created", report.Created,
		"updated", report.Updated,
		"errors", report.Errors,
	).InfoContext(r.Context(), "agenda pushed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, syncReportDTO{
		Created: report.Created,
		Updated: report.Updated,
		Errors:  report.Errors,
		Details: report.Details,
	})
}

// Pull handles GET /api/calendar/sync/pull.
func (h *CalendarHandler) Pull(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Pull")

	events, err := h.service.PullEvents(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "event pull failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]remoteEventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, remoteEventDTO{
			ID:        event.ID,
			Titulo:    event.Titulo,
			Descricao: event.Descricao,
			Inicio:    event.Inicio.Format(time.RFC3339),
			Fim:       event.Fim.Format(time.RFC3339),
			Origem:    event.Origem,
		})
	}

	logger.With("result_count", len(out)).InfoContext(r.Context(), "events pulled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, out)
}

type statusDTO struct {
	Connected  bool   `json:"connected"`
	CalendarID string `json:"calendarId"`
}

type connectDTO struct {
	AuthURL string `json:"authUrl"`
}

type messageDTO struct {
	Message string `json:"message"`
}

type calendarOptionDTO struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Primario bool   `json:"primario"`
}

type syncReportDTO struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  int      `json:"errors"`
	Details []string `json:"details"`
}

type remoteEventDTO struct {
	ID        string `json:"id"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao"`
	Inicio    string `json:"inicio"`
	Fim       string `json:"fim"`
	Origem    string `json:"origem"`
}
