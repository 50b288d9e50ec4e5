package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workspace-agenda/internal/application"
)

type funcionarioService interface {
	CreateFuncionario(ctx context.Context, input application.FuncionarioInput) (application.FuncionarioView, error)
	UpdateFuncionario(ctx context.Context, id string, input application.FuncionarioInput) (application.FuncionarioView, error)
	GetFuncionario(ctx context.Context, id string) (application.FuncionarioView, error)
	ListFuncionarios(ctx context.Context) ([]application.FuncionarioView, error)
	DeleteFuncionario(ctx context.Context, id string) error
}

// FuncionarioHandler serves the employee CRUD endpoints.
type FuncionarioHandler struct {
	service   funcionarioService
	responder responder
	logger    *slog.Logger
}

// NewFuncionarioHandler constructs an employee handler.
func NewFuncionarioHandler(service funcionarioService, logger *slog.Logger) *FuncionarioHandler {
	base := defaultLogger(logger)
	return &FuncionarioHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *FuncionarioHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "FuncionarioHandler", operation, attrs...)
}

// Create handles POST /api/funcionarios.
func (h *FuncionarioHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req funcionarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode funcionario request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "funcionario_id", req.ID)

	funcionario, err := h.service.CreateFuncionario(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "funcionario creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "funcionario created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toFuncionarioDTO(funcionario))
}

// Update handles PUT /api/funcionarios/{id}.
func (h *FuncionarioHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := FuncionarioIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing funcionario id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFuncionarioID)
		return
	}

	var req funcionarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "funcionario_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode funcionario update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "funcionario_id", id)

	funcionario, err := h.service.UpdateFuncionario(r.Context(), id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "funcionario update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "funcionario updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toFuncionarioDTO(funcionario))
}

// Get handles GET /api/funcionarios/{id}.
func (h *FuncionarioHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := FuncionarioIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFuncionarioID)
		return
	}

	logger := h.log(r.Context(), "Get", "funcionario_id", id)

	funcionario, err := h.service.GetFuncionario(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "funcionario lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toFuncionarioDTO(funcionario))
}

// List handles GET /api/funcionarios.
func (h *FuncionarioHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	funcionarios, err := h.service.ListFuncionarios(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "funcionario list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(funcionarios)).InfoContext(r.Context(), "funcionarios listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toFuncionarioDTOs(funcionarios))
}

// Delete handles DELETE /api/funcionarios/{id}.
func (h *FuncionarioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := FuncionarioIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing funcionario id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFuncionarioID)
		return
	}

	logger := h.log(r.Context(), "Delete", "funcionario_id", id)

	if err := h.service.DeleteFuncionario(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "funcionario delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "funcionario deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type funcionarioRequest struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	HorarioInicio string `json:"horarioInicio"`
	HorarioFim    string `json:"horarioFim"`
	Cor           string `json:"cor"`
}

func (r funcionarioRequest) toInput() application.FuncionarioInput {
	return application.FuncionarioInput{
		ID:            strings.TrimSpace(r.ID),
		Nome:          strings.TrimSpace(r.Nome),
		HorarioInicio: strings.TrimSpace(r.HorarioInicio),
		HorarioFim:    strings.TrimSpace(r.HorarioFim),
		Cor:           strings.TrimSpace(r.Cor),
	}
}

type funcionarioDTO struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	HorarioInicio string `json:"horarioInicio"`
	HorarioFim    string `json:"horarioFim"`
	Cor           string `json:"cor"`
}

func toFuncionarioDTO(funcionario application.FuncionarioView) funcionarioDTO {
	return funcionarioDTO{
		ID:            funcionario.ID,
		Nome:          funcionario.Nome,
		HorarioInicio: funcionario.HorarioInicio,
		HorarioFim:    funcionario.HorarioFim,
		Cor:           funcionario.Cor,
	}
}

func toFuncionarioDTOs(funcionarios []application.FuncionarioView) []funcionarioDTO {
	out := make([]funcionarioDTO, 0, len(funcionarios))
	for _, funcionario := range funcionarios {
		out = append(out, toFuncionarioDTO(funcionario))
	}
	return out
}
