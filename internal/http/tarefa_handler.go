package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workspace-agenda/internal/application"
)

type tarefaService interface {
	CreateTarefa(ctx context.Context, input application.TarefaInput) (application.TarefaView, error)
	UpdateTarefa(ctx context.Context, id string, input application.TarefaInput) (application.TarefaView, error)
	GetTarefa(ctx context.Context, id string) (application.TarefaView, error)
	ListTarefas(ctx context.Context) ([]application.TarefaView, error)
	DeleteTarefa(ctx context.Context, id string) error
}

// TarefaHandler serves the task type CRUD endpoints.
type TarefaHandler struct {
	service   tarefaService
	responder responder
	logger    *slog.Logger
}

// NewTarefaHandler constructs a task handler.
func NewTarefaHandler(service tarefaService, logger *slog.Logger) *TarefaHandler {
	base := defaultLogger(logger)
	return &TarefaHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TarefaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TarefaHandler", operation, attrs...)
}

// Create handles POST /api/tarefas.
func (h *TarefaHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req tarefaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode tarefa request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "tarefa_id", req.ID)

	tarefa, err := h.service.CreateTarefa(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "tarefa creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "tarefa created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toTarefaDTO(tarefa))
}

// Update handles PUT /api/tarefas/{id}.
func (h *TarefaHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := TarefaIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing tarefa id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTarefaID)
		return
	}

	var req tarefaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "tarefa_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode tarefa update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "tarefa_id", id)

	tarefa, err := h.service.UpdateTarefa(r.Context(), id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "tarefa update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "tarefa updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTarefaDTO(tarefa))
}

// Get handles GET /api/tarefas/{id}.
func (h *TarefaHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := TarefaIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTarefaID)
		return
	}

	logger := h.log(r.Context(), "Get", "tarefa_id", id)

	tarefa, err := h.service.GetTarefa(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "tarefa lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTarefaDTO(tarefa))
}

// List handles GET /api/tarefas.
func (h *TarefaHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	tarefas, err := h.service.ListTarefas(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "tarefa list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(tarefas)).InfoContext(r.Context(), "tarefas listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTarefaDTOs(tarefas))
}

// Delete handles DELETE /api/tarefas/{id}.
func (h *TarefaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := TarefaIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing tarefa id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTarefaID)
		return
	}

	logger := h.log(r.Context(), "Delete", "tarefa_id", id)

	if err := h.service.DeleteTarefa(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "tarefa delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "tarefa deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type tarefaRequest struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	Categoria     string `json:"categoria"`
	TempoEstimado int    `json:"tempoEstimado"`
	Descricao     string `json:"descricao"`
	Prioridade    string `json:"prioridade"`
}

func (r tarefaRequest) toInput() application.TarefaInput {
	return application.TarefaInput{
		ID:            strings.TrimSpace(r.ID),
		Nome:          strings.TrimSpace(r.Nome),
		Categoria:     strings.TrimSpace(r.Categoria),
		TempoEstimado: r.TempoEstimado,
		Descricao:     strings.TrimSpace(r.Descricao),
		Prioridade:    strings.TrimSpace(r.Prioridade),
	}
}

type tarefaDTO struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	Categoria     string `json:"categoria"`
	TempoEstimado int    `json:"tempoEstimado"`
	Descricao     string `json:"descricao"`
	Prioridade    string `json:"prioridade"`
}

func toTarefaDTO(tarefa application.TarefaView) tarefaDTO {
	return tarefaDTO{
		ID:            tarefa.ID,
		Nome:          tarefa.Nome,
		Categoria:     tarefa.Categoria,
		TempoEstimado: tarefa.TempoEstimado,
		Descricao:     tarefa.Descricao,
		Prioridade:    tarefa.Prioridade,
	}
}

func toTarefaDTOs(tarefas []application.TarefaView) []tarefaDTO {
	out := make([]tarefaDTO, 0, len(tarefas))
	for _, tarefa := range tarefas {
		out = append(out, toTarefaDTO(tarefa))
	}
	return out
}
