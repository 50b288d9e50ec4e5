package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/workspace-agenda/internal/application"
)

type agendaService interface {
	CreateAgendamento(ctx context.Context, input application.AgendamentoInput) (application.AgendamentoView, error)
	ListAgendamentos(ctx context.Context) ([]application.AgendamentoView, error)
	ListAgendamentosPorFuncionario(ctx context.Context, funcionarioID string) ([]application.AgendamentoView, error)
	DeleteAgendamento(ctx context.Context, ref string) error
	DadosCompletos(ctx context.Context) (application.DadosCompletos, error)
}

// AgendaHandler serves the agenda endpoints.
type AgendaHandler struct {
	service   agendaService
	responder responder
	logger    *slog.Logger
}

// NewAgendaHandler constructs an agenda handler.
func NewAgendaHandler(service agendaService, logger *slog.Logger) *AgendaHandler {
	base := defaultLogger(logger)
	return &AgendaHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AgendaHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AgendaHandler", operation, attrs...)
}

// Create handles POST /api/agenda.
func (h *AgendaHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req agendamentoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode agendamento request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create",
		"funcionario_id", req.Funcionario,
		"tarefa_id", req.Tarefa,
	)

	entry, err := h.service.CreateAgendamento(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "agendamento creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("entry_id", entry.ID).InfoContext(r.Context(), "agendamento created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAgendamentoDTO(entry))
}

// List handles GET /api/agenda.
func (h *AgendaHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	entries, err := h.service.ListAgendamentos(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "agenda list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "agenda listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAgendamentoDTOs(entries))
}

// ListByFuncionario handles GET /api/agenda/funcionario/{id}.
func (h *AgendaHandler) ListByFuncionario(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := FuncionarioIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFuncionarioID)
		return
	}

	logger := h.log(r.Context(), "ListByFuncionario", "funcionario_id", id)

	entries, err := h.service.ListAgendamentosPorFuncionario(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "agenda list by funcionario failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "agenda listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAgendamentoDTOs(entries))
}

// Delete handles DELETE /api/agenda/{ref}. The reference is either the entry
// identifier or, for older clients, its zero based list position.
func (h *AgendaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ref, ok := AgendaRefFromContext(r.Context())
	if !ok || strings.TrimSpace(ref) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing agendamento reference for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAgendamentoRef)
		return
	}

	logger := h.log(r.Context(), "Delete", "ref", ref)

	if err := h.service.DeleteAgendamento(r.Context(), ref); err != nil {
		logger.ErrorContext(r.Context(), "agendamento delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "agendamento deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// DadosCompletos handles GET /api/dados-completos.
func (h *AgendaHandler) DadosCompletos(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "DadosCompletos")

	dados, err := h.service.DadosCompletos(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "full document load failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, dadosCompletosDTO{
		Funcionarios: toFuncionarioDTOs(dados.Funcionarios),
		Tarefas:      toTarefaDTOs(dados.Tarefas),
		Agenda:       toAgendamentoDTOs(dados.Agenda),
	})
}

type agendamentoRequest struct {
	Horario     string  `json:"horario"`
	Funcionario string  `json:"funcionario"`
	Tarefa      string  `json:"tarefa"`
	Data        *string `json:"data"`
}

func (r agendamentoRequest) toInput() application.AgendamentoInput {
	return application.AgendamentoInput{
		Horario:       strings.TrimSpace(r.Horario),
		FuncionarioID: strings.TrimSpace(r.Funcionario),
		TarefaID:      strings.TrimSpace(r.Tarefa),
		Data:          r.Data,
	}
}

type agendamentoDTO struct {
	ID          string  `json:"id"`
	Horario     string  `json:"horario"`
	Funcionario string  `json:"funcionario"`
	Tarefa      string  `json:"tarefa"`
	Data        *string `json:"data,omitempty"`
}

func toAgendamentoDTO(entry application.AgendamentoView) agendamentoDTO {
	return agendamentoDTO{
		ID:          entry.ID,
		Horario:     entry.Horario,
		Funcionario: entry.FuncionarioID,
		Tarefa:      entry.TarefaID,
		Data:        entry.Data,
	}
}

func toAgendamentoDTOs(entries []application.AgendamentoView) []agendamentoDTO {
	out := make([]agendamentoDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toAgendamentoDTO(entry))
	}
	return out
}

type dadosCompletosDTO struct {
	Funcionarios []funcionarioDTO `json:"funcionarios"`
	Tarefas      []tarefaDTO      `json:"tarefas"`
	Agenda       []agendamentoDTO `json:"agenda"`
}
