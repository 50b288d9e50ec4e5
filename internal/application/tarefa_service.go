package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/workspace-agenda/internal/persistence"
)

// TarefaService orchestrates validation and persistence for task types.
type TarefaService struct {
	tarefas   persistence.TarefaRepository
	syncState persistence.SyncStateRepository
	logger    *slog.Logger
}

// NewTarefaService constructs a task service with the provided dependencies.
func NewTarefaService(tarefas persistence.TarefaRepository, syncState persistence.SyncStateRepository) *TarefaService {
	return NewTarefaServiceWithLogger(tarefas, syncState, nil)
}

// NewTarefaServiceWithLogger constructs a task service with a specified logger.
func NewTarefaServiceWithLogger(tarefas persistence.TarefaRepository, syncState persistence.SyncStateRepository, logger *slog.Logger) *TarefaService {
	return &TarefaService{tarefas: tarefas, syncState: syncState, logger: defaultLogger(logger)}
}

func (s *TarefaService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TarefaService", operation, attrs...)
}

// CreateTarefa validates input and persists a new task type.
func (s *TarefaService) CreateTarefa(ctx context.Context, input TarefaInput) (view TarefaView, err error) {
	if s == nil {
		err = fmt.Errorf("TarefaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTarefa", "tarefa_id", input.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create tarefa", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "tarefa created")
	}()

	vErr := validateTarefaInput(input, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	tarefa := persistence.Tarefa{
		ID:            strings.TrimSpace(input.ID),
		Nome:          strings.TrimSpace(input.Nome),
		Categoria:     strings.TrimSpace(input.Categoria),
		TempoEstimado: input.TempoEstimado,
		Descricao:     strings.TrimSpace(input.Descricao),
		Prioridade:    strings.TrimSpace(input.Prioridade),
	}

	if err = s.tarefas.CreateTarefa(ctx, tarefa); err != nil {
		err = mapRepoError(err)
		return
	}

	view = toTarefaView(tarefa)
	return
}

// UpdateTarefa validates input and updates an existing task type. The
// identifier in the path always wins over any identifier in the payload.
func (s *TarefaService) UpdateTarefa(ctx context.Context, id string, input TarefaInput) (view TarefaView, err error) {
	if s == nil {
		err = fmt.Errorf("TarefaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTarefa", "tarefa_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update tarefa", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "tarefa updated")
	}()

	vErr := validateTarefaInput(input, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	tarefa := persistence.Tarefa{
		ID:            id,
		Nome:          strings.TrimSpace(input.Nome),
		Categoria:     strings.TrimSpace(input.Categoria),
		TempoEstimado: input.TempoEstimado,
		Descricao:     strings.TrimSpace(input.Descricao),
		Prioridade:    strings.TrimSpace(input.Prioridade),
	}

	if err = s.tarefas.UpdateTarefa(ctx, tarefa); err != nil {
		err = mapRepoError(err)
		return
	}

	view = toTarefaView(tarefa)
	return
}

// GetTarefa retrieves a single task type by identifier.
func (s *TarefaService) GetTarefa(ctx context.Context, id string) (TarefaView, error) {
	if s == nil {
		return TarefaView{}, fmt.Errorf("TarefaService is nil")
	}

	tarefa, err := s.tarefas.GetTarefa(ctx, id)
	if err != nil {
		return TarefaView{}, mapRepoError(err)
	}
	return toTarefaView(tarefa), nil
}

// ListTarefas returns all task types in insertion order.
func (s *TarefaService) ListTarefas(ctx context.Context) (views []TarefaView, err error) {
	if s == nil {
		err = fmt.Errorf("TarefaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListTarefas")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list tarefas", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	tarefas, err := s.tarefas.ListTarefas(ctx)
	if err != nil {
		return nil, err
	}

	views = make([]TarefaView, 0, len(tarefas))
	for _, tarefa := range tarefas {
		views = append(views, toTarefaView(tarefa))
	}
	return views, nil
}

// DeleteTarefa removes a task type, its agenda entries, and any remote event
// mappings left behind by the cascade.
func (s *TarefaService) DeleteTarefa(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("TarefaService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteTarefa", "tarefa_id", id)

	removed, err := s.tarefas.DeleteTarefa(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete tarefa", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	pruneMappings(ctx, s.syncState, removed, logger)
	logger.With("removed_entries", len(removed)).InfoContext(ctx, "tarefa deleted")
	return nil
}

func validateTarefaInput(input TarefaInput, requireID bool) *ValidationError {
	vErr := &ValidationError{}

	if requireID && strings.TrimSpace(input.ID) == "" {
		vErr.add("id", "campo obrigatório")
	}
	if strings.TrimSpace(input.Nome) == "" {
		vErr.add("nome", "campo obrigatório")
	}
	if strings.TrimSpace(input.Categoria) == "" {
		vErr.add("categoria", "campo obrigatório")
	}
	if input.TempoEstimado <= 0 {
		vErr.add("tempoEstimado", "deve ser um número inteiro positivo")
	}
	if strings.TrimSpace(input.Descricao) == "" {
		vErr.add("descricao", "campo obrigatório")
	}
	if strings.TrimSpace(input.Prioridade) == "" {
		vErr.add("prioridade", "campo obrigatório")
	}

	return vErr
}

func toTarefaView(tarefa persistence.Tarefa) TarefaView {
	return TarefaView{
		ID:            tarefa.ID,
		Nome:          tarefa.Nome,
		Categoria:     tarefa.Categoria,
		TempoEstimado: tarefa.TempoEstimado,
		Descricao:     tarefa.Descricao,
		Prioridade:    tarefa.Prioridade,
	}
}
