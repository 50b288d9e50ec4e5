package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/workspace-agenda/internal/persistence"
)

// AgendaService orchestrates validation and persistence for scheduled assignments.
type AgendaService struct {
	agenda       persistence.AgendaRepository
	funcionarios persistence.FuncionarioRepository
	tarefas      persistence.TarefaRepository
	syncState    persistence.SyncStateRepository
	idGenerator  func() string
	logger       *slog.Logger
}

// NewAgendaService constructs an agenda service with the provided dependencies.
func NewAgendaService(agenda persistence.AgendaRepository, funcionarios persistence.FuncionarioRepository, tarefas persistence.TarefaRepository, syncState persistence.SyncStateRepository, idGenerator func() string) *AgendaService {
	return NewAgendaServiceWithLogger(agenda, funcionarios, tarefas, syncState, idGenerator, nil)
}

// NewAgendaServiceWithLogger constructs an agenda service with a specified logger.
func NewAgendaServiceWithLogger(agenda persistence.AgendaRepository, funcionarios persistence.FuncionarioRepository, tarefas persistence.TarefaRepository, syncState persistence.SyncStateRepository, idGenerator func() string, logger *slog.Logger) *AgendaService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &AgendaService{
		agenda:       agenda,
		funcionarios: funcionarios,
		tarefas:      tarefas,
		syncState:    syncState,
		idGenerator:  idGenerator,
		logger:       defaultLogger(logger),
	}
}

func (s *AgendaService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AgendaService", operation, attrs...)
}

// CreateAgendamento validates input, verifies references, and persists a new
// assignment with a generated identifier.
func (s *AgendaService) CreateAgendamento(ctx context.Context, input AgendamentoInput) (view AgendamentoView, err error) {
	if s == nil {
		err = fmt.Errorf("AgendaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateAgendamento",
		"funcionario_id", input.FuncionarioID,
		"tarefa_id", input.TarefaID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create agendamento", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("entry_id", view.ID).InfoContext(ctx, "agendamento created")
	}()

	vErr := validateAgendamentoInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	refErr, checkErr := s.checkReferences(ctx, input)
	if checkErr != nil {
		err = checkErr
		return
	}
	vErr.merge(refErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	entry := persistence.Agendamento{
		ID:            s.idGenerator(),
		Horario:       strings.TrimSpace(input.Horario),
		FuncionarioID: strings.TrimSpace(input.FuncionarioID),
		TarefaID:      strings.TrimSpace(input.TarefaID),
		Data:          normalizeOptionalString(input.Data),
	}

	if err = s.agenda.CreateAgendamento(ctx, entry); err != nil {
		// The existence checks above race with concurrent deletes; the
		// storage level constraint is the final word.
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			vErr = &ValidationError{}
			vErr.add("funcionario", "funcionário não encontrado")
			err = vErr
			return
		}
		err = mapRepoError(err)
		return
	}

	view = toAgendamentoView(entry)
	return
}

// ListAgendamentos returns all assignments in insertion order.
func (s *AgendaService) ListAgendamentos(ctx context.Context) (views []AgendamentoView, err error) {
	if s == nil {
		err = fmt.Errorf("AgendaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListAgendamentos")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list agendamentos", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	entries, err := s.agenda.ListAgendamentos(ctx)
	if err != nil {
		return nil, err
	}
	return toAgendamentoViews(entries), nil
}

// ListAgendamentosPorFuncionario returns the assignments of one employee. The
// employee must exist; an unknown identifier is reported as not found rather
// than as an empty agenda.
func (s *AgendaService) ListAgendamentosPorFuncionario(ctx context.Context, funcionarioID string) (views []AgendamentoView, err error) {
	if s == nil {
		err = fmt.Errorf("AgendaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListAgendamentosPorFuncionario", "funcionario_id", funcionarioID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list agendamentos", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if _, err = s.funcionarios.GetFuncionario(ctx, funcionarioID); err != nil {
		err = mapRepoError(err)
		return
	}

	entries, err := s.agenda.ListAgendamentosPorFuncionario(ctx, funcionarioID)
	if err != nil {
		return nil, err
	}
	return toAgendamentoViews(entries), nil
}

// DeleteAgendamento removes an assignment addressed either by its generated
// identifier or, as a legacy fallback, by its zero based list position.
func (s *AgendaService) DeleteAgendamento(ctx context.Context, ref string) error {
	if s == nil {
		return fmt.Errorf("AgendaService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteAgendamento", "ref", ref)

	removedID := ref
	err := s.agenda.DeleteAgendamento(ctx, ref)
	if errors.Is(err, persistence.ErrNotFound) {
		if index, convErr := strconv.Atoi(ref); convErr == nil {
			removedID, err = s.agenda.DeleteAgendamentoByIndex(ctx, index)
		}
	}
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete agendamento", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	pruneMappings(ctx, s.syncState, []string{removedID}, logger)
	logger.With("entry_id", removedID).InfoContext(ctx, "agendamento deleted")
	return nil
}

// DadosCompletos loads the full document: employees, task types, and agenda.
func (s *AgendaService) DadosCompletos(ctx context.Context) (dados DadosCompletos, err error) {
	if s == nil {
		err = fmt.Errorf("AgendaService is nil")
		return
	}

	logger := s.loggerWith(ctx, "DadosCompletos")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load full document", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	funcionarios, err := s.funcionarios.ListFuncionarios(ctx)
	if err != nil {
		return DadosCompletos{}, err
	}
	tarefas, err := s.tarefas.ListTarefas(ctx)
	if err != nil {
		return DadosCompletos{}, err
	}
	entries, err := s.agenda.ListAgendamentos(ctx)
	if err != nil {
		return DadosCompletos{}, err
	}

	dados.Funcionarios = make([]FuncionarioView, 0, len(funcionarios))
	for _, funcionario := range funcionarios {
		dados.Funcionarios = append(dados.Funcionarios, toFuncionarioView(funcionario))
	}
	dados.Tarefas = make([]TarefaView, 0, len(tarefas))
	for _, tarefa := range tarefas {
		dados.Tarefas = append(dados.Tarefas, toTarefaView(tarefa))
	}
	dados.Agenda = toAgendamentoViews(entries)
	return dados, nil
}

func (s *AgendaService) checkReferences(ctx context.Context, input AgendamentoInput) (*ValidationError, error) {
	vErr := &ValidationError{}

	if _, err := s.funcionarios.GetFuncionario(ctx, strings.TrimSpace(input.FuncionarioID)); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("funcionario", "funcionário não encontrado")
		} else {
			return nil, err
		}
	}
	if _, err := s.tarefas.GetTarefa(ctx, strings.TrimSpace(input.TarefaID)); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr.add("tarefa", "tarefa não encontrada")
		} else {
			return nil, err
		}
	}
	return vErr, nil
}

func validateAgendamentoInput(input AgendamentoInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Horario) == "" {
		vErr.add("horario", "campo obrigatório")
	}
	if strings.TrimSpace(input.FuncionarioID) == "" {
		vErr.add("funcionario", "campo obrigatório")
	}
	if strings.TrimSpace(input.TarefaID) == "" {
		vErr.add("tarefa", "campo obrigatório")
	}
	if input.Data != nil && strings.TrimSpace(*input.Data) != "" {
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(*input.Data)); err != nil {
			vErr.add("data", "data inválida, use o formato AAAA-MM-DD")
		}
	}

	return vErr
}

func toAgendamentoView(entry persistence.Agendamento) AgendamentoView {
	return AgendamentoView{
		ID:            entry.ID,
		Horario:       entry.Horario,
		FuncionarioID: entry.FuncionarioID,
		TarefaID:      entry.TarefaID,
		Data:          cloneString(entry.Data),
	}
}

func toAgendamentoViews(entries []persistence.Agendamento) []AgendamentoView {
	views := make([]AgendamentoView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, toAgendamentoView(entry))
	}
	return views
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
