package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/workspace-agenda/internal/persistence"
)

// FuncionarioService orchestrates validation and persistence for employees.
type FuncionarioService struct {
	funcionarios persistence.FuncionarioRepository
	syncState    persistence.SyncStateRepository
	logger       *slog.Logger
}

// NewFuncionarioService constructs an employee service with the provided dependencies.
func NewFuncionarioService(funcionarios persistence.FuncionarioRepository, syncState persistence.SyncStateRepository) *FuncionarioService {
	return NewFuncionarioServiceWithLogger(funcionarios, syncState, nil)
}

// NewFuncionarioServiceWithLogger constructs an employee service with a specified logger.
func NewFuncionarioServiceWithLogger(funcionarios persistence.FuncionarioRepository, syncState persistence.SyncStateRepository, logger *slog.Logger) *FuncionarioService {
	return &FuncionarioService{funcionarios: funcionarios, syncState: syncState, logger: defaultLogger(logger)}
}

func (s *FuncionarioService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "FuncionarioService", operation, attrs...)
}

// CreateFuncionario validates input and persists a new employee.
func (s *FuncionarioService) CreateFuncionario(ctx context.Context, input FuncionarioInput) (view FuncionarioView, err error) {
	if s == nil {
		err = fmt.Errorf("FuncionarioService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateFuncionario", "funcionario_id", input.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create funcionario", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "funcionario created")
	}()

	vErr := validateFuncionarioInput(input, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	funcionario := persistence.Funcionario{
		ID:            strings.TrimSpace(input.ID),
		Nome:          strings.TrimSpace(input.Nome),
		HorarioInicio: strings.TrimSpace(input.HorarioInicio),
		HorarioFim:    strings.TrimSpace(input.HorarioFim),
		Cor:           strings.TrimSpace(input.Cor),
	}

	if err = s.funcionarios.CreateFuncionario(ctx, funcionario); err != nil {
		err = mapRepoError(err)
		return
	}

	view = toFuncionarioView(funcionario)
	return
}

// UpdateFuncionario validates input and updates an existing employee. The
// identifier in the path always wins over any identifier in the payload.
func (s *FuncionarioService) UpdateFuncionario(ctx context.Context, id string, input FuncionarioInput) (view FuncionarioView, err error) {
	if s == nil {
		err = fmt.Errorf("FuncionarioService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateFuncionario", "funcionario_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update funcionario", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "funcionario updated")
	}()

	vErr := validateFuncionarioInput(input, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	funcionario := persistence.Funcionario{
		ID:            id,
		Nome:          strings.TrimSpace(input.Nome),
		HorarioInicio: strings.TrimSpace(input.HorarioInicio),
		HorarioFim:    strings.TrimSpace(input.HorarioFim),
		Cor:           strings.TrimSpace(input.Cor),
	}

	if err = s.funcionarios.UpdateFuncionario(ctx, funcionario); err != nil {
		err = mapRepoError(err)
		return
	}

	view = toFuncionarioView(funcionario)
	return
}

// GetFuncionario retrieves a single employee by identifier.
func (s *FuncionarioService) GetFuncionario(ctx context.Context, id string) (FuncionarioView, error) {
	if s == nil {
		return FuncionarioView{}, fmt.Errorf("FuncionarioService is nil")
	}

	funcionario, err := s.funcionarios.GetFuncionario(ctx, id)
	if err != nil {
		return FuncionarioView{}, mapRepoError(err)
	}
	return toFuncionarioView(funcionario), nil
}

// ListFuncionarios returns all employees in insertion order.
func (s *FuncionarioService) ListFuncionarios(ctx context.Context) (views []FuncionarioView, err error) {
	if s == nil {
		err = fmt.Errorf("FuncionarioService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListFuncionarios")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list funcionarios", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	funcionarios, err := s.funcionarios.ListFuncionarios(ctx)
	if err != nil {
		return nil, err
	}

	views = make([]FuncionarioView, 0, len(funcionarios))
	for _, funcionario := range funcionarios {
		views = append(views, toFuncionarioView(funcionario))
	}
	return views, nil
}

// DeleteFuncionario removes an employee, its agenda entries, and any remote
// event mappings left behind by the cascade.
func (s *FuncionarioService) DeleteFuncionario(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("FuncionarioService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteFuncionario", "funcionario_id", id)

	removed, err := s.funcionarios.DeleteFuncionario(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete funcionario", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	pruneMappings(ctx, s.syncState, removed, logger)
	logger.With("removed_entries", len(removed)).InfoContext(ctx, "funcionario deleted")
	return nil
}

func validateFuncionarioInput(input FuncionarioInput, requireID bool) *ValidationError {
	vErr := &ValidationError{}

	if requireID && strings.TrimSpace(input.ID) == "" {
		vErr.add("id", "campo obrigatório")
	}
	if strings.TrimSpace(input.Nome) == "" {
		vErr.add("nome", "campo obrigatório")
	}
	if strings.TrimSpace(input.HorarioInicio) == "" {
		vErr.add("horarioInicio", "campo obrigatório")
	}
	if strings.TrimSpace(input.HorarioFim) == "" {
		vErr.add("horarioFim", "campo obrigatório")
	}
	if strings.TrimSpace(input.Cor) == "" {
		vErr.add("cor", "campo obrigatório")
	}

	return vErr
}

func toFuncionarioView(funcionario persistence.Funcionario) FuncionarioView {
	return FuncionarioView{
		ID:            funcionario.ID,
		Nome:          funcionario.Nome,
		HorarioInicio: funcionario.HorarioInicio,
		HorarioFim:    funcionario.HorarioFim,
		Cor:           funcionario.Cor,
	}
}

// pruneMappings drops event mappings for agenda entries removed by a cascade.
// Failures are logged and swallowed; a stale mapping only costs one extra
// remote lookup on the next sync.
func pruneMappings(ctx context.Context, syncState persistence.SyncStateRepository, entryIDs []string, logger *slog.Logger) {
	if syncState == nil || len(entryIDs) == 0 {
		return
	}
	for _, entryID := range entryIDs {
		if err := syncState.DeleteMapping(ctx, entryID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
			logger.WarnContext(ctx, "failed to prune event mapping", "entry_id", entryID, "error", err)
		}
	}
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
