package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/workspace-agenda/internal/calendar"
	"github.com/example/workspace-agenda/internal/persistence"
)

// CalendarConnector captures the OAuth lifecycle operations the service needs.
type CalendarConnector interface {
	Configured() bool
	Connected(ctx context.Context) (bool, error)
	AuthURL(ctx context.Context) (string, error)
	Exchange(ctx context.Context, state, code string) error
	Disconnect(ctx context.Context) error
}

// CalendarBridge captures the synchronization passes the service needs.
type CalendarBridge interface {
	Push(ctx context.Context, entries []calendar.Entry) (calendar.Report, error)
	Pull(ctx context.Context) ([]calendar.Event, error)
	Calendars(ctx context.Context) ([]calendar.CalendarInfo, error)
}

// SyncService orchestrates the Google Calendar connection and the agenda
// synchronization passes built on top of it.
type SyncService struct {
	agenda       persistence.AgendaRepository
	funcionarios persistence.FuncionarioRepository
	tarefas      persistence.TarefaRepository
	syncState    persistence.SyncStateRepository
	connector    CalendarConnector
	bridge       CalendarBridge
	calendarID   string
	logger       *slog.Logger
}

// NewSyncService constructs a sync service with the provided dependencies.
func NewSyncService(agenda persistence.AgendaRepository, funcionarios persistence.FuncionarioRepository, tarefas persistence.TarefaRepository, syncState persistence.SyncStateRepository, connector CalendarConnector, bridge CalendarBridge, calendarID string) *SyncService {
	return NewSyncServiceWithLogger(agenda, funcionarios, tarefas, syncState, connector, bridge, calendarID, nil)
}

// NewSyncServiceWithLogger constructs a sync service with a specified logger.
func NewSyncServiceWithLogger(agenda persistence.AgendaRepository, funcionarios persistence.FuncionarioRepository, tarefas persistence.TarefaRepository, syncState persistence.SyncStateRepository, connector CalendarConnector, bridge CalendarBridge, calendarID string, logger *slog.Logger) *SyncService {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &SyncService{
		agenda:       agenda,
		funcionarios: funcionarios,
		tarefas:      tarefas,
		syncState:    syncState,
		connector:    connector,
		bridge:       bridge,
		calendarID:   calendarID,
		logger:       defaultLogger(logger),
	}
}

func (s *SyncService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SyncService", operation, attrs...)
}

// Status reports whether an account is connected and which calendar is targeted.
func (s *SyncService) Status(ctx context.Context) (ConnectionStatus, error) {
	if s == nil {
		return ConnectionStatus{}, fmt.Errorf("SyncService is nil")
	}

	connected, err := s.connector.Connected(ctx)
	if err != nil {
		return ConnectionStatus{}, err
	}
	return ConnectionStatus{Connected: connected, CalendarID: s.calendarID}, nil
}

// Connect starts an authorization attempt and returns the consent URL.
func (s *SyncService) Connect(ctx context.Context) (authURL string, err error) {
	if s == nil {
		err = fmt.Errorf("SyncService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Connect")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to start authorization", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "authorization started")
	}()

	authURL, err = s.connector.AuthURL(ctx)
	return
}

// CompleteAuthorization redeems the OAuth callback.
func (s *SyncService) CompleteAuthorization(ctx context.Context, state, code string) error {
	if s == nil {
		return fmt.Errorf("SyncService is nil")
	}

	logger := s.loggerWith(ctx, "CompleteAuthorization")

	if strings.TrimSpace(state) == "" || strings.TrimSpace(code) == "" {
		vErr := &ValidationError{}
		if strings.TrimSpace(state) == "" {
			vErr.add("state", "campo obrigatório")
		}
		if strings.TrimSpace(code) == "" {
			vErr.add("code", "campo obrigatório")
		}
		return vErr
	}

	if err := s.connector.Exchange(ctx, state, code); err != nil {
		logger.ErrorContext(ctx, "failed to complete authorization", "error", err)
		return err
	}

	logger.InfoContext(ctx, "account connected")
	return nil
}

// Disconnect forgets the stored credentials and every event mapping, so a
// later reconnect starts from a clean slate.
func (s *SyncService) Disconnect(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("SyncService is nil")
	}

	logger := s.loggerWith(ctx, "Disconnect")

	if err := s.connector.Disconnect(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to disconnect", "error", err)
		return err
	}

	mappings, err := s.syncState.ListMappings(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list mappings", "error", err)
		return err
	}
	for _, mapping := range mappings {
		if err := s.syncState.DeleteMapping(ctx, mapping.EntryID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
			logger.WarnContext(ctx, "failed to drop event mapping", "entry_id", mapping.EntryID, "error", err)
		}
	}

	logger.With("dropped_mappings", len(mappings)).InfoContext(ctx, "account disconnected")
	return nil
}

// PushAgenda mirrors the whole local agenda onto the remote calendar.
func (s *SyncService) PushAgenda(ctx context.Context) (report SyncReport, err error) {
	if s == nil {
		err = fmt.Errorf("SyncService is nil")
		return
	}

	logger := s.loggerWith(ctx, "PushAgenda")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to push agenda", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"created", report.Created,
			"updated", report.Updated,
			"errors", report.Errors,
		).InfoContext(ctx, "agenda pushed")
	}()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return
	}

	raw, err := s.bridge.Push(ctx, entries)
	if err != nil {
		err = mapBridgeError(err)
		return
	}

	report = SyncReport{
		Created: raw.Created,
		Updated: raw.Updated,
		Errors:  raw.Errors,
		Details: raw.Details,
	}
	return
}

// PullEvents returns the external remote events within the sync window; the
// system's own pushed events are filtered out by the bridge. An unconnected
// account yields an empty result, not an error, so read-only views degrade
// gracefully.
func (s *SyncService) PullEvents(ctx context.Context) (events []RemoteEvent, err error) {
	if s == nil {
		err = fmt.Errorf("SyncService is nil")
		return
	}

	logger := s.loggerWith(ctx, "PullEvents")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to pull events", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	raw, err := s.bridge.Pull(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrNotConnected) {
			err = nil
			return []RemoteEvent{}, nil
		}
		return
	}

	events = make([]RemoteEvent, 0, len(raw))
	for _, event := range raw {
		events = append(events, RemoteEvent{
			ID:        event.ID,
			Titulo:    event.Summary,
			Descricao: event.Description,
			Inicio:    event.Start,
			Fim:       event.End,
			Origem:    "google_calendar",
		})
	}
	return
}

// ListCalendars returns the calendars of the connected account, or an empty
// list when no account is connected.
func (s *SyncService) ListCalendars(ctx context.Context) ([]CalendarOption, error) {
	if s == nil {
		return nil, fmt.Errorf("SyncService is nil")
	}

	raw, err := s.bridge.Calendars(ctx)
	if err != nil {
		if errors.Is(err, calendar.ErrNotConnected) {
			return []CalendarOption{}, nil
		}
		return nil, err
	}

	options := make([]CalendarOption, 0, len(raw))
	for _, info := range raw {
		options = append(options, CalendarOption{
			ID:       info.ID,
			Nome:     info.Summary,
			Primario: info.Primary,
		})
	}
	return options, nil
}

// loadEntries resolves the agenda against employees and tasks so the bridge
// can build event payloads. Entries with dangling references are skipped;
// cascade deletes make them rare, but the two backends can drift under
// concurrent edits.
func (s *SyncService) loadEntries(ctx context.Context) ([]calendar.Entry, error) {
	agenda, err := s.agenda.ListAgendamentos(ctx)
	if err != nil {
		return nil, err
	}
	funcionarios, err := s.funcionarios.ListFuncionarios(ctx)
	if err != nil {
		return nil, err
	}
	tarefas, err := s.tarefas.ListTarefas(ctx)
	if err != nil {
		return nil, err
	}

	funcionariosByID := make(map[string]persistence.Funcionario, len(funcionarios))
	for _, funcionario := range funcionarios {
		funcionariosByID[funcionario.ID] = funcionario
	}
	tarefasByID := make(map[string]persistence.Tarefa, len(tarefas))
	for _, tarefa := range tarefas {
		tarefasByID[tarefa.ID] = tarefa
	}

	entries := make([]calendar.Entry, 0, len(agenda))
	for _, entry := range agenda {
		funcionario, okFuncionario := funcionariosByID[entry.FuncionarioID]
		tarefa, okTarefa := tarefasByID[entry.TarefaID]
		if !okFuncionario || !okTarefa {
			continue
		}
		entries = append(entries, calendar.Entry{
			ID:              entry.ID,
			Horario:         entry.Horario,
			Data:            cloneString(entry.Data),
			FuncionarioNome: funcionario.Nome,
			TarefaNome:      tarefa.Nome,
			Categoria:       tarefa.Categoria,
			TempoEstimado:   tarefa.TempoEstimado,
		})
	}
	return entries, nil
}

func mapBridgeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, calendar.ErrNotConnected) {
		return ErrNotConnected
	}
	return err
}
