package persistence

import (
	"context"
	"time"
)

// FuncionarioRepository exposes CRUD operations for employees.
type FuncionarioRepository interface {
	CreateFuncionario(ctx context.Context, funcionario Funcionario) error
	UpdateFuncionario(ctx context.Context, funcionario Funcionario) error
	GetFuncionario(ctx context.Context, id string) (Funcionario, error)
	ListFuncionarios(ctx context.Context) ([]Funcionario, error)
	// DeleteFuncionario removes an employee and cascades to every agenda
	// entry referencing it. The ids of the removed entries are returned so
	// callers can prune dependent state such as event mappings.
	DeleteFuncionario(ctx context.Context, id string) ([]string, error)
}

// TarefaRepository exposes CRUD operations for task types.
type TarefaRepository interface {
	CreateTarefa(ctx context.Context, tarefa Tarefa) error
	UpdateTarefa(ctx context.Context, tarefa Tarefa) error
	GetTarefa(ctx context.Context, id string) (Tarefa, error)
	ListTarefas(ctx context.Context) ([]Tarefa, error)
	DeleteTarefa(ctx context.Context, id string) ([]string, error)
}

// AgendaRepository stores scheduled assignments.
type AgendaRepository interface {
	// CreateAgendamento fails with ErrForeignKeyViolation when the referenced
	// employee or task does not exist at creation time.
	CreateAgendamento(ctx context.Context, entry Agendamento) error
	ListAgendamentos(ctx context.Context) ([]Agendamento, error)
	ListAgendamentosPorFuncionario(ctx context.Context, funcionarioID string) ([]Agendamento, error)
	DeleteAgendamento(ctx context.Context, id string) error
	// DeleteAgendamentoByIndex removes the entry at the given list position.
	// Kept for compatibility with clients that address entries positionally.
	DeleteAgendamentoByIndex(ctx context.Context, index int) (string, error)
}

// SyncStateRepository persists calendar bridge state: the event mapping side
// table, the oauth2 token, and TTL bounded in-flight authorization attempts.
type SyncStateRepository interface {
	GetMapping(ctx context.Context, entryID string) (EventMapping, error)
	PutMapping(ctx context.Context, mapping EventMapping) error
	DeleteMapping(ctx context.Context, entryID string) error
	ListMappings(ctx context.Context) ([]EventMapping, error)

	GetToken(ctx context.Context, account string) (OAuthToken, error)
	PutToken(ctx context.Context, token OAuthToken) error
	DeleteToken(ctx context.Context, account string) error

	PutPendingAuth(ctx context.Context, pending PendingAuth) error
	// TakePendingAuth consumes a pending authorization attempt. Expired or
	// unknown states return ErrNotFound.
	TakePendingAuth(ctx context.Context, state string, now time.Time) (PendingAuth, error)
	PurgeExpiredPendingAuth(ctx context.Context, now time.Time) error
}
