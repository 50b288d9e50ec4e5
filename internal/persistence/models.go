package persistence

import "time"

// Funcionario represents an employee in the workspace agenda domain.
type Funcionario struct {
	ID            string
	Nome          string
	HorarioInicio string
	HorarioFim    string
	Cor           string
}

// Tarefa represents a task type that can be assigned to employees.
type Tarefa struct {
	ID            string
	Nome          string
	Categoria     string
	TempoEstimado int
	Descricao     string
	Prioridade    string
}

// Agendamento represents one scheduled assignment of a task to an employee.
//
// Entries carry a generated identifier so deletion does not depend on list
// position. Data is an optional calendar date in YYYY-MM-DD form; Horario is
// the free-form time-of-day slot the agenda document stores.
type Agendamento struct {
	ID            string
	Horario       string
	FuncionarioID string
	TarefaID      string
	Data          *string
}

// EventMapping correlates a local agenda entry with a remote calendar event.
type EventMapping struct {
	EntryID       string
	RemoteEventID string
	CalendarID    string
	UpdatedAt     time.Time
}

// OAuthToken holds a serialized oauth2 token for a connected account.
type OAuthToken struct {
	Account   string
	TokenJSON []byte
	UpdatedAt time.Time
}

// PendingAuth tracks an in-flight authorization attempt by its state token.
type PendingAuth struct {
	State     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
