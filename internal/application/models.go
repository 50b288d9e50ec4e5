package application

import "time"

// FuncionarioInput captures caller provided employee fields. Identifiers are
// chosen by the caller, matching the document format the frontend edits.
type FuncionarioInput struct {
	ID            string
	Nome          string
	HorarioInicio string
	HorarioFim    string
	Cor           string
}

// TarefaInput captures caller provided task type fields.
type TarefaInput struct {
	ID            string
	Nome          string
	Categoria     string
	TempoEstimado int
	Descricao     string
	Prioridade    string
}

// AgendamentoInput captures caller provided assignment fields. The entry
// identifier is generated server side.
type AgendamentoInput struct {
	Horario       string
	FuncionarioID string
	TarefaID      string
	Data          *string
}

// DadosCompletos aggregates the whole agenda document in one payload.
type DadosCompletos struct {
	Funcionarios []FuncionarioView
	Tarefas      []TarefaView
	Agenda       []AgendamentoView
}

// FuncionarioView is the employee representation returned by the services.
type FuncionarioView struct {
	ID            string
	Nome          string
	HorarioInicio string
	HorarioFim    string
	Cor           string
}

// TarefaView is the task type representation returned by the services.
type TarefaView struct {
	ID            string
	Nome          string
	Categoria     string
	TempoEstimado int
	Descricao     string
	Prioridade    string
}

// AgendamentoView is the assignment representation returned by the services.
type AgendamentoView struct {
	ID            string
	Horario       string
	FuncionarioID string
	TarefaID      string
	Data          *string
}

// ConnectionStatus describes the calendar bridge connection for status endpoints.
type ConnectionStatus struct {
	Connected  bool
	CalendarID string
}

// RemoteEvent is a remote calendar event as surfaced by the pull operation.
type RemoteEvent struct {
	ID        string
	Titulo    string
	Descricao string
	Inicio    time.Time
	Fim       time.Time
	Origem    string
}

// CalendarOption identifies one calendar available on the connected account.
type CalendarOption struct {
	ID       string
	Nome     string
	Primario bool
}

// SyncReport summarizes one push of local entries to the remote calendar.
type SyncReport struct {
	Created int
	Updated int
	Errors  int
	Details []string
}
