package http

import "context"

type contextKey string

const (
	funcionarioIDContextKey contextKey = "funcionario_id"
	tarefaIDContextKey      contextKey = "tarefa_id"
	agendaRefContextKey     contextKey = "agenda_ref"
)

// ContextWithFuncionarioID injects the employee identifier resolved from the request path.
func ContextWithFuncionarioID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, funcionarioIDContextKey, id)
}

// FuncionarioIDFromContext extracts an employee identifier previously associated with the context.
func FuncionarioIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(funcionarioIDContextKey).(string)
	return id, ok
}

// ContextWithTarefaID injects the task identifier resolved from the request path.
func ContextWithTarefaID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tarefaIDContextKey, id)
}

// TarefaIDFromContext extracts a task identifier previously associated with the context.
func TarefaIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tarefaIDContextKey).(string)
	return id, ok
}

// ContextWithAgendaRef injects the agenda entry reference resolved from the
// request path. The reference is either a generated identifier or a legacy
// list position.
func ContextWithAgendaRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, agendaRefContextKey, ref)
}

// AgendaRefFromContext extracts an agenda entry reference previously associated with the context.
func AgendaRefFromContext(ctx context.Context) (string, bool) {
	ref, ok := ctx.Value(agendaRefContextKey).(string)
	return ref, ok
}
