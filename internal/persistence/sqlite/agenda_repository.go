package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/workspace-agenda/internal/persistence"
)

// AgendaRepository implements persistence.AgendaRepository using SQLite.
type AgendaRepository struct {
	db *DB
}

// NewAgendaRepository creates a SQLite agenda repository.
func NewAgendaRepository(db *DB) *AgendaRepository {
	return &AgendaRepository{db: db}
}

// CreateAgendamento inserts a new agenda entry. Referential integrity against
// funcionarios and tarefas is enforced by the schema's foreign keys.
func (r *AgendaRepository) CreateAgendamento(ctx context.Context, entry persistence.Agendamento) error {
	query := `
		INSERT INTO agenda (id, horario, funcionario_id, tarefa_id, data)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		entry.ID,
		entry.Horario,
		entry.FuncionarioID,
		entry.TarefaID,
		nullableString(entry.Data),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// ListAgendamentos returns all agenda entries in insertion order.
func (r *AgendaRepository) ListAgendamentos(ctx context.Context) ([]persistence.Agendamento, error) {
	return r.list(ctx, `
		SELECT id, horario, funcionario_id, tarefa_id, data
		FROM agenda
		ORDER BY rowid ASC
	`)
}

// ListAgendamentosPorFuncionario returns entries for one employee.
func (r *AgendaRepository) ListAgendamentosPorFuncionario(ctx context.Context, funcionarioID string) ([]persistence.Agendamento, error) {
	return r.list(ctx, `
		SELECT id, horario, funcionario_id, tarefa_id, data
		FROM agenda
		WHERE funcionario_id = ?
		ORDER BY rowid ASC
	`, funcionarioID)
}

func (r *AgendaRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Agendamento, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	entries := make([]persistence.Agendamento, 0)
	for rows.Next() {
		var entry persistence.Agendamento
		var data sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.Horario,
			&entry.FuncionarioID,
			&entry.TarefaID,
			&data,
		); err != nil {
			return nil, mapError(err)
		}
		if data.Valid {
			value := data.String
			entry.Data = &value
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return entries, nil
}

// DeleteAgendamento removes an entry by its generated identifier.
func (r *AgendaRepository) DeleteAgendamento(ctx context.Context, id string) error {
	result, err := r.db.db.ExecContext(ctx, "DELETE FROM agenda WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteAgendamentoByIndex removes the entry at the given position in
// insertion order. Positional addressing is racy by nature; the method exists
// for compatibility with clients that still delete by index.
func (r *AgendaRepository) DeleteAgendamentoByIndex(ctx context.Context, index int) (string, error) {
	if index < 0 {
		return "", persistence.ErrNotFound
	}

	var removedID string
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT id FROM agenda ORDER BY rowid ASC LIMIT 1 OFFSET ?", index)
		if err := row.Scan(&removedID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM agenda WHERE id = ?", removedID); err != nil {
			return mapError(err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return removedID, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
