package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/workspace-agenda/internal/persistence"
)

// TarefaRepository implements persistence.TarefaRepository using SQLite.
type TarefaRepository struct {
	db *DB
}

// NewTarefaRepository creates a SQLite task repository.
func NewTarefaRepository(db *DB) *TarefaRepository {
	return &TarefaRepository{db: db}
}

// CreateTarefa inserts a new task type.
func (r *TarefaRepository) CreateTarefa(ctx context.Context, tarefa persistence.Tarefa) error {
	query := `
		INSERT INTO tarefas (id, nome, categoria, tempo_estimado, descricao, prioridade)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		tarefa.ID,
		tarefa.Nome,
		tarefa.Categoria,
		tarefa.TempoEstimado,
		tarefa.Descricao,
		tarefa.Prioridade,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateTarefa updates an existing task type.
func (r *TarefaRepository) UpdateTarefa(ctx context.Context, tarefa persistence.Tarefa) error {
	query := `
		UPDATE tarefas
		SET nome = ?, categoria = ?, tempo_estimado = ?, descricao = ?, prioridade = ?
		WHERE id = ?
	`

	result, err := r.db.db.ExecContext(ctx, query,
		tarefa.Nome,
		tarefa.Categoria,
		tarefa.TempoEstimado,
		tarefa.Descricao,
		tarefa.Prioridade,
		tarefa.ID,
	)
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

// GetTarefa retrieves a task type by ID.
func (r *TarefaRepository) GetTarefa(ctx context.Context, id string) (persistence.Tarefa, error) {
	query := `
		SELECT id, nome, categoria, tempo_estimado, descricao, prioridade
		FROM tarefas
		WHERE id = ?
	`

	var tarefa persistence.Tarefa
	err := r.db.db.QueryRowContext(ctx, query, id).Scan(
		&tarefa.ID,
		&tarefa.Nome,
		&tarefa.Categoria,
		&tarefa.TempoEstimado,
		&tarefa.Descricao,
		&tarefa.Prioridade,
	)
	if err != nil {
		return persistence.Tarefa{}, mapError(err)
	}
	return tarefa, nil
}

// ListTarefas returns all task types in insertion order.
func (r *TarefaRepository) ListTarefas(ctx context.Context) ([]persistence.Tarefa, error) {
	query := `
		SELECT id, nome, categoria, tempo_estimado, descricao, prioridade
		FROM tarefas
		ORDER BY rowid ASC
	`

	rows, err := r.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	tarefas := make([]persistence.Tarefa, 0)
	for rows.Next() {
		var tarefa persistence.Tarefa
		if err := rows.Scan(
			&tarefa.ID,
			&tarefa.Nome,
			&tarefa.Categoria,
			&tarefa.TempoEstimado,
			&tarefa.Descricao,
			&tarefa.Prioridade,
		); err != nil {
			return nil, mapError(err)
		}
		tarefas = append(tarefas, tarefa)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return tarefas, nil
}

// DeleteTarefa removes a task type and cascades to agenda entries.
func (r *TarefaRepository) DeleteTarefa(ctx context.Context, id string) ([]string, error) {
	var removed []string
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT id FROM agenda WHERE tarefa_id = ?", id)
		if err != nil {
			return mapError(err)
		}
		removed, err = collectIDs(rows)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM agenda WHERE tarefa_id = ?", id); err != nil {
			return mapError(err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM tarefas WHERE id = ?", id)
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
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
