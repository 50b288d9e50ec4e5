package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/workspace-agenda/internal/persistence"
)

// FuncionarioRepository implements persistence.FuncionarioRepository using SQLite.
type FuncionarioRepository struct {
	db *DB
}

// NewFuncionarioRepository creates a SQLite employee repository.
func NewFuncionarioRepository(db *DB) *FuncionarioRepository {
	return &FuncionarioRepository{db: db}
}

// CreateFuncionario inserts a new employee.
func (r *FuncionarioRepository) CreateFuncionario(ctx context.Context, funcionario persistence.Funcionario) error {
	query := `
		INSERT INTO funcionarios (id, nome, horario_inicio, horario_fim, cor)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.db.ExecContext(ctx, query,
		funcionario.ID,
		funcionario.Nome,
		funcionario.HorarioInicio,
		funcionario.HorarioFim,
		funcionario.Cor,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateFuncionario updates an existing employee.
func (r *FuncionarioRepository) UpdateFuncionario(ctx context.Context, funcionario persistence.Funcionario) error {
	query := `
		UPDATE funcionarios
		SET nome = ?, horario_inicio = ?, horario_fim = ?, cor = ?
		WHERE id = ?
	`

	result, err := r.db.db.ExecContext(ctx, query,
		funcionario.Nome,
		funcionario.HorarioInicio,
		funcionario.HorarioFim,
		funcionario.Cor,
		funcionario.ID,
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

// GetFuncionario retrieves an employee by ID.
func (r *FuncionarioRepository) GetFuncionario(ctx context.Context, id string) (persistence.Funcionario, error) {
	query := `
		SELECT id, nome, horario_inicio, horario_fim, cor
		FROM funcionarios
		WHERE id = ?
	`

	var funcionario persistence.Funcionario
	err := r.db.db.QueryRowContext(ctx, query, id).Scan(
		&funcionario.ID,
		&funcionario.Nome,
		&funcionario.HorarioInicio,
		&funcionario.HorarioFim,
		&funcionario.Cor,
	)
	if err != nil {
		return persistence.Funcionario{}, mapError(err)
	}
	return funcionario, nil
}

// ListFuncionarios returns all employees in insertion order.
func (r *FuncionarioRepository) ListFuncionarios(ctx context.Context) ([]persistence.Funcionario, error) {
	query := `
		SELECT id, nome, horario_inicio, horario_fim, cor
		FROM funcionarios
		ORDER BY rowid ASC
	`

	rows, err := r.db.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	funcionarios := make([]persistence.Funcionario, 0)
	for rows.Next() {
		var funcionario persistence.Funcionario
		if err := rows.Scan(
			&funcionario.ID,
			&funcionario.Nome,
			&funcionario.HorarioInicio,
			&funcionario.HorarioFim,
			&funcionario.Cor,
		); err != nil {
			return nil, mapError(err)
		}
		funcionarios = append(funcionarios, funcionario)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return funcionarios, nil
}

// DeleteFuncionario removes an employee and cascades to agenda entries.
func (r *FuncionarioRepository) DeleteFuncionario(ctx context.Context, id string) ([]string, error) {
	var removed []string
	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT id FROM agenda WHERE funcionario_id = ?", id)
		if err != nil {
			return mapError(err)
		}
		removed, err = collectIDs(rows)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM agenda WHERE funcionario_id = ?", id); err != nil {
			return mapError(err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM funcionarios WHERE id = ?", id)
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

func collectIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}
