// Package jsonfile implements the persistence repositories over a single JSON
// document with top-level funcionarios, tarefas and agenda arrays.
//
// The document is held in memory behind one mutex; every mutation is applied
// to a copy, flushed to disk, and only then committed, so a failed write
// leaves both the file and the in-memory state untouched.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/workspace-agenda/internal/persistence"
)

type document struct {
	Funcionarios []funcionarioRecord `json:"funcionarios"`
	Tarefas      []tarefaRecord      `json:"tarefas"`
	Agenda       []agendamentoRecord `json:"agenda"`
}

type funcionarioRecord struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	HorarioInicio string `json:"horarioInicio"`
	HorarioFim    string `json:"horarioFim"`
	Cor           string `json:"cor"`
}

type tarefaRecord struct {
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	Categoria     string `json:"categoria"`
	TempoEstimado int    `json:"tempoEstimado"`
	Descricao     string `json:"descricao"`
	Prioridade    string `json:"prioridade"`
}

type agendamentoRecord struct {
	ID            string  `json:"id,omitempty"`
	Horario       string  `json:"horario"`
	FuncionarioID string  `json:"funcionario"`
	TarefaID      string  `json:"tarefa"`
	Data          *string `json:"data,omitempty"`
}

// Store is a file-backed entity store. All access is serialized through a
// single mutex because the load-mutate-save cycle is not safe under
// concurrent writers.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// New returns a store bound to the given document path. Call Load before use.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the document from disk. A missing file yields an empty document.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.doc = document{}
			return nil
		}
		return fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("jsonfile: parse %s: %w", s.path, err)
	}

	s.doc = doc
	return nil
}

// Flush writes the current document to disk.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(s.doc)
}

// commit persists the candidate document and installs it in memory only when
// the write succeeded.
func (s *Store) commit(candidate document) error {
	if err := s.persistLocked(candidate); err != nil {
		return err
	}
	s.doc = candidate
	return nil
}

func (s *Store) persistLocked(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode document: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonfile: create data directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("jsonfile: replace %s: %w", s.path, err)
	}
	return nil
}

// --- FuncionarioRepository implementation ---

func (s *Store) CreateFuncionario(ctx context.Context, funcionario persistence.Funcionario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Funcionarios {
		if existing.ID == funcionario.ID {
			return persistence.ErrDuplicate
		}
	}

	candidate := s.cloneLocked()
	candidate.Funcionarios = append(candidate.Funcionarios, toFuncionarioRecord(funcionario))
	return s.commit(candidate)
}

func (s *Store) UpdateFuncionario(ctx context.Context, funcionario persistence.Funcionario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := s.cloneLocked()
	for i, existing := range candidate.Funcionarios {
		if existing.ID == funcionario.ID {
			candidate.Funcionarios[i] = toFuncionarioRecord(funcionario)
			return s.commit(candidate)
		}
	}
	return persistence.ErrNotFound
}

func (s *Store) GetFuncionario(ctx context.Context, id string) (persistence.Funcionario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.doc.Funcionarios {
		if record.ID == id {
			return toFuncionario(record), nil
		}
	}
	return persistence.Funcionario{}, persistence.ErrNotFound
}

func (s *Store) ListFuncionarios(ctx context.Context) ([]persistence.Funcionario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.Funcionario, 0, len(s.doc.Funcionarios))
	for _, record := range s.doc.Funcionarios {
		out = append(out, toFuncionario(record))
	}
	return out, nil
}

func (s *Store) DeleteFuncionario(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := s.cloneLocked()

	kept := candidate.Funcionarios[:0]
	found := false
	for _, record := range candidate.Funcionarios {
		if record.ID == id {
			found = true
			continue
		}
		kept = append(kept, record)
	}
	if !found {
		return nil, persistence.ErrNotFound
	}
	candidate.Funcionarios = kept

	var removed []string
	candidate.Agenda, removed = filterAgenda(candidate.Agenda, func(entry agendamentoRecord) bool {
		return entry.FuncionarioID != id
	})

	if err := s.commit(candidate); err != nil {
		return nil, err
	}
	return removed, nil
}

// --- TarefaRepository implementation ---

func (s *Store) CreateTarefa(ctx context.Context, tarefa persistence.Tarefa) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Tarefas {
		if existing.ID == tarefa.ID {
			return persistence.ErrDuplicate
		}
	}

	candidate := s.cloneLocked()
	candidate.Tarefas = append(candidate.Tarefas, toTarefaRecord(tarefa))
	return s.commit(candidate)
}

func (s *Store) UpdateTarefa(ctx context.Context, tarefa persistence.Tarefa) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := s.cloneLocked()
	for i, existing := range candidate.Tarefas {
		if existing.ID == tarefa.ID {
			candidate.Tarefas[i] = toTarefaRecord(tarefa)
			return s.commit(candidate)
		}
	}
	return persistence.ErrNotFound
}

func (s *Store) GetTarefa(ctx context.Context, id string) (persistence.Tarefa, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.doc.Tarefas {
		if record.ID == id {
			return toTarefa(record), nil
		}
	}
	return persistence.Tarefa{}, persistence.ErrNotFound
}

func (s *Store) ListTarefas(ctx context.Context) ([]persistence.Tarefa, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.Tarefa, 0, len(s.doc.Tarefas))
	for _, record := range s.doc.Tarefas {
		out = append(out, toTarefa(record))
	}
	return out, nil
}

func (s *Store) DeleteTarefa(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := s.cloneLocked()

	kept := candidate.Tarefas[:0]
	found := false
	for _, record := range candidate.Tarefas {
		if record.ID == id {
			found = true
			continue
		}
		kept = append(kept, record)
	}
	if !found {
		return nil, persistence.ErrNotFound
	}
	candidate.Tarefas = kept

	var removed []string
	candidate.Agenda, removed = filterAgenda(candidate.Agenda, func(entry agendamentoRecord) bool {
		return entry.TarefaID != id
	})

	if err := s.commit(candidate); err != nil {
		return nil, err
	}
	return removed, nil
}

// --- AgendaRepository implementation ---

func (s *Store) CreateAgendamento(ctx context.Context, entry persistence.Agendamento) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.funcionarioExistsLocked(entry.FuncionarioID) {
		return persistence.ErrForeignKeyViolation
	}
	if !s.tarefaExistsLocked(entry.TarefaID) {
		return persistence.ErrForeignKeyViolation
	}

	candidate := s.cloneLocked()
	candidate.Agenda = append(candidate.Agenda, toAgendamentoRecord(entry))
	return s.commit(candidate)
}

func (s *Store) ListAgendamentos(ctx context.Context) ([]persistence.Agendamento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.Agendamento, 0, len(s.doc.Agenda))
	for _, record := range s.doc.Agenda {
		out = append(out, toAgendamento(record))
	}
	return out, nil
}

func (s *Store) ListAgendamentosPorFuncionario(ctx context.Context, funcionarioID string) ([]persistence.Agendamento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]persistence.Agendamento, 0)
	for _, record := range s.doc.Agenda {
		if record.FuncionarioID == funcionarioID {
			out = append(out, toAgendamento(record))
		}
	}
	return out, nil
}

func (s *Store) DeleteAgendamento(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := s.cloneLocked()
	for i, record := range candidate.Agenda {
		if record.ID == id {
			candidate.Agenda = append(candidate.Agenda[:i], candidate.Agenda[i+1:]...)
			return s.commit(candidate)
		}
	}
	return persistence.ErrNotFound
}

func (s *Store) DeleteAgendamentoByIndex(ctx context.Context, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.doc.Agenda) {
		return "", persistence.ErrNotFound
	}

	candidate := s.cloneLocked()
	removed := candidate.Agenda[index]
	candidate.Agenda = append(candidate.Agenda[:index], candidate.Agenda[index+1:]...)
	if err := s.commit(candidate); err != nil {
		return "", err
	}
	return removed.ID, nil
}

// --- Helpers ---

func (s *Store) funcionarioExistsLocked(id string) bool {
	for _, record := range s.doc.Funcionarios {
		if record.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) tarefaExistsLocked(id string) bool {
	for _, record := range s.doc.Tarefas {
		if record.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) cloneLocked() document {
	clone := document{
		Funcionarios: make([]funcionarioRecord, len(s.doc.Funcionarios)),
		Tarefas:      make([]tarefaRecord, len(s.doc.Tarefas)),
		Agenda:       make([]agendamentoRecord, len(s.doc.Agenda)),
	}
	copy(clone.Funcionarios, s.doc.Funcionarios)
	copy(clone.Tarefas, s.doc.Tarefas)
	copy(clone.Agenda, s.doc.Agenda)
	return clone
}

func filterAgenda(entries []agendamentoRecord, keep func(agendamentoRecord) bool) ([]agendamentoRecord, []string) {
	kept := make([]agendamentoRecord, 0, len(entries))
	var removed []string
	for _, entry := range entries {
		if keep(entry) {
			kept = append(kept, entry)
			continue
		}
		if entry.ID != "" {
			removed = append(removed, entry.ID)
		}
	}
	return kept, removed
}

func toFuncionarioRecord(f persistence.Funcionario) funcionarioRecord {
	return funcionarioRecord{
		ID:            f.ID,
		Nome:          f.Nome,
		HorarioInicio: f.HorarioInicio,
		HorarioFim:    f.HorarioFim,
		Cor:           f.Cor,
	}
}

func toFuncionario(record funcionarioRecord) persistence.Funcionario {
	return persistence.Funcionario{
		ID:            record.ID,
		Nome:          record.Nome,
		HorarioInicio: record.HorarioInicio,
		HorarioFim:    record.HorarioFim,
		Cor:           record.Cor,
	}
}

func toTarefaRecord(t persistence.Tarefa) tarefaRecord {
	return tarefaRecord{
		ID:            t.ID,
		Nome:          t.Nome,
		Categoria:     t.Categoria,
		TempoEstimado: t.TempoEstimado,
		Descricao:     t.Descricao,
		Prioridade:    t.Prioridade,
	}
}

func toTarefa(record tarefaRecord) persistence.Tarefa {
	return persistence.Tarefa{
		ID:            record.ID,
		Nome:          record.Nome,
		Categoria:     record.Categoria,
		TempoEstimado: record.TempoEstimado,
		Descricao:     record.Descricao,
		Prioridade:    record.Prioridade,
	}
}

func toAgendamentoRecord(entry persistence.Agendamento) agendamentoRecord {
	return agendamentoRecord{
		ID:            entry.ID,
		Horario:       entry.Horario,
		FuncionarioID: entry.FuncionarioID,
		TarefaID:      entry.TarefaID,
		Data:          cloneString(entry.Data),
	}
}

func toAgendamento(record agendamentoRecord) persistence.Agendamento {
	return persistence.Agendamento{
		ID:            record.ID,
		Horario:       record.Horario,
		FuncionarioID: record.FuncionarioID,
		TarefaID:      record.TarefaID,
		Data:          cloneString(record.Data),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
