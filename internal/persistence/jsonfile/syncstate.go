package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/example/workspace-agenda/internal/persistence"
)

type syncDocument struct {
	Mappings    map[string]mappingRecord `json:"mappings"`
	Tokens      map[string]tokenRecord   `json:"tokens"`
	PendingAuth map[string]pendingRecord `json:"pendingAuth"`
}

type mappingRecord struct {
	RemoteEventID string    `json:"remoteEventId"`
	CalendarID    string    `json:"calendarId"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type tokenRecord struct {
	Token     json.RawMessage `json:"token"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type pendingRecord struct {
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SyncStore persists calendar bridge state in a JSON side file next to the
// agenda document. It implements persistence.SyncStateRepository.
type SyncStore struct {
	mu   sync.Mutex
	path string
	doc  syncDocument
}

// NewSyncStore returns a sync store bound to the given path. Call Load before use.
func NewSyncStore(path string) *SyncStore {
	return &SyncStore{path: path}
}

// Load reads the sync document from disk. A missing file yields empty state.
func (s *SyncStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.doc = emptySyncDocument()
			return nil
		}
		return fmt.Errorf("jsonfile: read %s: %w", s.path, err)
	}

	var doc syncDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("jsonfile: parse %s: %w", s.path, err)
	}
	if doc.Mappings == nil {
		doc.Mappings = make(map[string]mappingRecord)
	}
	if doc.Tokens == nil {
		doc.Tokens = make(map[string]tokenRecord)
	}
	if doc.PendingAuth == nil {
		doc.PendingAuth = make(map[string]pendingRecord)
	}

	s.doc = doc
	return nil
}

func emptySyncDocument() syncDocument {
	return syncDocument{
		Mappings:    make(map[string]mappingRecord),
		Tokens:      make(map[string]tokenRecord),
		PendingAuth: make(map[string]pendingRecord),
	}
}

func (s *SyncStore) persistLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode sync state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("jsonfile: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("jsonfile: replace %s: %w", s.path, err)
	}
	return nil
}

func (s *SyncStore) ensureLocked() {
	if s.doc.Mappings == nil {
		s.doc = emptySyncDocument()
	}
}

// --- Event mappings ---

func (s *SyncStore) GetMapping(ctx context.Context, entryID string) (persistence.EventMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	record, ok := s.doc.Mappings[entryID]
	if !ok {
		return persistence.EventMapping{}, persistence.ErrNotFound
	}
	return persistence.EventMapping{
		EntryID:       entryID,
		RemoteEventID: record.RemoteEventID,
		CalendarID:    record.CalendarID,
		UpdatedAt:     record.UpdatedAt,
	}, nil
}

func (s *SyncStore) PutMapping(ctx context.Context, mapping persistence.EventMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	s.doc.Mappings[mapping.EntryID] = mappingRecord{
		RemoteEventID: mapping.RemoteEventID,
		CalendarID:    mapping.CalendarID,
		UpdatedAt:     mapping.UpdatedAt,
	}
	return s.persistLocked()
}

func (s *SyncStore) DeleteMapping(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	if _, ok := s.doc.Mappings[entryID]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.doc.Mappings, entryID)
	return s.persistLocked()
}

func (s *SyncStore) ListMappings(ctx context.Context) ([]persistence.EventMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	out := make([]persistence.EventMapping, 0, len(s.doc.Mappings))
	for entryID, record := range s.doc.Mappings {
		out = append(out, persistence.EventMapping{
			EntryID:       entryID,
			RemoteEventID: record.RemoteEventID,
			CalendarID:    record.CalendarID,
			UpdatedAt:     record.UpdatedAt,
		})
	}
	return out, nil
}

// --- OAuth tokens ---

func (s *SyncStore) GetToken(ctx context.Context, account string) (persistence.OAuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	record, ok := s.doc.Tokens[account]
	if !ok {
		return persistence.OAuthToken{}, persistence.ErrNotFound
	}
	return persistence.OAuthToken{
		Account:   account,
		TokenJSON: append([]byte(nil), record.Token...),
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func (s *SyncStore) PutToken(ctx context.Context, token persistence.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	s.doc.Tokens[token.Account] = tokenRecord{
		Token:     append([]byte(nil), token.TokenJSON...),
		UpdatedAt: token.UpdatedAt,
	}
	return s.persistLocked()
}

func (s *SyncStore) DeleteToken(ctx context.Context, account string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	if _, ok := s.doc.Tokens[account]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.doc.Tokens, account)
	return s.persistLocked()
}

// --- Pending authorization attempts ---

func (s *SyncStore) PutPendingAuth(ctx context.Context, pending persistence.PendingAuth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	s.doc.PendingAuth[pending.State] = pendingRecord{
		CreatedAt: pending.CreatedAt,
		ExpiresAt: pending.ExpiresAt,
	}
	return s.persistLocked()
}

func (s *SyncStore) TakePendingAuth(ctx context.Context, state string, now time.Time) (persistence.PendingAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	record, ok := s.doc.PendingAuth[state]
	if !ok {
		return persistence.PendingAuth{}, persistence.ErrNotFound
	}
	delete(s.doc.PendingAuth, state)
	if err := s.persistLocked(); err != nil {
		return persistence.PendingAuth{}, err
	}
	if now.After(record.ExpiresAt) {
		return persistence.PendingAuth{}, persistence.ErrNotFound
	}
	return persistence.PendingAuth{
		State:     state,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *SyncStore) PurgeExpiredPendingAuth(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked()

	changed := false
	for state, record := range s.doc.PendingAuth {
		if now.After(record.ExpiresAt) {
			delete(s.doc.PendingAuth, state)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persistLocked()
}
