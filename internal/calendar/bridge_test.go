package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/example/workspace-agenda/internal/persistence"
	"github.com/example/workspace-agenda/internal/testfixtures"
)

type fakeRemote struct {
	events    map[string]Event
	nextID    int
	createErr error
	updateErr error

	listEvents []Event
	listedMin  time.Time
	listedMax  time.Time

	calendars []CalendarInfo
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{events: make(map[string]Event)}
}

func (r *fakeRemote) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	r.listedMin, r.listedMax = timeMin, timeMax
	return r.listEvents, nil
}

func (r *fakeRemote) CreateEvent(ctx context.Context, calendarID string, event Event) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	r.nextID++
	id := fmt.Sprintf("ev-%d", r.nextID)
	event.ID = id
	r.events[id] = event
	return id, nil
}

func (r *fakeRemote) UpdateEvent(ctx context.Context, calendarID, eventID string, event Event) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.events[eventID]; !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	event.ID = eventID
	r.events[eventID] = event
	return nil
}

func (r *fakeRemote) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	delete(r.events, eventID)
	return nil
}

func (r *fakeRemote) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	return r.calendars, nil
}

type fakeProvider struct {
	remote *fakeRemote
	err    error
}

func (p *fakeProvider) Remote(ctx context.Context) (RemoteCalendar, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.remote, nil
}

type mappingStore struct {
	mappings map[string]persistence.EventMapping
}

func newMappingStore() *mappingStore {
	return &mappingStore{mappings: make(map[string]persistence.EventMapping)}
}

func (s *mappingStore) GetMapping(ctx context.Context, entryID string) (persistence.EventMapping, error) {
	mapping, ok := s.mappings[entryID]
	if !ok {
		return persistence.EventMapping{}, persistence.ErrNotFound
	}
	return mapping, nil
}

func (s *mappingStore) PutMapping(ctx context.Context, mapping persistence.EventMapping) error {
	s.mappings[mapping.EntryID] = mapping
	return nil
}

func (s *mappingStore) DeleteMapping(ctx context.Context, entryID string) error {
	delete(s.mappings, entryID)
	return nil
}

func (s *mappingStore) ListMappings(ctx context.Context) ([]persistence.EventMapping, error) {
	out := make([]persistence.EventMapping, 0, len(s.mappings))
	for _, mapping := range s.mappings {
		out = append(out, mapping)
	}
	return out, nil
}

func (s *mappingStore) GetToken(ctx context.Context, account string) (persistence.OAuthToken, error) {
	return persistence.OAuthToken{}, persistence.ErrNotFound
}

func (s *mappingStore) PutToken(ctx context.Context, token persistence.OAuthToken) error { return nil }

func (s *mappingStore) DeleteToken(ctx context.Context, account string) error { return nil }

func (s *mappingStore) PutPendingAuth(ctx context.Context, pending persistence.PendingAuth) error {
	return nil
}

func (s *mappingStore) TakePendingAuth(ctx context.Context, state string, now time.Time) (persistence.PendingAuth, error) {
	return persistence.PendingAuth{}, persistence.ErrNotFound
}

func (s *mappingStore) PurgeExpiredPendingAuth(ctx context.Context, now time.Time) error { return nil }

func fixedNow() time.Time {
	return testfixtures.ReferenceTime()
}

func newTestBridge(remote *fakeRemote, store *mappingStore) *Bridge {
	return NewBridge(&fakeProvider{remote: remote}, store, BridgeOptions{
		Timezone: "America/Sao_Paulo",
		Now:      testfixtures.NewClock(time.Time{}).NowFunc(),
	})
}

func testEntry() Entry {
	data := "2024-03-15"
	return Entry{
		ID:              "a1",
		Horario:         "08:30",
		Data:            &data,
		FuncionarioNome: "Maria",
		TarefaNome:      "Limpeza",
		Categoria:       "manutencao",
		TempoEstimado:   45,
	}
}

func TestBridge_Push(t *testing.T) {
	ctx := context.Background()

	t.Run("creates unmapped entries and records the mapping", func(t *testing.T) {
		remote := newFakeRemote()
		store := newMappingStore()
		bridge := newTestBridge(remote, store)

		report, err := bridge.Push(ctx, []Entry{testEntry()})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if report.Created != 1 || report.Updated != 0 || report.Errors != 0 {
			t.Fatalf("unexpected report: %+v", report)
		}
		if len(report.Details) != 1 || !strings.HasPrefix(report.Details[0], "Criado:") {
			t.Fatalf("unexpected details: %v", report.Details)
		}

		mapping, ok := store.mappings["a1"]
		if !ok {
			t.Fatalf("expected mapping for a1")
		}
		if mapping.RemoteEventID != "ev-1" || mapping.CalendarID != "primary" {
			t.Fatalf("unexpected mapping: %+v", mapping)
		}
	})

	t.Run("updates mapped entries on a second pass", func(t *testing.T) {
		remote := newFakeRemote()
		store := newMappingStore()
		bridge := newTestBridge(remote, store)

		if _, err := bridge.Push(ctx, []Entry{testEntry()}); err != nil {
			t.Fatalf("expected first push to succeed, got %v", err)
		}

		report, err := bridge.Push(ctx, []Entry{testEntry()})
		if err != nil {
			t.Fatalf("expected second push to succeed, got %v", err)
		}
		if report.Created != 0 || report.Updated != 1 {
			t.Fatalf("expected an update on the second pass, got %+v", report)
		}
		if len(remote.events) != 1 {
			t.Fatalf("expected a single remote event, got %d", len(remote.events))
		}
	})

	t.Run("records update failures without creating", func(t *testing.T) {
		remote := newFakeRemote()
		remote.updateErr = errors.New("backend unavailable")
		store := newMappingStore()
		store.mappings["a1"] = persistence.EventMapping{EntryID: "a1", RemoteEventID: "ev-9", CalendarID: "primary"}
		bridge := newTestBridge(remote, store)

		report, err := bridge.Push(ctx, []Entry{testEntry()})
		if err != nil {
			t.Fatalf("expected the pass to survive, got %v", err)
		}
		if report.Errors != 1 || report.Created != 0 || report.Updated != 0 {
			t.Fatalf("expected a recorded failure, got %+v", report)
		}
		if len(report.Details) != 1 || !strings.HasPrefix(report.Details[0], "Erro ao atualizar:") {
			t.Fatalf("unexpected details: %v", report.Details)
		}
		if len(remote.events) != 0 {
			t.Fatalf("expected no event to be created, got %d", len(remote.events))
		}
		if store.mappings["a1"].RemoteEventID != "ev-9" {
			t.Fatalf("expected the mapping to stay untouched, got %+v", store.mappings["a1"])
		}
	})

	t.Run("isolates per entry failures", func(t *testing.T) {
		remote := newFakeRemote()
		remote.createErr = errors.New("quota exceeded")
		store := newMappingStore()
		bridge := newTestBridge(remote, store)

		working := testEntry()
		working.ID = "a2"
		store.mappings["a2"] = persistence.EventMapping{EntryID: "a2", RemoteEventID: "ev-9", CalendarID: "primary"}
		remote.events["ev-9"] = Event{ID: "ev-9"}

		report, err := bridge.Push(ctx, []Entry{testEntry(), working})
		if err != nil {
			t.Fatalf("expected the pass to survive, got %v", err)
		}
		if report.Errors != 1 || report.Updated != 1 {
			t.Fatalf("unexpected report: %+v", report)
		}
	})

	t.Run("fails fast without a connection", func(t *testing.T) {
		bridge := NewBridge(&fakeProvider{err: ErrNotConnected}, newMappingStore(), BridgeOptions{Now: fixedNow})

		if _, err := bridge.Push(ctx, []Entry{testEntry()}); !errors.Is(err, ErrNotConnected) {
			t.Fatalf("expected ErrNotConnected, got %v", err)
		}
	})
}

func TestBridge_Pull(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.listEvents = []Event{
		{ID: "ev-1", Summary: EventMarker + "Maria - Limpeza"},
		{ID: "ev-2", Summary: "Consulta médica"},
		{ID: "ev-3", Summary: EventMarker + "João - Estoque"},
	}
	bridge := newTestBridge(remote, newMappingStore())

	events, err := bridge.Pull(ctx)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(events) != 1 || events[0].ID != "ev-2" {
		t.Fatalf("expected own pushed events to be excluded, got %+v", events)
	}

	if !remote.listedMin.Equal(fixedNow()) {
		t.Fatalf("unexpected window start: %v", remote.listedMin)
	}
	if got := remote.listedMax.Sub(remote.listedMin); got != DefaultSyncWindow {
		t.Fatalf("expected the default sync window, got %v", got)
	}
}

func TestBridge_EventPayload(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	bridge := newTestBridge(remote, newMappingStore())

	if _, err := bridge.Push(ctx, []Entry{testEntry()}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	event := remote.events["ev-1"]
	if event.Summary != EventMarker+"Maria - Limpeza" {
		t.Fatalf("unexpected summary: %q", event.Summary)
	}
	if !strings.Contains(event.Description, "Tarefa: Limpeza") || !strings.Contains(event.Description, "Tempo estimado: 45 min") {
		t.Fatalf("unexpected description: %q", event.Description)
	}

	location, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("expected timezone to load, got %v", err)
	}
	wantStart := time.Date(2024, time.March, 15, 8, 30, 0, 0, location)
	if !event.Start.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, event.Start)
	}
	if got := event.End.Sub(event.Start); got != time.Hour {
		t.Fatalf("expected the duration to floor at one hour, got %v", got)
	}
}

func TestBridge_EventPayloadDefaults(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	bridge := newTestBridge(remote, newMappingStore())

	entry := testEntry()
	entry.Data = nil
	entry.Horario = "manhã"
	entry.TempoEstimado = 90

	if _, err := bridge.Push(ctx, []Entry{entry}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	event := remote.events["ev-1"]
	location, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("expected timezone to load, got %v", err)
	}
	day := fixedNow().In(location)
	wantStart := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, location)
	if !event.Start.Equal(wantStart) {
		t.Fatalf("expected unparsable slots to default to 09:00 today, got %v", event.Start)
	}
	if got := event.End.Sub(event.Start); got != 90*time.Minute {
		t.Fatalf("expected a 90 minute slot, got %v", got)
	}
}
