package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/workspace-agenda/internal/application"
)

type funcionarioServiceStub struct {
	createView application.FuncionarioView
	createErr  error
	getView    application.FuncionarioView
	getErr     error
	list       []application.FuncionarioView
	deleteErr  error
	deletedID  string
}

func (s *funcionarioServiceStub) CreateFuncionario(ctx context.Context, input application.FuncionarioInput) (application.FuncionarioView, error) {
	return s.createView, s.createErr
}

func (s *funcionarioServiceStub) UpdateFuncionario(ctx context.Context, id string, input application.FuncionarioInput) (application.FuncionarioView, error) {
	return s.createView, s.createErr
}

func (s *funcionarioServiceStub) GetFuncionario(ctx context.Context, id string) (application.FuncionarioView, error) {
	return s.getView, s.getErr
}

func (s *funcionarioServiceStub) ListFuncionarios(ctx context.Context) ([]application.FuncionarioView, error) {
	return s.list, nil
}

func (s *funcionarioServiceStub) DeleteFuncionario(ctx context.Context, id string) error {
	s.deletedID = id
	return s.deleteErr
}

type tarefaServiceStub struct {
	createView application.TarefaView
	createErr  error
	list       []application.TarefaView
}

func (s *tarefaServiceStub) CreateTarefa(ctx context.Context, input application.TarefaInput) (application.TarefaView, error) {
	return s.createView, s.createErr
}

func (s *tarefaServiceStub) UpdateTarefa(ctx context.Context, id string, input application.TarefaInput) (application.TarefaView, error) {
	return s.createView, s.createErr
}

func (s *tarefaServiceStub) GetTarefa(ctx context.Context, id string) (application.TarefaView, error) {
	return s.createView, s.createErr
}

func (s *tarefaServiceStub) ListTarefas(ctx context.Context) ([]application.TarefaView, error) {
	return s.list, nil
}

func (s *tarefaServiceStub) DeleteTarefa(ctx context.Context, id string) error {
	return s.createErr
}

type agendaServiceStub struct {
	createView application.AgendamentoView
	createErr  error
	list       []application.AgendamentoView
	deleteErr  error
	deletedRef string
	dados      application.DadosCompletos
}

func (s *agendaServiceStub) CreateAgendamento(ctx context.Context, input application.AgendamentoInput) (application.AgendamentoView, error) {
	return s.createView, s.createErr
}

func (s *agendaServiceStub) ListAgendamentos(ctx context.Context) ([]application.AgendamentoView, error) {
	return s.list, nil
}

func (s *agendaServiceStub) ListAgendamentosPorFuncionario(ctx context.Context, funcionarioID string) ([]application.AgendamentoView, error) {
	return s.list, nil
}

func (s *agendaServiceStub) DeleteAgendamento(ctx context.Context, ref string) error {
	s.deletedRef = ref
	return s.deleteErr
}

func (s *agendaServiceStub) DadosCompletos(ctx context.Context) (application.DadosCompletos, error) {
	return s.dados, nil
}

type syncServiceStub struct {
	status     application.ConnectionStatus
	authURL    string
	connectErr error
	callback   [2]string
	report     application.SyncReport
	pushErr    error
	events     []application.RemoteEvent
	calendars  []application.CalendarOption
}

func (s *syncServiceStub) Status(ctx context.Context) (application.ConnectionStatus, error) {
	return s.status, nil
}

func (s *syncServiceStub) Connect(ctx context.Context) (string, error) {
	return s.authURL, s.connectErr
}

func (s *syncServiceStub) CompleteAuthorization(ctx context.Context, state, code string) error {
	s.callback = [2]string{state, code}
	return nil
}

func (s *syncServiceStub) Disconnect(ctx context.Context) error { return nil }

func (s *syncServiceStub) PushAgenda(ctx context.Context) (application.SyncReport, error) {
	return s.report, s.pushErr
}

func (s *syncServiceStub) PullEvents(ctx context.Context) ([]application.RemoteEvent, error) {
	return s.events, nil
}

func (s *syncServiceStub) ListCalendars(ctx context.Context) ([]application.CalendarOption, error) {
	return s.calendars, nil
}

type testServices struct {
	funcionarios *funcionarioServiceStub
	tarefas      *tarefaServiceStub
	agenda       *agendaServiceStub
	sync         *syncServiceStub
}

func newTestRouter(t *testing.T) (http.Handler, *testServices) {
	t.Helper()
	services := &testServices{
		funcionarios: &funcionarioServiceStub{},
		tarefas:      &tarefaServiceStub{},
		agenda:       &agendaServiceStub{},
		sync:         &syncServiceStub{},
	}
	router := NewRouter(RouterConfig{
		Funcionarios: NewFuncionarioHandler(services.funcionarios, nil),
		Tarefas:      NewTarefaHandler(services.tarefas, nil),
		Agenda:       NewAgendaHandler(services.agenda, nil),
		Calendar:     NewCalendarHandler(services.sync, nil),
	})
	return router, services
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("expected an error body, got %v", err)
	}
	return body
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestFuncionarioHandler_Create(t *testing.T) {
	t.Run("returns the created funcionario", func(t *testing.T) {
		router, services := newTestRouter(t)
		services.funcionarios.createView = application.FuncionarioView{
			ID: "f1", Nome: "Maria", HorarioInicio: "08:00", HorarioFim: "17:00", Cor: "#ff0000",
		}

		body := `{"id":"f1","nome":"Maria","horarioInicio":"08:00","horarioFim":"17:00","cor":"#ff0000"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/funcionarios", strings.NewReader(body)))

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
		}
		var got funcionarioDTO
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("expected a funcionario body, got %v", err)
		}
		if got.ID != "f1" || got.Nome != "Maria" {
			t.Fatalf("unexpected body: %+v", got)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		router, _ := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/funcionarios", strings.NewReader("{not json")))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("carries field errors through", func(t *testing.T) {
		router, services := newTestRouter(t)
		vErr := &application.ValidationError{FieldErrors: map[string]string{"nome": "campo obrigatório"}}
		services.funcionarios.createErr = vErr

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/funcionarios", strings.NewReader(`{}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		body := decodeError(t, rec)
		if body.Message != "Dados inválidos." {
			t.Fatalf("unexpected message: %q", body.Message)
		}
		if body.Errors["nome"] != "campo obrigatório" {
			t.Fatalf("expected the field errors to pass through, got %v", body.Errors)
		}
	})

	t.Run("maps duplicates to a localized message", func(t *testing.T) {
		router, services := newTestRouter(t)
		services.funcionarios.createErr = application.ErrAlreadyExists

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/funcionarios", strings.NewReader(`{}`)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Message != "Já existe um registro com este identificador." {
			t.Fatalf("unexpected message: %q", body.Message)
		}
	})
}

func TestFuncionarioHandler_Get(t *testing.T) {
	router, services := newTestRouter(t)
	services.funcionarios.getErr = application.ErrNotFound

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/funcionarios/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Message != "Recurso não encontrado." {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestFuncionarioHandler_Delete(t *testing.T) {
	router, services := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/funcionarios/f1", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if services.funcionarios.deletedID != "f1" {
		t.Fatalf("expected the path id to reach the service, got %q", services.funcionarios.deletedID)
	}
}

func TestAgendaHandler_Delete(t *testing.T) {
	router, services := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/agenda/a1", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if services.agenda.deletedRef != "a1" {
		t.Fatalf("expected the reference to reach the service, got %q", services.agenda.deletedRef)
	}
}

func TestAgendaHandler_ListByFuncionario(t *testing.T) {
	router, services := newTestRouter(t)
	data := "2024-03-15"
	services.agenda.list = []application.AgendamentoView{
		{ID: "a1", Horario: "08:00", FuncionarioID: "f1", TarefaID: "t1", Data: &data},
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agenda/funcionario/f1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []agendamentoDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("expected an agenda body, got %v", err)
	}
	if len(got) != 1 || got[0].Funcionario != "f1" || got[0].Data == nil {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestAgendaHandler_DadosCompletos(t *testing.T) {
	router, services := newTestRouter(t)
	services.agenda.dados = application.DadosCompletos{
		Funcionarios: []application.FuncionarioView{{ID: "f1", Nome: "Maria"}},
		Tarefas:      []application.TarefaView{{ID: "t1", Nome: "Limpeza"}},
		Agenda:       []application.AgendamentoView{{ID: "a1", Horario: "08:00", FuncionarioID: "f1", TarefaID: "t1"}},
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dados-completos", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got dadosCompletosDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("expected a document body, got %v", err)
	}
	if len(got.Funcionarios) != 1 || len(got.Tarefas) != 1 || len(got.Agenda) != 1 {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestCalendarHandler_Status(t *testing.T) {
	router, services := newTestRouter(t)
	services.sync.status = application.ConnectionStatus{Connected: true, CalendarID: "primary"}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got statusDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("expected a status body, got %v", err)
	}
	if !got.Connected || got.CalendarID != "primary" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestCalendarHandler_Callback(t *testing.T) {
	router, services := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/callback?state=s1&code=c1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if services.sync.callback != [2]string{"s1", "c1"} {
		t.Fatalf("expected the query parameters to reach the service, got %v", services.sync.callback)
	}
}

func TestCalendarHandler_Push(t *testing.T) {
	t.Run("returns the report", func(t *testing.T) {
		router, services := newTestRouter(t)
		services.sync.report = application.SyncReport{Created: 2, Updated: 1, Details: []string{"Criado: Maria - Limpeza"}}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calendar/sync/push", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got syncReportDTO
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("expected a report body, got %v", err)
		}
		if got.Created != 2 || got.Updated != 1 || len(got.Details) != 1 {
			t.Fatalf("unexpected body: %+v", got)
		}
	})

	t.Run("surfaces a missing connection", func(t *testing.T) {
		router, services := newTestRouter(t)
		services.sync.pushErr = application.ErrNotConnected

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/calendar/sync/push", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Message != "Google Calendar não conectado." {
			t.Fatalf("unexpected message: %q", body.Message)
		}
	})
}

func TestCalendarHandler_Pull(t *testing.T) {
	router, services := newTestRouter(t)
	start := time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC)
	services.sync.events = []application.RemoteEvent{
		{ID: "ev-1", Titulo: "Maria - Limpeza", Inicio: start, Fim: start.Add(time.Hour), Origem: "google_calendar"},
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/sync/pull", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []remoteEventDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("expected an event body, got %v", err)
	}
	if len(got) != 1 || got[0].Inicio != "2024-03-11T09:00:00Z" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/funcionarios", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("expected the Allow header to list POST, got %q", allow)
	}
}
