package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers and optional middleware into the API router.
type RouterConfig struct {
	Funcionarios *FuncionarioHandler
	Tarefas      *TarefaHandler
	Agenda       *AgendaHandler
	Calendar     *CalendarHandler
	// StaticDir, when set, serves the frontend assets on every path not
	// claimed by the API.
	StaticDir  string
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the HTTP surface of the agenda service.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Funcionarios != nil {
		mux.HandleFunc("/api/funcionarios", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Funcionarios.List(w, r)
			case http.MethodPost:
				cfg.Funcionarios.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/funcionarios/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/funcionarios/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithFuncionarioID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Funcionarios.Get(w, r)
			case http.MethodPut:
				cfg.Funcionarios.Update(w, r)
			case http.MethodDelete:
				cfg.Funcionarios.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Tarefas != nil {
		mux.HandleFunc("/api/tarefas", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Tarefas.List(w, r)
			case http.MethodPost:
				cfg.Tarefas.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/tarefas/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/tarefas/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithTarefaID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Tarefas.Get(w, r)
			case http.MethodPut:
				cfg.Tarefas.Update(w, r)
			case http.MethodDelete:
				cfg.Tarefas.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Agenda != nil {
		mux.HandleFunc("/api/agenda", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Agenda.List(w, r)
			case http.MethodPost:
				cfg.Agenda.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/api/agenda/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/agenda/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			if id, ok := strings.CutPrefix(rest, "funcionario/"); ok {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				ctx := ContextWithFuncionarioID(r.Context(), id)
				cfg.Agenda.ListByFuncionario(w, r.WithContext(ctx))
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			ctx := ContextWithAgendaRef(r.Context(), rest)
			cfg.Agenda.Delete(w, r.WithContext(ctx))
		})
		mux.HandleFunc("/api/dados-completos", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Agenda.DadosCompletos(w, r)
		})
	}

	if cfg.Calendar != nil {
		mux.HandleFunc("/api/calendar/status", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Status(w, r)
		})
		mux.HandleFunc("/api/calendar/connect", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Calendar.Connect(w, r)
		})
		mux.HandleFunc("/api/calendar/callback", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Callback(w, r)
		})
		mux.HandleFunc("/api/calendar/disconnect", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Calendar.Disconnect(w, r)
		})
		mux.HandleFunc("/api/calendar/calendars", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Calendars(w, r)
		})
		mux.HandleFunc("/api/calendar/sync/push", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Calendar.Push(w, r)
		})
		mux.HandleFunc("/api/calendar/sync/pull", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Calendar.Pull(w, r)
		})
	}

	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
