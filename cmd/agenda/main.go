package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/workspace-agenda/internal/application"
	"github.com/example/workspace-agenda/internal/calendar"
	"github.com/example/workspace-agenda/internal/config"
	httptransport "github.com/example/workspace-agenda/internal/http"
	"github.com/example/workspace-agenda/internal/persistence"
	"github.com/example/workspace-agenda/internal/persistence/jsonfile"
	"github.com/example/workspace-agenda/internal/persistence/sqlite"
)

type repositories struct {
	funcionarios persistence.FuncionarioRepository
	tarefas      persistence.TarefaRepository
	agenda       persistence.AgendaRepository
	syncState    persistence.SyncStateRepository
	close        func() error
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "error", err, "backend", cfg.Backend)
		os.Exit(1)
	}
	defer func() {
		if cerr := repos.close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	idGenerator := uuid.NewString
	now := time.Now

	connector := calendar.NewConnector(repos.syncState, calendar.ConnectorOptions{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		StateTTL:     cfg.OAuthStateTTL,
		IDGenerator:  idGenerator,
		Now:          now,
	})
	bridge := calendar.NewBridge(connector, repos.syncState, calendar.BridgeOptions{
		CalendarID: cfg.CalendarID,
		Timezone:   cfg.Timezone,
		SyncWindow: cfg.SyncWindow,
		Now:        now,
	})

	funcionarioService := application.NewFuncionarioServiceWithLogger(repos.funcionarios, repos.syncState, logger)
	tarefaService := application.NewTarefaServiceWithLogger(repos.tarefas, repos.syncState, logger)
	agendaService := application.NewAgendaServiceWithLogger(repos.agenda, repos.funcionarios, repos.tarefas, repos.syncState, idGenerator, logger)
	syncService := application.NewSyncServiceWithLogger(repos.agenda, repos.funcionarios, repos.tarefas, repos.syncState, connector, bridge, cfg.CalendarID, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Funcionarios: httptransport.NewFuncionarioHandler(funcionarioService, logger),
		Tarefas:      httptransport.NewTarefaHandler(tarefaService, logger),
		Agenda:       httptransport.NewAgendaHandler(agendaService, logger),
		Calendar:     httptransport.NewCalendarHandler(syncService, logger),
		StaticDir:    cfg.StaticDir,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("agenda API listening", "addr", server.Addr, "backend", cfg.Backend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func openRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return repositories{}, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return repositories{}, err
		}
		return repositories{
			funcionarios: sqlite.NewFuncionarioRepository(db),
			tarefas:      sqlite.NewTarefaRepository(db),
			agenda:       sqlite.NewAgendaRepository(db),
			syncState:    sqlite.NewSyncStateRepository(db),
			close:        db.Close,
		}, nil
	default:
		store := jsonfile.New(cfg.DataFile)
		if err := store.Load(ctx); err != nil {
			return repositories{}, err
		}
		syncStore := jsonfile.NewSyncStore(cfg.SyncStateFile)
		if err := syncStore.Load(ctx); err != nil {
			return repositories{}, err
		}
		return repositories{
			funcionarios: store,
			tarefas:      store,
			agenda:       store,
			syncState:    syncStore,
			close:        func() error { return nil },
		}, nil
	}
}
