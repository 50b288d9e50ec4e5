package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/workspace-agenda/internal/persistence"
)

// EventMarker prefixes every event the bridge pushes onto the remote
// calendar. Pull skips marked events, so the system never re-imports entries
// it pushed itself.
const EventMarker = "[WS] "

// DefaultSyncWindow bounds the pull pass to the next thirty days.
const DefaultSyncWindow = 30 * 24 * time.Hour

// Entry is one local agenda entry with its references already resolved to the
// names the remote event payload needs.
type Entry struct {
	ID              string
	Horario         string
	Data            *string
	FuncionarioNome string
	TarefaNome      string
	Categoria       string
	TempoEstimado   int
}

// Report summarizes one push pass.
type Report struct {
	Created int
	Updated int
	Errors  int
	Details []string
}

// Bridge drives synchronization between the local agenda and the remote
// calendar, using the mapping side table to decide create versus update.
type Bridge struct {
	provider   RemoteProvider
	syncState  persistence.SyncStateRepository
	calendarID string
	location   *time.Location
	window     time.Duration
	now        func() time.Time
}

// BridgeOptions carries the tunables for a Bridge.
type BridgeOptions struct {
	CalendarID string
	Timezone   string
	SyncWindow time.Duration
	Now        func() time.Time
}

// NewBridge constructs a bridge over the given provider and sync state store.
func NewBridge(provider RemoteProvider, syncState persistence.SyncStateRepository, opts BridgeOptions) *Bridge {
	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}
	if opts.Timezone == "" {
		opts.Timezone = "America/Sao_Paulo"
	}
	if opts.SyncWindow <= 0 {
		opts.SyncWindow = DefaultSyncWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	location, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		location = time.Local
	}
	return &Bridge{
		provider:   provider,
		syncState:  syncState,
		calendarID: opts.CalendarID,
		location:   location,
		window:     opts.SyncWindow,
		now:        opts.Now,
	}
}

// Push mirrors the given entries onto the remote calendar. Entries with a
// known mapping are updated in place; the rest are created and recorded in
// the mapping table. Remote failures are counted and detailed per entry; one
// failing entry never aborts the pass.
func (b *Bridge) Push(ctx context.Context, entries []Entry) (Report, error) {
	remote, err := b.provider.Remote(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Details: make([]string, 0, len(entries))}
	for _, entry := range entries {
		event := b.eventFor(entry)
		label := fmt.Sprintf("%s - %s", entry.FuncionarioNome, entry.TarefaNome)

		mapping, err := b.syncState.GetMapping(ctx, entry.ID)
		switch {
		case err == nil:
			if updateErr := remote.UpdateEvent(ctx, mapping.CalendarID, mapping.RemoteEventID, event); updateErr != nil {
				report.Errors++
				report.Details = append(report.Details, fmt.Sprintf("Erro ao atualizar: %s: %v", label, updateErr))
				continue
			}
			report.Updated++
			report.Details = append(report.Details, fmt.Sprintf("Atualizado: %s", label))
			b.recordMapping(ctx, entry.ID, mapping.RemoteEventID, mapping.CalendarID)
		case errors.Is(err, persistence.ErrNotFound):
			eventID, createErr := remote.CreateEvent(ctx, b.calendarID, event)
			if createErr != nil {
				report.Errors++
				report.Details = append(report.Details, fmt.Sprintf("Erro: %s: %v", label, createErr))
				continue
			}
			report.Created++
			report.Details = append(report.Details, fmt.Sprintf("Criado: %s", label))
			b.recordMapping(ctx, entry.ID, eventID, b.calendarID)
		default:
			report.Errors++
			report.Details = append(report.Details, fmt.Sprintf("Erro: %s: %v", label, err))
		}
	}
	return report, nil
}

// Pull returns the remote events within the sync window, excluding the
// bridge's own marked events so they are never imported back.
func (b *Bridge) Pull(ctx context.Context) ([]Event, error) {
	remote, err := b.provider.Remote(ctx)
	if err != nil {
		return nil, err
	}

	from := b.now()
	events, err := remote.ListEvents(ctx, b.calendarID, from, from.Add(b.window))
	if err != nil {
		return nil, err
	}

	external := make([]Event, 0, len(events))
	for _, event := range events {
		if strings.HasPrefix(event.Summary, EventMarker) {
			continue
		}
		external = append(external, event)
	}
	return external, nil
}

// Calendars lists the calendars available on the connected account.
func (b *Bridge) Calendars(ctx context.Context) ([]CalendarInfo, error) {
	remote, err := b.provider.Remote(ctx)
	if err != nil {
		return nil, err
	}
	return remote.ListCalendars(ctx)
}

func (b *Bridge) recordMapping(ctx context.Context, entryID, eventID, calendarID string) {
	// Mapping persistence is best effort: losing it costs one duplicate
	// event on the next push, not data.
	_ = b.syncState.PutMapping(ctx, persistence.EventMapping{
		EntryID:       entryID,
		RemoteEventID: eventID,
		CalendarID:    calendarID,
		UpdatedAt:     b.now(),
	})
}

// eventFor derives the remote payload for a local entry. Entries without a
// date land on the current day; the slot duration floors at one hour.
func (b *Bridge) eventFor(entry Entry) Event {
	day := b.now().In(b.location)
	if entry.Data != nil && *entry.Data != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", *entry.Data, b.location); err == nil {
			day = parsed
		}
	}

	hour, minute := 9, 0
	if parsed, err := time.Parse("15:04", strings.TrimSpace(entry.Horario)); err == nil {
		hour, minute = parsed.Hour(), parsed.Minute()
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, b.location)
	duration := time.Duration(entry.TempoEstimado) * time.Minute
	if duration < time.Hour {
		duration = time.Hour
	}

	description := fmt.Sprintf("Tarefa: %s\nFuncionário: %s\nCategoria: %s\nTempo estimado: %d min",
		entry.TarefaNome, entry.FuncionarioNome, entry.Categoria, entry.TempoEstimado)

	return Event{
		Summary:     fmt.Sprintf("%s%s - %s", EventMarker, entry.FuncionarioNome, entry.TarefaNome),
		Description: description,
		Start:       start,
		End:         start.Add(duration),
	}
}
