// Package calendar implements the bridge between the local agenda and a
// remote Google Calendar: OAuth connection management, event payload
// derivation, and the push/pull synchronization passes.
package calendar

import (
	"context"
	"time"
)

// Event is a provider neutral calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Status      string
}

// CalendarInfo describes one calendar available on the connected account.
type CalendarInfo struct {
	ID      string
	Summary string
	Primary bool
}

// RemoteCalendar abstracts the remote calendar API so the bridge can be
// exercised against fakes.
type RemoteCalendar interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, calendarID string, event Event) (string, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event Event) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
}

// RemoteProvider yields an authorized RemoteCalendar, or ErrNotConnected when
// no account is connected.
type RemoteProvider interface {
	Remote(ctx context.Context) (RemoteCalendar, error)
}
