package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendar implements RemoteCalendar against the Google Calendar v3 API.
type GoogleCalendar struct {
	service *gcal.Service
}

// NewGoogleCalendar builds a calendar client over an authorized HTTP client.
func NewGoogleCalendar(ctx context.Context, client *http.Client) (*GoogleCalendar, error) {
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("calendar: create service: %w", err)
	}
	return &GoogleCalendar{service: service}, nil
}

// ListEvents returns the single events within the window, ordered by start time.
func (g *GoogleCalendar) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	events, err := g.service.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: list events: %w", err)
	}

	result := make([]Event, 0, len(events.Items))
	for _, item := range events.Items {
		result = append(result, toEvent(item))
	}
	return result, nil
}

// CreateEvent inserts a new event and returns its remote identifier.
func (g *GoogleCalendar) CreateEvent(ctx context.Context, calendarID string, event Event) (string, error) {
	created, err := g.service.Events.Insert(calendarID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar: create event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent replaces an existing event.
func (g *GoogleCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, event Event) error {
	if _, err := g.service.Events.Update(calendarID, eventID, toGoogleEvent(event)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event from the remote calendar.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := g.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar: delete event: %w", err)
	}
	return nil
}

// ListCalendars returns the calendars visible to the connected account.
func (g *GoogleCalendar) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	list, err := g.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: list calendars: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, CalendarInfo{
			ID:      item.Id,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}
	return calendars, nil
}

func toGoogleEvent(event Event) *gcal.Event {
	return &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
		},
	}
}

func toEvent(item *gcal.Event) Event {
	var start, end time.Time
	if item.Start != nil {
		start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
	}
	if item.End != nil {
		end, _ = time.Parse(time.RFC3339, item.End.DateTime)
	}
	return Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Status:      item.Status,
	}
}
