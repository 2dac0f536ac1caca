package googleapi

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"HomeDash/internal/model"
)

// CalendarScope is the scope needed for reading events and creating
// reminders.
const CalendarScope = calendar.CalendarEventsScope

// Calendar reads events from and writes reminders to one Google calendar.
type Calendar struct {
	Tokens     *TokenManager
	CalendarID string
	Location   *time.Location
}

// NewCalendar creates a calendar client for the given calendar ID
// ("primary" for the default calendar).
func NewCalendar(tokens *TokenManager, calendarID string, loc *time.Location) *Calendar {
	return &Calendar{Tokens: tokens, CalendarID: calendarID, Location: loc}
}

func (c *Calendar) service(ctx context.Context) (*calendar.Service, error) {
	client, err := c.Tokens.Client(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

// EventsAround returns events for today plus or minus days, in local time.
func (c *Calendar) EventsAround(ctx context.Context, days int) ([]model.CalendarEvent, error) {
	midnight := localMidnight(time.Now().In(c.Location))
	start := midnight.AddDate(0, 0, -days)
	end := midnight.AddDate(0, 0, days+1)
	return c.list(ctx, start, end)
}

// Upcoming returns events from startOffset days ahead spanning days.
func (c *Calendar) Upcoming(ctx context.Context, startOffset, days int) ([]model.CalendarEvent, error) {
	midnight := localMidnight(time.Now().In(c.Location))
	start := midnight.AddDate(0, 0, startOffset)
	end := start.AddDate(0, 0, days)
	return c.list(ctx, start, end)
}

func (c *Calendar) list(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := svc.Events.List(c.CalendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]model.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev := model.CalendarEvent{Title: item.Summary}
		if ev.Title == "" {
			ev.Title = "(No title)"
		}
		switch {
		case item.Start == nil:
			continue
		case item.Start.DateTime != "":
			t, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				continue
			}
			t = t.In(c.Location)
			ev.Date = t.Format(model.DateLayout)
			ev.Time = t.Format("15:04")
		default:
			ev.Date = item.Start.Date
		}
		events = append(events, ev)
	}
	return events, nil
}

// CreateReminder inserts a half-hour event at the given time. Used as the
// lockout alert channel.
func (c *Calendar) CreateReminder(ctx context.Context, title, description string, at time.Time) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}
	at = at.In(c.Location)
	_, err = svc.Events.Insert(c.CalendarID, &calendar.Event{
		Summary:     title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: at.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: at.Add(30 * time.Minute).Format(time.RFC3339)},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       []*calendar.EventReminder{{Method: "popup", Minutes: 10}},
			ForceSendFields: []string{"UseDefault"},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	return nil
}

func localMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
