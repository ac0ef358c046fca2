// Package calendar mirrors schedule items as Google Calendar events.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/sadopc/studyplan/internal/study"
)

// Syncer pushes schedule items to an external calendar. Push inserts when
// the item has no event yet and updates otherwise.
type Syncer interface {
	Push(ctx context.Context, item study.ScheduleItem) (eventID string, err error)
	Remove(ctx context.Context, eventID string) error
}

type Client struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
}

var _ Syncer = (*Client)(nil)

// New builds a client authorized by a user access token. Extra options are
// appended after the token source.
func New(ctx context.Context, token, calendarID string, opts ...option.ClientOption) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("calendar: missing access token")
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gcal.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("calendar: new service: %w", err)
	}
	return &Client{svc: svc, calendarID: calendarID, loc: time.Local}, nil
}

// WithLocation sets the zone events are labeled with.
func (c *Client) WithLocation(loc *time.Location) *Client {
	c.loc = loc
	return c
}

func (c *Client) Push(ctx context.Context, item study.ScheduleItem) (string, error) {
	ev := Event(item, c.loc)
	if item.GoogleEventID != "" {
		out, err := c.svc.Events.Update(c.calendarID, item.GoogleEventID, ev).Context(ctx).Do()
		if err == nil {
			return out.Id, nil
		}
		if !isGone(err) {
			return "", fmt.Errorf("calendar: update event %s: %w", item.GoogleEventID, err)
		}
		// deleted on the calendar side; recreate it
	}
	out, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar: insert event: %w", err)
	}
	return out.Id, nil
}

// Remove deletes the event. Events already gone count as removed.
func (c *Client) Remove(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	if err != nil && !isGone(err) {
		return fmt.Errorf("calendar: delete event %s: %w", eventID, err)
	}
	return nil
}

func isGone(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
}

// Event renders a schedule item as a calendar event.
func Event(item study.ScheduleItem, loc *time.Location) *gcal.Event {
	if loc == nil {
		loc = time.Local
	}
	return &gcal.Event{
		Summary:     fmt.Sprintf("%s: %s", item.Subject, item.Chapter),
		Description: describe(item),
		Start: &gcal.EventDateTime{
			DateTime: item.StartTime.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: item.EndTime.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
	}
}

func describe(item study.ScheduleItem) string {
	lines := []string{fmt.Sprintf("Study session for %s - %s.", item.Subject, item.Chapter)}
	if item.Book != "" {
		lines = append(lines, "Book: "+item.Book)
	}
	if item.QuestionRange != nil {
		lines = append(lines, fmt.Sprintf("Questions: %d-%d", item.QuestionRange.Start, item.QuestionRange.End))
	}
	if item.ExerciseNumber != "" {
		lines = append(lines, "Exercise: "+item.ExerciseNumber)
	}
	return strings.Join(lines, "\n")
}
